package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// PostgreSQLのエラーコード分類
// 40001: serialization_failure, 40P01: deadlock_detected, 55P03: lock_not_available
// クラス23: integrity_constraint_violation

// isTransient はリトライで回復しうる競合エラーかを返す
func isTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// isConstraintViolation はストレージ制約違反かを返す
// Catalog側の検証が正しければ到達しないため、観測された場合は欠陥として扱う
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return strings.HasPrefix(string(pqErr.Code), "23")
}
