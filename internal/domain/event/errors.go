package event

import (
	"errors"
	"fmt"
	"strings"
)

// Event ドメインのエラー定義
var (
	ErrEventNotFound       = errors.New("イベントが見つかりません")
	ErrInvalidEventID      = errors.New("イベントIDは正の整数である必要があります")
	ErrInvalidQuantity     = errors.New("購入枚数は正の整数である必要があります")
	ErrTxConflict          = errors.New("トランザクションが競合しました")
	ErrStorageUnavailable  = errors.New("ストレージが一時的に利用できません")
	ErrConstraintViolation = errors.New("ストレージ制約違反が発生しました")
)

// ValidationError は入力検証エラーを表す
// 最初の違反だけでなく、検出された全ての違反を保持する
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "バリデーションエラー: " + strings.Join(e.Violations, "、")
}

// NewValidationError は違反メッセージからValidationErrorを作成する
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// InsufficientInventoryError は在庫不足による購入拒否を表す
// Remaining には実際の残り枚数が入り、呼び出し側のメッセージ表示に使われる
type InsufficientInventoryError struct {
	Remaining int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("チケットの在庫が不足しています（残り%d枚）", e.Remaining)
}
