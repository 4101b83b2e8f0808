package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zbourini/tigertickets-sub000/internal/api"
	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/logger"
)

// InsufficientResponse は在庫不足エラーのレスポンス
// Remainingは呼び出し側の「残りN枚」表示に使われる
type InsufficientResponse struct {
	Error     string `json:"error"`
	Remaining int    `json:"remaining"`
}

// writeError はドメインエラーをHTTPステータスに対応付けて返す
func writeError(c echo.Context, err error) error {
	var vErr *event.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "バリデーションエラー",
			Details: vErr.Violations,
		})
	}

	var iErr *event.InsufficientInventoryError
	if errors.As(err, &iErr) {
		return c.JSON(http.StatusConflict, InsufficientResponse{
			Error:     iErr.Error(),
			Remaining: iErr.Remaining,
		})
	}

	switch {
	case errors.Is(err, event.ErrInvalidEventID), errors.Is(err, event.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, event.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, api.ErrorResponse{Error: event.ErrEventNotFound.Error()})
	case errors.Is(err, event.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: event.ErrStorageUnavailable.Error()})
	case errors.Is(err, event.ErrConstraintViolation):
		// Catalogの検証が正しければ到達しない。観測されたら欠陥
		logger.Error("ストレージ制約違反を検出しました", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: event.ErrConstraintViolation.Error()})
	default:
		logger.Error("予期しないエラー", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "内部サーバーエラー"})
	}
}
