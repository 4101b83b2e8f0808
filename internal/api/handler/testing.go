package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/zbourini/tigertickets-sub000/internal/api"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
// 本番と同じエラーハンドラーを備える
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}
