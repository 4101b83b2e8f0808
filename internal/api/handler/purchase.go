package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zbourini/tigertickets-sub000/internal/api"
	"github.com/zbourini/tigertickets-sub000/internal/application"
	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
)

// PurchaseHandler はチケット購入のHTTPハンドラー
type PurchaseHandler struct {
	tickets TicketServiceInterface
}

// NewPurchaseHandler はPurchaseHandlerを作成する
func NewPurchaseHandler(tickets TicketServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{tickets: tickets}
}

type PurchaseRequest struct {
	Count *FlexibleInt `json:"count" example:"2"`
}

type PurchaseResponse struct {
	Event     *EventResponse `json:"event"`
	Allocated int            `json:"allocated" example:"2"`
}

// Purchase godoc
// @Summary チケットを購入
// @Description イベントの残り枚数を原子的に減算します。countの省略時は1枚
// @Tags purchases
// @Accept json
// @Produce json
// @Param id path int true "イベントID"
// @Param request body PurchaseRequest false "購入枚数"
// @Success 200 {object} PurchaseResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} InsufficientResponse
// @Failure 503 {object} api.ErrorResponse
// @Router /events/{id}/purchase [post]
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	var req PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "リクエストの形式が不正です"})
	}

	input := application.PurchaseInput{
		EventID: parseEventID(c),
		Count:   1,
	}
	if req.Count != nil {
		n, ok := req.Count.Value()
		if !ok {
			return writeError(c, event.ErrInvalidQuantity)
		}
		input.Count = n
	}

	result, err := h.tickets.Purchase(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, PurchaseResponse{
		Event:     toEventResponse(result.Event),
		Allocated: result.Allocated,
	})
}
