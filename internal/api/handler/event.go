package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zbourini/tigertickets-sub000/internal/api"
	"github.com/zbourini/tigertickets-sub000/internal/application"
	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
)

// EventHandler はイベントカタログのHTTPハンドラー
// 書き込みはカタログサービス、読み取りは在庫照会サービスに委譲する
type EventHandler struct {
	catalog CatalogServiceInterface
	queries InventoryQueryInterface
}

// NewEventHandler はEventHandlerを作成する
func NewEventHandler(catalog CatalogServiceInterface, queries InventoryQueryInterface) *EventHandler {
	return &EventHandler{catalog: catalog, queries: queries}
}

type CreateEventRequest struct {
	Name             string       `json:"name" example:"年末カウントダウンライブ"`
	Date             string       `json:"date" example:"2025-12-31"`
	TicketsAvailable *FlexibleInt `json:"tickets_available" example:"500"`
}

type UpdateEventRequest struct {
	Name             *string      `json:"name"`
	Date             *string      `json:"date"`
	TicketsAvailable *FlexibleInt `json:"tickets_available"`
}

type EventResponse struct {
	ID               int64  `json:"id" example:"1"`
	Name             string `json:"name" example:"年末カウントダウンライブ"`
	Date             string `json:"date" example:"2025-12-31"`
	TicketsAvailable int    `json:"tickets_available" example:"500"`
	CreatedAt        string `json:"created_at" example:"2025-12-06T10:00:00Z"`
	UpdatedAt        string `json:"updated_at" example:"2025-12-06T10:00:00Z"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Date:             e.Date,
		TicketsAvailable: e.TicketsAvailable,
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
}

// parseEventID はパスパラメータのイベントIDを解釈する
// 数値でない場合は0を返し、サービス側の正整数チェックに委ねる
func parseEventID(c echo.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "リクエストの形式が不正です"})
	}

	input := application.CreateEventInput{
		Name: req.Name,
		Date: req.Date,
	}
	if req.TicketsAvailable != nil {
		if n, ok := req.TicketsAvailable.Value(); ok {
			input.TicketsAvailable = &n
		} else {
			input.TicketsMalformed = true
		}
	}

	e, err := h.catalog.CreateEvent(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.queries.GetEvent(c.Request().Context(), parseEventID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description 全イベントを開催日昇順で取得します
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.queries.ListEvents(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary イベントを部分更新
// @Description 指定されたフィールドのみを更新します
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "イベントID"
// @Param request body UpdateEventRequest true "更新フィールド"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "リクエストの形式が不正です"})
	}

	fields := event.UpdateFields{
		Name: req.Name,
		Date: req.Date,
	}
	if req.TicketsAvailable != nil {
		if n, ok := req.TicketsAvailable.Value(); ok {
			fields.TicketsAvailable = &n
		} else {
			fields.TicketsMalformed = true
		}
	}

	e, err := h.catalog.UpdateEvent(c.Request().Context(), parseEventID(c), fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}
