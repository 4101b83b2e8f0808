package handler

import (
	"context"

	"github.com/zbourini/tigertickets-sub000/internal/application"
	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
)

// CatalogServiceInterface はカタログ管理サービスのインターフェース
type CatalogServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	UpdateEvent(ctx context.Context, id int64, fields event.UpdateFields) (*event.Event, error)
}

// InventoryQueryInterface は在庫照会サービスのインターフェース
type InventoryQueryInterface interface {
	GetEvent(ctx context.Context, id int64) (*event.Event, error)
	ListEvents(ctx context.Context) ([]*event.Event, error)
}

// TicketServiceInterface はチケット購入サービスのインターフェース
type TicketServiceInterface interface {
	Purchase(ctx context.Context, input application.PurchaseInput) (*application.PurchaseResult, error)
}
