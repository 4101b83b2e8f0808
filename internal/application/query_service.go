package application

import (
	"context"

	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
)

// InventoryQueryService は副作用のない読み取り専用の問い合わせ窓口
// 外部からの読み取りはすべてここを経由させ、将来のキャッシュ導入点を一箇所に保つ
// キャッシュは持たず、毎回ストアへ問い合わせる
type InventoryQueryService struct {
	eventRepo event.Repository
}

// NewInventoryQueryService はInventoryQueryServiceを作成する
func NewInventoryQueryService(eventRepo event.Repository) *InventoryQueryService {
	return &InventoryQueryService{eventRepo: eventRepo}
}

// GetEvent はIDからイベントを取得する
func (s *InventoryQueryService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	if id <= 0 {
		return nil, event.NewValidationError(invalidEventIDViolation)
	}
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents は全イベントを開催日昇順で取得する
func (s *InventoryQueryService) ListEvents(ctx context.Context) ([]*event.Event, error) {
	return s.eventRepo.List(ctx)
}
