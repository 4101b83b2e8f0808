package application

import (
	"context"
	"strings"

	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/clock"
)

const invalidEventIDViolation = "イベントIDは正の整数である必要があります"

// CatalogService はイベントカタログの管理操作を提供する
// 永続化前のフィールド検証はすべてここで完結する
type CatalogService struct {
	eventRepo event.Repository
	clock     clock.Clock
}

// NewCatalogService はCatalogServiceを作成する
func NewCatalogService(eventRepo event.Repository, clk clock.Clock) *CatalogService {
	return &CatalogService{eventRepo: eventRepo, clock: clk}
}

// CreateEventInput はイベント作成の入力
// TicketsAvailableがnilの場合は未指定として検証エラーになる
type CreateEventInput struct {
	Name             string
	Date             string
	TicketsAvailable *int

	// TicketsMalformed は枚数が指定されたものの整数として解釈できなかったことを示す
	// 他のフィールドの違反とまとめて検証エラーとして報告される
	TicketsMalformed bool
}

// CreateEvent は検証済みの新規イベントを永続化する
// 検証違反は最初の1件だけでなく全件まとめて返す
func (s *CatalogService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	if vErr := event.ValidateNew(input.Name, input.Date, input.TicketsAvailable, input.TicketsMalformed, s.clock.Now()); vErr != nil {
		return nil, vErr
	}

	e := event.NewEvent(input.Name, input.Date, *input.TicketsAvailable, s.clock.Now())
	if err := s.eventRepo.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetEvent はIDからイベントを取得する
func (s *CatalogService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	if id <= 0 {
		return nil, event.NewValidationError(invalidEventIDViolation)
	}
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents は全イベントを開催日昇順で取得する
func (s *CatalogService) ListEvents(ctx context.Context) ([]*event.Event, error) {
	return s.eventRepo.List(ctx)
}

// UpdateEvent は指定されたフィールドのみを置き換える
// 空のフィールド集合は検証エラー、対象行がなければErrEventNotFound
func (s *CatalogService) UpdateEvent(ctx context.Context, id int64, fields event.UpdateFields) (*event.Event, error) {
	if id <= 0 {
		return nil, event.NewValidationError(invalidEventIDViolation)
	}
	if vErr := fields.Validate(); vErr != nil {
		return nil, vErr
	}

	if fields.Name != nil {
		trimmed := strings.TrimSpace(*fields.Name)
		fields.Name = &trimmed
	}
	return s.eventRepo.UpdateFields(ctx, id, fields)
}
