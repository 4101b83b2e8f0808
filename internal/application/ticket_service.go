package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
	"github.com/zbourini/tigertickets-sub000/internal/domain/transaction"
	redislock "github.com/zbourini/tigertickets-sub000/internal/infrastructure/redis"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/logger"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/metrics"
)

const (
	// 一時的なストレージ競合に対するリトライ回数と間隔
	purchaseMaxAttempts = 3
	purchaseRetryDelay  = 50 * time.Millisecond

	// 補助ロックの設定
	purchaseLockTTL        = 5 * time.Second
	purchaseLockRetries    = 3
	purchaseLockRetryDelay = 50 * time.Millisecond
)

// TicketService はチケットの原子的な割り当てを実行する
// 正しさの保証はDBトランザクションの行ロックにあり、
// Redisの補助ロックとリトライは競合時の挙動を整えるためのもの
type TicketService struct {
	txManager   transaction.Manager
	eventRepo   event.Repository
	lockManager *redislock.LockManager // nilの場合は補助ロックなしで動作
	metrics     *metrics.Metrics       // nilの場合は記録しない
}

// NewTicketService はTicketServiceを作成する
func NewTicketService(txManager transaction.Manager, eventRepo event.Repository, lockManager *redislock.LockManager, m *metrics.Metrics) *TicketService {
	return &TicketService{
		txManager:   txManager,
		eventRepo:   eventRepo,
		lockManager: lockManager,
		metrics:     m,
	}
}

// PurchaseInput はチケット購入の入力
// 「枚数未指定は1枚」の解釈はHTTP境界で行われ、ここでは正の整数のみ受け付ける
type PurchaseInput struct {
	EventID int64
	Count   int
}

// PurchaseResult は購入成功時の結果
type PurchaseResult struct {
	Event     *event.Event
	Allocated int
}

// Purchase はイベントの残り枚数を原子的に減算する
// 同一イベントへの同時購入は行ロックで直列化され、売り越しは起こらない
func (s *TicketService) Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	start := time.Now()

	if input.EventID <= 0 {
		s.recordPurchase(metrics.PurchaseInvalid)
		return nil, event.ErrInvalidEventID
	}
	if input.Count <= 0 {
		s.recordPurchase(metrics.PurchaseInvalid)
		return nil, event.ErrInvalidQuantity
	}
	count := input.Count

	// 補助ロック: 取得できなくても購入は続行する
	// 行ロックの競合を減らすだけで、在庫保護はDBトランザクションが担う
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireEventLockWithRetry(ctx, input.EventID, purchaseLockTTL, purchaseLockRetries, purchaseLockRetryDelay)
		if err == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		} else {
			logger.Warn("補助ロックなしで購入を続行します",
				zap.Int64("event_id", input.EventID),
				zap.Error(err),
			)
		}
	}

	result, err := s.purchaseWithRetry(ctx, input.EventID, count)
	if err != nil {
		s.recordPurchase(purchaseStatus(err))
		return nil, err
	}

	s.recordPurchase(metrics.PurchaseSuccess)
	if s.metrics != nil {
		s.metrics.PurchaseDuration.Observe(time.Since(start).Seconds())
		s.metrics.TicketsRemaining.
			WithLabelValues(strconv.FormatInt(result.Event.ID, 10)).
			Set(float64(result.Event.TicketsAvailable))
	}
	return result, nil
}

// purchaseWithRetry は一時的な競合に限り読み取り・確認・書き込みの全体をやり直す
// 検証エラーや在庫不足は一切リトライしない
func (s *TicketService) purchaseWithRetry(ctx context.Context, eventID int64, count int) (*PurchaseResult, error) {
	var lastErr error
	for attempt := 1; attempt <= purchaseMaxAttempts; attempt++ {
		result, err := s.allocateOnce(ctx, eventID, count)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, event.ErrTxConflict) {
			return nil, err
		}

		lastErr = err
		logger.Warn("トランザクション競合のためリトライします",
			zap.Int64("event_id", eventID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt == purchaseMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(purchaseRetryDelay):
		}
	}
	return nil, fmt.Errorf("%w: %v", event.ErrStorageUnavailable, lastErr)
}

// allocateOnce は1回分の読み取り・確認・書き込みを単一トランザクションで実行する
// コミット前のエラーは必ずロールバックされ、部分的な書き込みは観測されない
func (s *TicketService) allocateOnce(ctx context.Context, eventID int64, count int) (*PurchaseResult, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if row.TicketsAvailable < count {
		return nil, &event.InsufficientInventoryError{Remaining: row.TicketsAvailable}
	}

	updated, err := s.eventRepo.DecrementTickets(ctx, tx, eventID, count)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		// 直列化の失敗はコミット時に現れることがあるためリトライ対象にする
		return nil, fmt.Errorf("%w: コミットに失敗: %v", event.ErrTxConflict, err)
	}

	return &PurchaseResult{Event: updated, Allocated: count}, nil
}

func (s *TicketService) recordPurchase(status string) {
	if s.metrics != nil {
		s.metrics.PurchasesTotal.WithLabelValues(status).Inc()
	}
}

// purchaseStatus は購入エラーをメトリクスのラベル値に変換する
func purchaseStatus(err error) string {
	var insufficient *event.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		return metrics.PurchaseInsufficient
	case errors.Is(err, event.ErrEventNotFound):
		return metrics.PurchaseNotFound
	default:
		return metrics.PurchaseStorageError
	}
}
