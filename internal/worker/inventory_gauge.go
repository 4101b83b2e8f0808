package worker

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/logger"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/metrics"
)

// InventoryLister はイベント一覧を取得するインターフェース
type InventoryLister interface {
	ListEvents(ctx context.Context) ([]*event.Event, error)
}

// InventoryGaugeRefresher は残りチケット枚数のゲージを定期更新するワーカー
type InventoryGaugeRefresher struct {
	queries  InventoryLister
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewInventoryGaugeRefresher は新しいワーカーを作成する
func NewInventoryGaugeRefresher(queries InventoryLister, m *metrics.Metrics, interval time.Duration) *InventoryGaugeRefresher {
	return &InventoryGaugeRefresher{
		queries:  queries,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始する
func (w *InventoryGaugeRefresher) Start(ctx context.Context) {
	logger.Info("在庫ゲージ更新ワーカー開始", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("在庫ゲージ更新ワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("在庫ゲージ更新ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// Stop はワーカーを停止する
func (w *InventoryGaugeRefresher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *InventoryGaugeRefresher) refresh(ctx context.Context) {
	events, err := w.queries.ListEvents(ctx)
	if err != nil {
		logger.Warn("在庫ゲージ更新に失敗", zap.Error(err))
		return
	}

	for _, e := range events {
		w.metrics.TicketsRemaining.
			WithLabelValues(strconv.FormatInt(e.ID, 10)).
			Set(float64(e.TicketsAvailable))
	}
}
