package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbourini/tigertickets-sub000/internal/config"
	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
	"github.com/zbourini/tigertickets-sub000/internal/infrastructure/postgres"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/clock"
)

const testEventsDDL = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    date TEXT NOT NULL,
    tickets_available INTEGER NOT NULL DEFAULT 0 CHECK (tickets_available >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// setupTestEnv は実DBに接続したサービス一式を用意する
// DBが起動していない環境ではテストをスキップする
func setupTestEnv(t *testing.T) (*CatalogService, *TicketService, *InventoryQueryService, func()) {
	t.Helper()

	cfg := config.Load()
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	if _, err := db.Exec(testEventsDDL); err != nil {
		db.Close()
		t.Skipf("テーブル作成エラー: %v", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	txManager := postgres.NewTxManager(db)

	catalogService := NewCatalogService(eventRepo, clock.NewSystem())
	// 補助ロックなしでもDBトランザクションだけで売り越しが防がれることを検証する
	ticketService := NewTicketService(txManager, eventRepo, nil, nil)
	queryService := NewInventoryQueryService(eventRepo)

	cleanup := func() {
		cleanupEvents(db)
		db.Close()
	}
	return catalogService, ticketService, queryService, cleanup
}

func cleanupEvents(db *sqlx.DB) {
	db.Exec("DELETE FROM events")
}

func createTestEvent(t *testing.T, catalog *CatalogService, tickets int) *event.Event {
	t.Helper()
	e, err := catalog.CreateEvent(context.Background(), CreateEventInput{
		Name:             "同時購入テストイベント",
		Date:             "2099-01-01",
		TicketsAvailable: intPtr(tickets),
	})
	require.NoError(t, err)
	return e
}

// TestScenario_ConcurrentPurchasesNeverOversell は中核の保証を検証する
// 同時購入の要求合計が在庫を超えても、売り越しは決して起こらない
func TestScenario_ConcurrentPurchasesNeverOversell(t *testing.T) {
	catalog, tickets, queries, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("20人が同時に1枚ずつ購入（在庫10）", func(t *testing.T) {
		e := createTestEvent(t, catalog, 10)

		const numBuyers = 20
		var successCount, insufficientCount int64
		var allocatedTotal int64

		var wg sync.WaitGroup
		for i := 0; i < numBuyers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := tickets.Purchase(ctx, PurchaseInput{EventID: e.ID, Count: 1})
				if err == nil {
					atomic.AddInt64(&successCount, 1)
					atomic.AddInt64(&allocatedTotal, int64(result.Allocated))
					return
				}
				var insufficient *event.InsufficientInventoryError
				if errors.As(err, &insufficient) {
					atomic.AddInt64(&insufficientCount, 1)
					return
				}
				t.Errorf("想定外のエラー: %v", err)
			}()
		}
		wg.Wait()

		// 在庫を使い切るだけの成功と、残りの在庫不足
		assert.Equal(t, int64(10), successCount)
		assert.Equal(t, int64(10), insufficientCount)

		// 保存則: 割り当て合計 + 最終在庫 == 初期在庫
		final, err := queries.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, final.TicketsAvailable)
		assert.Equal(t, int64(10), allocatedTotal+int64(final.TicketsAvailable))
		assert.GreaterOrEqual(t, final.TicketsAvailable, 0)
	})
}

// TestScenario_CompetingBulkPurchases は複数枚購入の競合を検証する
func TestScenario_CompetingBulkPurchases(t *testing.T) {
	catalog, tickets, queries, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("在庫5に対して3枚購入が2件競合", func(t *testing.T) {
		e := createTestEvent(t, catalog, 5)

		results := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tickets.Purchase(ctx, PurchaseInput{EventID: e.ID, Count: 3})
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var successes int
		var insufficients []*event.InsufficientInventoryError
		for err := range results {
			if err == nil {
				successes++
				continue
			}
			var insufficient *event.InsufficientInventoryError
			require.ErrorAs(t, err, &insufficient)
			insufficients = append(insufficients, insufficient)
		}

		// 3+3=6 > 5 のため、ちょうど1件だけが成功する
		assert.Equal(t, 1, successes)
		require.Len(t, insufficients, 1)
		// 敗者には実際の残り枚数が伝わる
		assert.Equal(t, 2, insufficients[0].Remaining)

		final, err := queries.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, final.TicketsAvailable)
	})
}

// TestScenario_SequentialProperties は逐次実行での性質を検証する
func TestScenario_SequentialProperties(t *testing.T) {
	catalog, tickets, queries, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("在庫を0に更新した後の購入は在庫不足", func(t *testing.T) {
		e := createTestEvent(t, catalog, 10)

		_, err := catalog.UpdateEvent(ctx, e.ID, event.UpdateFields{TicketsAvailable: intPtr(0)})
		require.NoError(t, err)

		_, err = tickets.Purchase(ctx, PurchaseInput{EventID: e.ID, Count: 1})
		var insufficient *event.InsufficientInventoryError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 0, insufficient.Remaining)
	})

	t.Run("存在しないイベントの購入はNotFound", func(t *testing.T) {
		_, err := tickets.Purchase(ctx, PurchaseInput{EventID: 999999, Count: 1})
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("書き込みのない2回の読み取りは同一", func(t *testing.T) {
		e := createTestEvent(t, catalog, 7)

		first, err := queries.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		second, err := queries.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("購入成功でupdated_atが更新される", func(t *testing.T) {
		e := createTestEvent(t, catalog, 3)

		result, err := tickets.Purchase(ctx, PurchaseInput{EventID: e.ID, Count: 1})
		require.NoError(t, err)
		assert.True(t, result.Event.UpdatedAt.After(e.UpdatedAt) || result.Event.UpdatedAt.Equal(e.UpdatedAt))
		assert.Equal(t, 2, result.Event.TicketsAvailable)
	})

	t.Run("一覧は開催日昇順で同日は登録順", func(t *testing.T) {
		a, err := catalog.CreateEvent(ctx, CreateEventInput{Name: "後の日程", Date: "2099-06-01", TicketsAvailable: intPtr(1)})
		require.NoError(t, err)
		b, err := catalog.CreateEvent(ctx, CreateEventInput{Name: "先の日程", Date: "2099-05-01", TicketsAvailable: intPtr(1)})
		require.NoError(t, err)
		c, err := catalog.CreateEvent(ctx, CreateEventInput{Name: "同日の後発", Date: "2099-05-01", TicketsAvailable: intPtr(1)})
		require.NoError(t, err)

		events, err := queries.ListEvents(ctx)
		require.NoError(t, err)

		pos := map[int64]int{}
		for i, ev := range events {
			pos[ev.ID] = i
		}
		assert.Less(t, pos[b.ID], pos[c.ID])
		assert.Less(t, pos[c.ID], pos[a.ID])
	})
}
