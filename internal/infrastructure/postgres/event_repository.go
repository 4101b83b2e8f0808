package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zbourini/tigertickets-sub000/internal/domain/event"
	"github.com/zbourini/tigertickets-sub000/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	Date             string    `db:"date"`
	TicketsAvailable int       `db:"tickets_available"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:               r.ID,
		Name:             r.Name,
		Date:             r.Date,
		TicketsAvailable: r.TicketsAvailable,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

const eventColumns = `id, name, date, tickets_available, created_at, updated_at`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert は新しいイベントを永続化する
func (r *EventRepository) Insert(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, date, tickets_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Name, e.Date, e.TicketsAvailable, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return classify(err, "イベント作成に失敗しました")
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, classify(err, "イベント取得に失敗しました")
	}
	return row.toEntity(), nil
}

// List は全イベントを開催日昇順で取得する
// 同日のイベントは登録順（ID昇順）で安定して並ぶ
func (r *EventRepository) List(ctx context.Context) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, id ASC`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, classify(err, "イベント一覧取得に失敗しました")
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// UpdateFields は指定されたフィールドのみを置き換える
// updated_atはフィールドの指定内容にかかわらず常に更新される
func (r *EventRepository) UpdateFields(ctx context.Context, id int64, fields event.UpdateFields) (*event.Event, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if fields.Name != nil {
		args = append(args, *fields.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if fields.Date != nil {
		args = append(args, *fields.Date)
		sets = append(sets, fmt.Sprintf("date = $%d", len(args)))
	}
	if fields.TicketsAvailable != nil {
		args = append(args, *fields.TicketsAvailable)
		sets = append(sets, fmt.Sprintf("tickets_available = $%d", len(args)))
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE events SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), eventColumns,
	)

	var row eventRow
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, classify(err, "イベント更新に失敗しました")
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate はトランザクション内で行ロック付きの読み取りを行う
// 同一イベントへの同時割り当てはここで直列化される
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("不正なトランザクション型です")
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	var row eventRow
	err := sqlxTx.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, classify(err, "イベントのロック取得に失敗しました")
	}
	return row.toEntity(), nil
}

// DecrementTickets はトランザクション内で残り枚数を減算する
// WHERE句の在庫条件は行ロック下での読み取り確認に対する二重の防壁
func (r *EventRepository) DecrementTickets(ctx context.Context, tx transaction.Tx, id int64, amount int) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("不正なトランザクション型です")
	}

	query := `
		UPDATE events
		SET tickets_available = tickets_available - $2, updated_at = $3
		WHERE id = $1 AND tickets_available >= $2
		RETURNING ` + eventColumns

	var row eventRow
	err := sqlxTx.QueryRowxContext(ctx, query, id, amount, time.Now().UTC()).StructScan(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 行ロックを保持したまま在庫確認済みのため通常は到達しない
			return nil, fmt.Errorf("%w: 減算対象の行が更新されませんでした", event.ErrTxConflict)
		}
		return nil, classify(err, "チケット減算に失敗しました")
	}
	return row.toEntity(), nil
}

// classify はドライバーエラーをドメインのエラー分類に変換する
func classify(err error, msg string) error {
	switch {
	case isTransient(err):
		return fmt.Errorf("%w: %s: %v", event.ErrTxConflict, msg, err)
	case isConstraintViolation(err):
		return fmt.Errorf("%w: %s: %v", event.ErrConstraintViolation, msg, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
