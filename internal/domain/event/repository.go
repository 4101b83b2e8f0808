package event

import (
	"context"

	"github.com/zbourini/tigertickets-sub000/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Insert は新しいイベントを永続化し、採番されたIDをエンティティに設定する
	Insert(ctx context.Context, e *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id int64) (*Event, error)

	// List は全イベントを開催日昇順（同日の場合は登録順）で取得する
	List(ctx context.Context) ([]*Event, error)

	// UpdateFields は指定されたフィールドのみを置き換え、updated_atを更新する
	UpdateFields(ctx context.Context, id int64, fields UpdateFields) (*Event, error)

	// GetByIDForUpdate はトランザクション内で行ロックを取得してイベントを読み取る
	// 同一行に対する他の割り当てはコミットまたはロールバックまでブロックされる
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*Event, error)

	// DecrementTickets はトランザクション内で残り枚数をamountだけ減算する
	// 呼び出し前にGetByIDForUpdateで在庫を確認していることが前提
	DecrementTickets(ctx context.Context, tx transaction.Tx, id int64, amount int) (*Event, error)
}
