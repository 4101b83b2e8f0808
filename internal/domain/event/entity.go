package event

import (
	"strings"
	"time"
)

// DateLayout はイベント開催日の正規形式
const DateLayout = "2006-01-02"

// Event はイベントエンティティを表す
// TicketsAvailable は残り販売可能枚数であり、元の総枚数は保持しない
type Event struct {
	ID               int64
	Name             string
	Date             string // YYYY-MM-DD
	TicketsAvailable int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewEvent は新しいイベントを作成する
// 名前の前後の空白は永続化前に除去される
func NewEvent(name, date string, ticketsAvailable int, now time.Time) *Event {
	now = now.UTC()
	return &Event{
		Name:             strings.TrimSpace(name),
		Date:             date,
		TicketsAvailable: ticketsAvailable,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// UpdateFields はイベントの部分更新で指定可能なフィールドの集合
// nil のフィールドは更新対象外を意味する
type UpdateFields struct {
	Name             *string
	Date             *string
	TicketsAvailable *int

	// TicketsMalformed は枚数が指定されたものの整数として解釈できなかったことを示す
	// 検証でのみ参照され、永続化層は読まない
	TicketsMalformed bool
}

// IsEmpty は更新対象のフィールドが1つも指定されていないかを返す
func (f UpdateFields) IsEmpty() bool {
	return f.Name == nil && f.Date == nil && f.TicketsAvailable == nil && !f.TicketsMalformed
}
