package event

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// 検証ルールの定数
const (
	MaxNameLength        = 255
	MaxTicketsPerEvent   = 1000000
	ticketsAvailableRule = "min=0,max=1000000"
)

var validate = validator.New()

// createRules はイベント作成時の検証ルール
// フィールド順が違反メッセージの出力順になる
type createRules struct {
	Name    string `validate:"required,max=255"`
	Date    string `validate:"required,datetime=2006-01-02"`
	Tickets *int   `validate:"required,min=0,max=1000000"`
}

var violationMessages = map[string]string{
	"Name.required":    "イベント名は必須です",
	"Name.max":         "イベント名は255文字以内である必要があります",
	"Date.required":    "開催日は必須です",
	"Date.datetime":    "開催日はYYYY-MM-DD形式である必要があります",
	"Tickets.required": "チケット枚数は必須です",
	"Tickets.min":      "チケット枚数は0以上である必要があります",
	"Tickets.max":      "チケット枚数は1000000以下である必要があります",
}

const (
	pastDateViolation          = "開催日に過去の日付は指定できません"
	ticketsNotIntegerViolation = "チケット枚数は整数である必要があります"
)

// ValidateNew はイベント作成入力を検証する
// 最初の違反で打ち切らず、全ての違反を集めて返す
// ticketsMalformed は枚数が指定されたものの整数として解釈できなかった場合に真
func ValidateNew(name, date string, tickets *int, ticketsMalformed bool, today time.Time) *ValidationError {
	rules := createRules{
		Name:    strings.TrimSpace(name),
		Date:    date,
		Tickets: tickets,
	}
	if ticketsMalformed {
		// 枚数自体は指定されているため必須違反にはしない
		rules.Tickets = new(int)
	}

	var violations []string
	if err := validate.Struct(rules); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return NewValidationError(err.Error())
		}
		for _, fe := range fieldErrs {
			if msg, ok := violationMessages[fe.StructField()+"."+fe.Tag()]; ok {
				violations = append(violations, msg)
			} else {
				violations = append(violations, fe.Error())
			}
		}
	}

	if ticketsMalformed {
		violations = append(violations, ticketsNotIntegerViolation)
	}

	// 過去日チェックは形式が正しい場合のみ
	// YYYY-MM-DDは辞書順比較で日付順比較と一致する
	if isCanonicalDate(date) && date < today.Format(DateLayout) {
		violations = append(violations, pastDateViolation)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Validate は部分更新の検証を行う
// 指定されたフィールドのみを作成時と同じルールで独立に検証する
// ただし開催日の過去日チェックは再適用しない（登録済みイベントの日程変更を妨げないため）
func (f UpdateFields) Validate() *ValidationError {
	if f.IsEmpty() {
		return NewValidationError("更新するフィールドが指定されていません")
	}

	var violations []string
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if err := validate.Var(name, "required,max=255"); err != nil {
			violations = append(violations, varViolations("Name", err)...)
		}
	}
	if f.Date != nil {
		if err := validate.Var(*f.Date, "required,datetime=2006-01-02"); err != nil {
			violations = append(violations, varViolations("Date", err)...)
		}
	}
	if f.TicketsAvailable != nil {
		if err := validate.Var(*f.TicketsAvailable, ticketsAvailableRule); err != nil {
			violations = append(violations, varViolations("Tickets", err)...)
		}
	}
	if f.TicketsMalformed {
		violations = append(violations, ticketsNotIntegerViolation)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// varViolations はvalidate.Varのエラーをフィールド名付きのメッセージに変換する
func varViolations(field string, err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if msg, ok := violationMessages[field+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
		} else {
			msgs = append(msgs, fe.Error())
		}
	}
	return msgs
}

// isCanonicalDate はYYYY-MM-DD形式の正規な日付かを返す
func isCanonicalDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
