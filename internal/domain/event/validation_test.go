package event

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 12, 6, 10, 0, 0, 0, time.UTC)

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

func TestValidateNew_Valid(t *testing.T) {
	vErr := ValidateNew("年末ライブ", "2025-12-31", intPtr(100), false, testToday)
	assert.Nil(t, vErr)
}

func TestValidateNew_CollectsAllViolations(t *testing.T) {
	// 空の入力では必須違反が3件同時に報告される
	vErr := ValidateNew("", "", nil, false, testToday)

	require.NotNil(t, vErr)
	assert.Len(t, vErr.Violations, 3)
	assert.Contains(t, vErr.Violations, "イベント名は必須です")
	assert.Contains(t, vErr.Violations, "開催日は必須です")
	assert.Contains(t, vErr.Violations, "チケット枚数は必須です")
}

func TestValidateNew_BlankNameIsMissing(t *testing.T) {
	vErr := ValidateNew("   ", "2025-12-31", intPtr(10), false, testToday)

	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Violations, "イベント名は必須です")
}

func TestValidateNew_NameTooLong(t *testing.T) {
	vErr := ValidateNew(strings.Repeat("あ", 256), "2025-12-31", intPtr(10), false, testToday)

	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Violations, "イベント名は255文字以内である必要があります")

	// 255文字ちょうどは許容される
	assert.Nil(t, ValidateNew(strings.Repeat("あ", 255), "2025-12-31", intPtr(10), false, testToday))
}

func TestValidateNew_DateFormat(t *testing.T) {
	tests := []struct {
		name string
		date string
		ok   bool
	}{
		{"正規形式", "2025-12-31", true},
		{"ゼロ埋めなし", "2025-1-1", false},
		{"スラッシュ区切り", "2025/12/31", false},
		{"存在しない日付", "2025-02-30", false},
		{"時刻付き", "2025-12-31T00:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vErr := ValidateNew("イベント", tt.date, intPtr(10), false, testToday)
			if tt.ok {
				assert.Nil(t, vErr)
			} else {
				require.NotNil(t, vErr)
				assert.Contains(t, vErr.Violations, "開催日はYYYY-MM-DD形式である必要があります")
			}
		})
	}
}

func TestValidateNew_PastDate(t *testing.T) {
	vErr := ValidateNew("イベント", "2025-12-05", intPtr(10), false, testToday)

	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Violations, "開催日に過去の日付は指定できません")

	// 当日開催は過去扱いにならない
	assert.Nil(t, ValidateNew("イベント", "2025-12-06", intPtr(10), false, testToday))
}

func TestValidateNew_TicketRange(t *testing.T) {
	vErr := ValidateNew("イベント", "2025-12-31", intPtr(-1), false, testToday)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Violations, "チケット枚数は0以上である必要があります")

	vErr = ValidateNew("イベント", "2025-12-31", intPtr(1000001), false, testToday)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Violations, "チケット枚数は1000000以下である必要があります")

	// 0枚と上限ちょうどは許容される
	assert.Nil(t, ValidateNew("イベント", "2025-12-31", intPtr(0), false, testToday))
	assert.Nil(t, ValidateNew("イベント", "2025-12-31", intPtr(1000000), false, testToday))
}

func TestValidateNew_MalformedTickets(t *testing.T) {
	// 整数として解釈できない枚数は専用の違反になり、必須違反とは重複しない
	vErr := ValidateNew("イベント", "2025-12-31", nil, true, testToday)
	require.NotNil(t, vErr)
	assert.Equal(t, []string{"チケット枚数は整数である必要があります"}, vErr.Violations)
}

func TestValidateNew_MalformedTicketsCollectedWithOthers(t *testing.T) {
	// 枚数の解釈失敗は他のフィールドの違反収集を妨げない
	vErr := ValidateNew("", "2025-12-31", nil, true, testToday)

	require.NotNil(t, vErr)
	assert.Equal(t, []string{
		"イベント名は必須です",
		"チケット枚数は整数である必要があります",
	}, vErr.Violations)
}

func TestUpdateFields_Validate_Empty(t *testing.T) {
	vErr := UpdateFields{}.Validate()

	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Violations, "更新するフィールドが指定されていません")
}

func TestUpdateFields_Validate_PerField(t *testing.T) {
	// 指定されたフィールドのみが検証される
	vErr := UpdateFields{Name: strPtr("  ")}.Validate()
	require.NotNil(t, vErr)
	assert.Equal(t, []string{"イベント名は必須です"}, vErr.Violations)

	vErr = UpdateFields{Date: strPtr("31-12-2025")}.Validate()
	require.NotNil(t, vErr)
	assert.Equal(t, []string{"開催日はYYYY-MM-DD形式である必要があります"}, vErr.Violations)

	vErr = UpdateFields{TicketsAvailable: intPtr(-5)}.Validate()
	require.NotNil(t, vErr)
	assert.Equal(t, []string{"チケット枚数は0以上である必要があります"}, vErr.Violations)
}

func TestUpdateFields_Validate_PastDateAllowed(t *testing.T) {
	// 更新時は形式のみ検証し、過去日チェックは適用しない
	vErr := UpdateFields{Date: strPtr("2000-01-01")}.Validate()
	assert.Nil(t, vErr)
}

func TestUpdateFields_Validate_MultipleViolations(t *testing.T) {
	vErr := UpdateFields{
		Name:             strPtr(""),
		Date:             strPtr("invalid"),
		TicketsAvailable: intPtr(2000000),
	}.Validate()

	require.NotNil(t, vErr)
	assert.Len(t, vErr.Violations, 3)
}

func TestUpdateFields_Validate_MalformedTickets(t *testing.T) {
	// 解釈できない枚数だけの指定でも「フィールド未指定」にはならない
	fields := UpdateFields{TicketsMalformed: true}
	assert.False(t, fields.IsEmpty())

	vErr := fields.Validate()
	require.NotNil(t, vErr)
	assert.Equal(t, []string{"チケット枚数は整数である必要があります"}, vErr.Violations)

	vErr = UpdateFields{Date: strPtr("invalid"), TicketsMalformed: true}.Validate()
	require.NotNil(t, vErr)
	assert.Len(t, vErr.Violations, 2)
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("イベント名は必須です", "開催日は必須です")
	assert.Contains(t, err.Error(), "バリデーションエラー")
	assert.Contains(t, err.Error(), "イベント名は必須です")
}

func TestInsufficientInventoryError_Error(t *testing.T) {
	err := &InsufficientInventoryError{Remaining: 2}
	assert.Equal(t, "チケットの在庫が不足しています（残り2枚）", err.Error())
}
