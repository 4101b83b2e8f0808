package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2025, 12, 6, 10, 0, 0, 0, time.UTC)

	e := NewEvent("年末ガラコンサート", "2025-12-31", 500, now)

	require.NotNil(t, e)
	assert.Equal(t, int64(0), e.ID) // IDはストアが採番する
	assert.Equal(t, "年末ガラコンサート", e.Name)
	assert.Equal(t, "2025-12-31", e.Date)
	assert.Equal(t, 500, e.TicketsAvailable)
	assert.Equal(t, now, e.CreatedAt)
	assert.Equal(t, now, e.UpdatedAt)
}

func TestNewEvent_TrimsName(t *testing.T) {
	now := time.Now()

	e := NewEvent("  Gala  ", "2099-01-01", 50, now)

	assert.Equal(t, "Gala", e.Name)
}

func TestUpdateFields_IsEmpty(t *testing.T) {
	assert.True(t, UpdateFields{}.IsEmpty())

	name := "新しい名前"
	assert.False(t, UpdateFields{Name: &name}.IsEmpty())

	date := "2099-01-01"
	assert.False(t, UpdateFields{Date: &date}.IsEmpty())

	tickets := 0
	assert.False(t, UpdateFields{TicketsAvailable: &tickets}.IsEmpty())
}
