package transaction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

func txAt(offset time.Duration, merchant string) *Transaction {
	return NewTransaction(uuid.New(), decimal.NewFromInt(25), baseTime.Add(offset), merchant, CategoryGroceries)
}

func TestNewHistory_SortsCopy(t *testing.T) {
	input := []*Transaction{
		txAt(2*time.Minute, "c"),
		txAt(0, "a"),
		nil,
		txAt(time.Minute, "b"),
	}

	h := NewHistory(input)
	require.Equal(t, 3, h.Len())
	assert.Equal(t, "a", h.All()[0].Merchant)
	assert.Equal(t, "b", h.All()[1].Merchant)
	assert.Equal(t, "c", h.All()[2].Merchant)

	// caller's slice is left alone
	assert.Equal(t, "c", input[0].Merchant)
}

func TestNewHistory_StableForEqualTimestamps(t *testing.T) {
	first := txAt(0, "first")
	second := txAt(0, "second")

	h := NewHistory([]*Transaction{first, second})
	assert.Same(t, first, h.All()[0])
	assert.Same(t, second, h.All()[1])
}

func TestHistory_Last(t *testing.T) {
	var txs []*Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, txAt(time.Duration(i)*time.Minute, string(rune('a'+i))))
	}
	h := NewHistory(txs)

	last := h.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].Merchant)
	assert.Equal(t, "e", last[1].Merchant)

	assert.Len(t, h.Last(20), 5)
	assert.Empty(t, h.Last(0))
}

func TestHistory_Within(t *testing.T) {
	h := NewHistory([]*Transaction{
		txAt(-2*time.Hour, "old"),
		txAt(-time.Hour, "boundary"),
		txAt(-59*time.Minute, "recent"),
		txAt(0, "now"),
		txAt(time.Minute, "future"),
	})

	within := h.Within(baseTime, time.Hour)
	require.Len(t, within, 2)
	assert.Equal(t, "recent", within[0].Merchant)
	assert.Equal(t, "now", within[1].Merchant)
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(nil)
	assert.True(t, h.IsEmpty())
	assert.Empty(t, h.Last(10))
	assert.Empty(t, h.Within(baseTime, time.Hour))
}
