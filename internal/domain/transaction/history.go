package transaction

import (
	"sort"
	"time"
)

// History is a read-only, chronological snapshot of one user's past transactions.
// Every risk factor computed for a single scoring call reads the same snapshot.
type History struct {
	entries []*Transaction
}

// NewHistory copies txs and orders the copy by timestamp, oldest first.
// Entries with equal timestamps keep the order the store returned them in.
func NewHistory(txs []*Transaction) History {
	entries := make([]*Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			entries = append(entries, tx)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return History{entries: entries}
}

// Len returns the number of transactions in the snapshot
func (h History) Len() int {
	return len(h.entries)
}

// IsEmpty reports whether the user has no prior transactions
func (h History) IsEmpty() bool {
	return len(h.entries) == 0
}

// All returns the snapshot in chronological order. The slice must not be modified.
func (h History) All() []*Transaction {
	return h.entries
}

// Last returns the n most recent transactions, oldest first
func (h History) Last(n int) []*Transaction {
	if n <= 0 {
		return nil
	}
	if n >= len(h.entries) {
		return h.entries
	}
	return h.entries[len(h.entries)-n:]
}

// Within returns the transactions in the half-open window (ref-window, ref], oldest first
func (h History) Within(ref time.Time, window time.Duration) []*Transaction {
	start := ref.Add(-window)
	var out []*Transaction
	for _, tx := range h.entries {
		if tx.Timestamp.After(start) && !tx.Timestamp.After(ref) {
			out = append(out, tx)
		}
	}
	return out
}
