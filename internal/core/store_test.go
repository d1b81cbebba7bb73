package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliink/formatbridge/internal/model"
)

func TestTransactionStoreSubmit(t *testing.T) {
	store := NewTransactionStore(zerolog.Nop())

	t.Run("Identifiers are 1-based, sequential, and gap-free", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			txn := store.Submit(model.RecordFromPairs("n", fmt.Sprint(i)))
			assert.Equal(t, int64(i+1), txn.ID)
			assert.False(t, txn.ReceivedAt.IsZero())
		}
	})

	t.Run("List returns transactions in insertion order", func(t *testing.T) {
		txns := store.List()
		require.Len(t, txns, 5)
		for i, txn := range txns {
			assert.Equal(t, int64(i+1), txn.ID)
			assert.Equal(t, fmt.Sprint(i), txn.Record.GetOrEmpty("n"))
		}
	})

	t.Run("Well-formed records are never rejected", func(t *testing.T) {
		txn := store.Submit(model.NewRecord())
		assert.Equal(t, int64(6), txn.ID)
	})
}

func TestTransactionStoreRecords(t *testing.T) {
	store := NewTransactionStore(zerolog.Nop())
	store.Submit(model.RecordFromPairs("amount", "50"))

	rs := store.Records()
	require.Len(t, rs, 1)
	assert.Equal(t, []string{"id", "receivedAt", "amount"}, rs[0].Keys())
	assert.Equal(t, "1", rs[0].GetOrEmpty("id"))
}

func TestTransactionStoreConcurrentSubmit(t *testing.T) {
	// Identifiers stay gap-free under parallel submissions interleaved with
	// snapshot reads.
	store := NewTransactionStore(zerolog.Nop())

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				store.Submit(model.RecordFromPairs("k", "v"))
				store.Records()
			}
		}()
	}
	wg.Wait()

	txns := store.List()
	require.Len(t, txns, workers*perWorker)

	seen := make(map[int64]bool, len(txns))
	for _, txn := range txns {
		seen[txn.ID] = true
	}
	for id := int64(1); id <= int64(workers*perWorker); id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}
