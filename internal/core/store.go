package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sliink/formatbridge/internal/model"
)

// TransactionStore is the in-memory, append-only list of accepted
// transactions. It assigns monotonically increasing 1-based identifiers and
// never rejects a well-formed record; there is no business validation and no
// durability. The mutex stands in for the single-threaded event loop the
// design assumes: handlers run on goroutines here, so every shared structure
// is guarded explicitly.
type TransactionStore struct {
	mu           sync.Mutex
	transactions []model.Transaction
	nextID       int64
	logger       zerolog.Logger
}

// NewTransactionStore creates an empty store.
func NewTransactionStore(logger zerolog.Logger) *TransactionStore {
	return &TransactionStore{
		nextID: 1,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Submit assigns the next sequential identifier and a receipt timestamp,
// appends the transaction, and returns it.
func (s *TransactionStore) Submit(rec *model.Record) model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := model.Transaction{
		ID:         s.nextID,
		ReceivedAt: time.Now().UTC(),
		Record:     rec,
	}
	s.nextID++
	s.transactions = append(s.transactions, txn)

	s.logger.Debug().Int64("id", txn.ID).Int("fields", rec.Len()).Msg("transaction stored")
	return txn
}

// List returns all stored transactions in insertion order.
func (s *TransactionStore) List() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Records returns the flattened record view of the store, the shape exports
// serialize. The snapshot is best-effort: submissions racing an export land
// on one side or the other of the copy.
func (s *TransactionStore) Records() model.RecordSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := make(model.RecordSet, 0, len(s.transactions))
	for _, txn := range s.transactions {
		rs = append(rs, txn.AsRecord())
	}
	return rs
}

// Count returns the number of stored transactions.
func (s *TransactionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}
