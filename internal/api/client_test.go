package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliink/formatbridge/internal/model"
)

func TestClientSubmit(t *testing.T) {
	t.Run("Submits against a live bridge API", func(t *testing.T) {
		env := newTestEnv(t)
		server := httptest.NewServer(env.api.Router())
		defer server.Close()

		client := NewClient(server.URL, time.Second)

		txn, err := client.Submit(model.RecordFromPairs("txn_id", "T1", "amount", "50"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), txn.ID)
		assert.False(t, txn.ReceivedAt.IsZero())

		txn, err = client.Submit(model.RecordFromPairs("txn_id", "T2"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), txn.ID)

		assert.Equal(t, 2, env.store.Count())
	})

	t.Run("Non-created responses surface as delivery errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.Submit(model.RecordFromPairs("k", "v"))
		assert.Error(t, err)
	})

	t.Run("A hung endpoint times out instead of leaking", func(t *testing.T) {
		block := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer server.Close()
		defer close(block)

		client := NewClient(server.URL, 50*time.Millisecond)
		_, err := client.Submit(model.RecordFromPairs("k", "v"))
		assert.Error(t, err)
	})

	t.Run("Client satisfies the bridge submitter contract", func(t *testing.T) {
		var _ interface {
			Submit(rec *model.Record) (model.Transaction, error)
		} = NewClient("http://localhost:8080", 0)
	})
}
