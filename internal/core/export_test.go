package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliink/formatbridge/internal/model"
)

func TestExporter(t *testing.T) {
	t.Run("Export writes an epoch-millis named file and reports the count", func(t *testing.T) {
		dir := t.TempDir()
		store := NewTransactionStore(zerolog.Nop())
		store.Submit(model.RecordFromPairs("amount", "50"))
		store.Submit(model.RecordFromPairs("amount", "75"))

		exporter := NewExporter(store, dir, zerolog.Nop())
		exporter.now = func() time.Time { return time.UnixMilli(1714000000000) }

		name, count, err := exporter.Export("csv")
		require.NoError(t, err)
		assert.Equal(t, "export-1714000000000.csv", name)
		assert.Equal(t, 2, count)

		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(content), "id,receivedAt,amount\n")
		assert.Contains(t, string(content), ",50\n")
	})

	t.Run("JSON export parses back to the store contents", func(t *testing.T) {
		dir := t.TempDir()
		store := NewTransactionStore(zerolog.Nop())
		store.Submit(model.RecordFromPairs("k", "v"))

		exporter := NewExporter(store, dir, zerolog.Nop())
		name, count, err := exporter.Export("json")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)

		var rs model.RecordSet
		require.NoError(t, json.Unmarshal(content, &rs))
		require.Len(t, rs, 1)
		assert.Equal(t, "v", rs[0].GetOrEmpty("k"))
	})

	t.Run("Unsupported format fails before writing anything", func(t *testing.T) {
		dir := t.TempDir()
		store := NewTransactionStore(zerolog.Nop())
		exporter := NewExporter(store, dir, zerolog.Nop())

		_, _, err := exporter.Export("xyz")
		var fe *model.FormatError
		require.ErrorAs(t, err, &fe)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Empty store exports an empty JSON array", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewExporter(NewTransactionStore(zerolog.Nop()), dir, zerolog.Nop())

		name, count, err := exporter.Export("json")
		require.NoError(t, err)
		assert.Zero(t, count)

		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(content))
	})
}
