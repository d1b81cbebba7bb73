package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispatchRecorder collects handler invocations safely across goroutines.
type dispatchRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *dispatchRecorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *dispatchRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

func TestDebouncer(t *testing.T) {
	t.Run("A burst of raw events collapses to one dispatch", func(t *testing.T) {
		rec := &dispatchRecorder{}
		d := newDebouncer(20*time.Millisecond, 200*time.Millisecond, rec.record)

		d.offer("/tmp/a.csv")
		d.offer("/tmp/a.csv")
		d.offer("/tmp/a.csv")

		assert.Eventually(t, func() bool {
			return len(rec.snapshot()) == 1
		}, time.Second, 5*time.Millisecond)

		// Nothing further fires inside the window.
		time.Sleep(50 * time.Millisecond)
		assert.Len(t, rec.snapshot(), 1)
	})

	t.Run("Distinct paths debounce independently", func(t *testing.T) {
		rec := &dispatchRecorder{}
		d := newDebouncer(10*time.Millisecond, 200*time.Millisecond, rec.record)

		d.offer("/tmp/a.csv")
		d.offer("/tmp/b.csv")

		assert.Eventually(t, func() bool {
			return len(rec.snapshot()) == 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("A new event after the window expires dispatches again", func(t *testing.T) {
		rec := &dispatchRecorder{}
		d := newDebouncer(5*time.Millisecond, 30*time.Millisecond, rec.record)

		d.offer("/tmp/a.csv")
		require.Eventually(t, func() bool {
			return len(rec.snapshot()) == 1
		}, time.Second, time.Millisecond)

		time.Sleep(60 * time.Millisecond)
		d.offer("/tmp/a.csv")

		assert.Eventually(t, func() bool {
			return len(rec.snapshot()) == 2
		}, time.Second, time.Millisecond)
	})
}

func TestWatcher(t *testing.T) {
	start := func(t *testing.T, dir string, handler Handler) *Watcher {
		t.Helper()
		w, err := New(dir, handler, zerolog.Nop(),
			WithSettleDelay(30*time.Millisecond),
			WithDebounceWindow(300*time.Millisecond),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		require.NoError(t, w.Start(ctx))
		t.Cleanup(func() { _ = w.Stop() })
		return w
	}

	t.Run("A new file triggers the handler once with its path", func(t *testing.T) {
		dir := t.TempDir()
		rec := &dispatchRecorder{}
		start(t, dir, rec.record)

		path := filepath.Join(dir, "drop.csv")
		require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))

		require.Eventually(t, func() bool {
			return len(rec.snapshot()) == 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, path, rec.snapshot()[0])

		// The create plus writes must not fire a second dispatch.
		time.Sleep(100 * time.Millisecond)
		assert.Len(t, rec.snapshot(), 1)
	})

	t.Run("A file deleted before settling is silently skipped", func(t *testing.T) {
		dir := t.TempDir()
		rec := &dispatchRecorder{}
		start(t, dir, rec.record)

		path := filepath.Join(dir, "fleeting.csv")
		require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))
		require.NoError(t, os.Remove(path))

		time.Sleep(150 * time.Millisecond)
		assert.Empty(t, rec.snapshot())
	})

	t.Run("A new subdirectory is ignored", func(t *testing.T) {
		dir := t.TempDir()
		rec := &dispatchRecorder{}
		start(t, dir, rec.record)

		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

		time.Sleep(150 * time.Millisecond)
		assert.Empty(t, rec.snapshot())
	})

	t.Run("Watchers on different directories do not share state", func(t *testing.T) {
		dirA := t.TempDir()
		dirB := t.TempDir()
		recA := &dispatchRecorder{}
		recB := &dispatchRecorder{}
		start(t, dirA, recA.record)
		start(t, dirB, recB.record)

		require.NoError(t, os.WriteFile(filepath.Join(dirA, "a.csv"), []byte("x\n1\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dirB, "b.csv"), []byte("x\n1\n"), 0o644))

		require.Eventually(t, func() bool {
			return len(recA.snapshot()) == 1 && len(recB.snapshot()) == 1
		}, 2*time.Second, 10*time.Millisecond)

		assert.Contains(t, recA.snapshot()[0], "a.csv")
		assert.Contains(t, recB.snapshot()[0], "b.csv")
	})

	t.Run("New rejects a missing or non-directory path", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "absent"), func(string) {}, zerolog.Nop())
		assert.Error(t, err)

		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		_, err = New(file, func(string) {}, zerolog.Nop())
		assert.Error(t, err)
	})
}
