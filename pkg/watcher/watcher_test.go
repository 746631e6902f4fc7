package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerBatchesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 30*time.Millisecond, time.Second)
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		in <- ChangeEvent{Type: ChangeTypeWrite, Path: "org.tsv", Count: 1, Timestamp: time.Now()}
	}

	select {
	case ev := <-d.Output():
		assert.Equal(t, 5, ev.Count)
		assert.Equal(t, ChangeTypeWrite, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no debounced event")
	}

	select {
	case ev := <-d.Output():
		t.Fatalf("unexpected second event %+v", ev)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeTypeRemove, Count: 1}
	close(in)

	ev, ok := <-d.Output()
	require.True(t, ok)
	assert.Equal(t, ChangeTypeRemove, ev.Type)

	_, ok = <-d.Output()
	assert.False(t, ok)
}

func TestAnalyzeChanges(t *testing.T) {
	assert.True(t, AnalyzeChanges(ChangeEvent{Type: ChangeTypeWrite}).Rebuild)

	a := AnalyzeChanges(ChangeEvent{Type: ChangeTypeRemove})
	assert.False(t, a.Rebuild)
	assert.True(t, a.KeepCurrent)
}

func TestFileWatcherSeesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "org.tsv")
	require.NoError(t, os.WriteFile(path, []byte("E1,,1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	require.NoError(t, fw.Start(ctx))

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("E1,,2\n"), 0o644))

	select {
	case ev := <-fw.Events():
		assert.Equal(t, fw.Path(), ev.Path)
		assert.Equal(t, ChangeTypeWrite, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for input file")
	}

	cancel()
	for range fw.Events() {
	}
}
