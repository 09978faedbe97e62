package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newhook/swecheck/internal/watcher"
)

func startWatcher(t *testing.T, cfg watcher.Config) (<-chan watcher.Event[watcher.WatcherEvent], *watcher.Watcher) {
	t.Helper()
	w, err := watcher.New(cfg)
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	sub := w.Broker().Subscribe(ctx)

	require.NoError(t, w.Start(), "failed to start watcher")
	return sub, w
}

func countEvents(sub <-chan watcher.Event[watcher.WatcherEvent], window time.Duration) (int, []string) {
	var count int
	var paths []string
	deadline := time.After(window)
	for {
		select {
		case evt, ok := <-sub:
			if !ok {
				return count, paths
			}
			if evt.Payload.Type == watcher.InputsChanged {
				count++
				paths = append(paths, evt.Payload.Paths...)
			}
		case <-deadline:
			return count, paths
		}
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "x_after.log")
	require.NoError(t, os.WriteFile(logPath, []byte("start"), 0644))

	sub, _ := startWatcher(t, watcher.Config{Dir: dir, DebounceDur: 150 * time.Millisecond, MaxDepth: 1})

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(logPath, []byte(fmt.Sprintf("line%d", i)), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	count, paths := countEvents(sub, 500*time.Millisecond)
	require.GreaterOrEqual(t, count, 1, "expected at least one notification")
	require.LessOrEqual(t, count, 3, "expected debouncing to coalesce most writes (got %d notifications for 10 writes)", count)
	require.Contains(t, paths, logPath)
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	otherPath := filepath.Join(dir, "notes.txt")
	reportPath := filepath.Join(dir, "analysis_report.json")
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	sub, _ := startWatcher(t, watcher.Config{
		Dir:         dir,
		DebounceDur: 50 * time.Millisecond,
		Ignore:      []string{"analysis_report.json"},
		MaxDepth:    1,
	})

	require.NoError(t, os.WriteFile(otherPath, []byte("changed"), 0644))
	require.NoError(t, os.WriteFile(reportPath, []byte("{}"), 0644))

	count, _ := countEvents(sub, 200*time.Millisecond)
	require.Zero(t, count, "expected no notification for irrelevant files")
}

func TestWatcher_WatchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	logs := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logs, 0755))

	sub, _ := startWatcher(t, watcher.Config{Dir: dir, DebounceDur: 50 * time.Millisecond, MaxDepth: 2})

	logPath := filepath.Join(logs, "x_base.log")
	require.NoError(t, os.WriteFile(logPath, []byte("test a ... ok"), 0644))

	count, paths := countEvents(sub, 500*time.Millisecond)
	require.GreaterOrEqual(t, count, 1, "expected notification for a log in a subdirectory")
	require.Contains(t, paths, logPath)
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	w, err := watcher.New(watcher.DefaultConfig(dir))
	require.NoError(t, err)

	sub := w.Broker().Subscribe(context.Background())
	require.NoError(t, w.Start())

	done := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return in time")
	}

	_, ok := <-sub
	require.False(t, ok, "expected subscription to be closed after Stop")
	require.NoError(t, w.Stop(), "second Stop should be a no-op")
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)
}

func TestBroker_SubscriptionClosesWithContext(t *testing.T) {
	b := watcher.NewBroker[int]()
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)

	b.Publish(7)
	evt := <-sub
	require.Equal(t, 7, evt.Payload)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
