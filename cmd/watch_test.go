package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newhook/swecheck/internal/analysis"
	"github.com/newhook/swecheck/internal/watcher"
)

func TestHandleWatchEvent(t *testing.T) {
	tests := []struct {
		name      string
		evt       watcher.WatcherEvent
		wantRuns  int
		wantCache int
	}{
		{
			name:      "inputs changed keeps cached results",
			evt:       watcher.WatcherEvent{Type: watcher.InputsChanged, Paths: []string{"x_after.log"}},
			wantRuns:  1,
			wantCache: 1,
		},
		{
			name:      "watch error flushes and reruns",
			evt:       watcher.WatcherEvent{Type: watcher.WatchError, Err: errors.New("queue overflow")},
			wantRuns:  1,
			wantCache: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := analysis.NewCache(0)
			c.Set(ctx, "key", &analysis.StageResult{}, 0)

			runs := 0
			handleWatchEvent(ctx, tt.evt, c, func() { runs++ })

			assert.Equal(t, tt.wantRuns, runs)
			assert.Equal(t, tt.wantCache, c.Len())
		})
	}
}
