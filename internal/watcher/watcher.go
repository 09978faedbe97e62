// Package watcher watches a deliverable directory and publishes a debounced
// notification whenever one of its inputs changes.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/newhook/swecheck/internal/logging"
)

// EventType identifies what happened.
type EventType int

const (
	// InputsChanged means at least one input file was created, written, removed
	// or renamed.
	InputsChanged EventType = iota
	// WatchError means the underlying watcher reported an error.
	WatchError
)

// WatcherEvent is the payload published on the broker.
type WatcherEvent struct {
	Type  EventType
	Paths []string // changed files, sorted
	Err   error
}

// Config configures a Watcher.
type Config struct {
	// Dir is the deliverable directory. Its subdirectories up to MaxDepth are
	// watched too.
	Dir string
	// DebounceDur is the quiet period after the last change before notifying.
	DebounceDur time.Duration
	// Ignore lists base names that never trigger a notification, such as the
	// report the analysis writes.
	Ignore []string
	// MaxDepth limits how deep subdirectories are added.
	MaxDepth int
}

// DefaultConfig returns the configuration for watching dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		DebounceDur: 300 * time.Millisecond,
		MaxDepth:    2,
	}
}

// inputExtensions are the file types an analysis reads.
var inputExtensions = map[string]bool{
	".log":   true,
	".json":  true,
	".yaml":  true,
	".yml":   true,
	".diff":  true,
	".patch": true,
}

// Watcher publishes WatcherEvents for changes to analysis inputs.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	broker  *Broker[WatcherEvent]
	ignore  map[string]bool
	done    chan struct{}
	wg      sync.WaitGroup
	stopped sync.Once
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultConfig(cfg.Dir).DebounceDur
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ignore := make(map[string]bool, len(cfg.Ignore))
	for _, name := range cfg.Ignore {
		ignore[strings.ToLower(name)] = true
	}

	return &Watcher{
		cfg:    cfg,
		fsw:    fsw,
		broker: NewBroker[WatcherEvent](),
		ignore: ignore,
		done:   make(chan struct{}),
	}, nil
}

// Broker returns the broker events are published on.
func (w *Watcher) Broker() *Broker[WatcherEvent] {
	return w.broker
}

// Start adds the directory tree and begins processing events.
func (w *Watcher) Start() error {
	root := filepath.Clean(w.cfg.Dir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if depth(root, path) > w.cfg.MaxDepth || (path != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops watching and closes all subscriptions.
func (w *Watcher) Stop() error {
	var err error
	w.stopped.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		w.broker.Shutdown()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]bool)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			logging.Debug("input changed", "path", evt.Name, "op", evt.Op.String())
			pending[evt.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.cfg.DebounceDur)
			} else {
				timer.Reset(w.cfg.DebounceDur)
			}
			fire = timer.C

		case <-fire:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			fire = nil
			w.broker.Publish(WatcherEvent{Type: InputsChanged, Paths: paths})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("file watcher error", "error", err)
			w.broker.Publish(WatcherEvent{Type: WatchError, Err: err})
		}
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
		return false
	}
	name := strings.ToLower(filepath.Base(evt.Name))
	if w.ignore[name] {
		return false
	}
	return inputExtensions[filepath.Ext(name)]
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
