// pkg/config/watcher.go
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-physim/pkg/event"
	"github.com/opd-ai/go-physim/pkg/logging"
)

// Watcher defaults.
const (
	DefaultDebounce       = 100 * time.Millisecond
	DefaultMaxFailures    = 3
	DefaultBreakerTimeout = 10 * time.Second
)

// ReloadFunc receives every successfully validated configuration.
type ReloadFunc func(cfg *Config)

// Watcher reloads a config file when it changes on disk
type Watcher struct {
	path     string
	onReload ReloadFunc

	debounce       time.Duration
	maxFailures    uint32
	breakerTimeout time.Duration
	logger         *logging.Logger
	bus            *event.Bus

	fs      *fsnotify.Watcher
	breaker *gobreaker.CircuitBreaker

	closeOnce sync.Once
	done      chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithBreaker sets the consecutive failure count that opens the reload
// breaker and how long it stays open.
func WithBreaker(maxFailures uint32, timeout time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.maxFailures = maxFailures
		w.breakerTimeout = timeout
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithWatcherEventBus publishes a ConfigReloaded event for every reload attempt.
func WithWatcherEventBus(b *event.Bus) WatcherOption {
	return func(w *Watcher) { w.bus = b }
}

// NewWatcher starts watching the directory holding path. Call Run to
// process events.
func NewWatcher(path string, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	if onReload == nil {
		return nil, errors.New("config watcher requires a reload callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	w := &Watcher{
		path:           abs,
		onReload:       onReload,
		debounce:       DefaultDebounce,
		maxFailures:    DefaultMaxFailures,
		breakerTimeout: DefaultBreakerTimeout,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NewLogger()
	}
	if w.maxFailures == 0 {
		w.maxFailures = 1
	}

	w.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "config-reload",
		MaxRequests: 1,
		Timeout:     w.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= w.maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			w.logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}
	w.fs = fs

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// BreakerState reports the reload breaker state
func (w *Watcher) BreakerState() gobreaker.State {
	return w.breaker.State()
}

// Run processes file events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := w.Reload(ctx); err != nil {
				w.logger.Warn(ctx, "config reload failed", "path", w.path, "error", err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(ctx, "config watcher error", err, "path", w.path)
		}
	}
}

// Reload reads and validates the file through the breaker. The callback
// only runs for a valid config. While the breaker is open the file is not read.
func (w *Watcher) Reload(ctx context.Context) error {
	result, err := w.breaker.Execute(func() (interface{}, error) {
		return LoadConfig(w.path)
	})

	if w.bus != nil {
		w.bus.Publish(event.NewConfigEvent(w, w.path, err))
	}
	if err != nil {
		return logging.WrapError(err, "failed to reload %s (breaker %s)", w.path, w.breaker.State())
	}

	cfg := result.(*Config)
	w.logger.Info(ctx, "config reloaded", "path", w.path)
	w.onReload(cfg)
	return nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
