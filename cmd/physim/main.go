// cmd/physim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/opd-ai/go-physim/pkg/config"
	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/event"
	"github.com/opd-ai/go-physim/pkg/health"
	"github.com/opd-ai/go-physim/pkg/logging"
	enginescene "github.com/opd-ai/go-physim/pkg/render/engo"
)

type options struct {
	configPath    string
	createDefault bool
	watch         bool
	renderer      string
	scene         string
	count         int
	seed          uint64
	steps         int
	healthAddr    string
	width         int
	height        int
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to a .json or .toml configuration file")
	flag.BoolVar(&o.createDefault, "default", false, "Write the default configuration to -config and exit")
	flag.BoolVar(&o.watch, "watch", false, "Reload -config when it changes on disk")
	flag.StringVar(&o.renderer, "renderer", "headless", "Renderer: 'headless', 'terminal' or 'engo'")
	flag.StringVar(&o.scene, "scene", "mixed", "Initial scene: 'mixed', 'matrix', 'spiral', 'repeat' or 'empty'")
	flag.IntVar(&o.count, "count", 60, "Shape count for the mixed and repeat scenes")
	flag.Uint64Var(&o.seed, "seed", 1, "Random seed for the mixed scene")
	flag.IntVar(&o.steps, "steps", 0, "Headless only: run this many steps as fast as possible, then exit (0 runs until interrupted)")
	flag.StringVar(&o.healthAddr, "health", "", "Serve /health and /ready on this address (e.g. :8080)")
	flag.IntVar(&o.width, "width", 1200, "Window width (engo only)")
	flag.IntVar(&o.height, "height", 800, "Window height (engo only)")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), "")

	if err := run(ctx, opts, logger); err != nil {
		logger.Error(ctx, "physim failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	if opts.createDefault {
		if opts.configPath == "" {
			return errors.New("-default requires -config")
		}
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			return err
		}
		logger.Info(ctx, "created default configuration file", "config_path", opts.configPath)
		return nil
	}

	cfg, err := loadConfig(ctx, opts.configPath, logger)
	if err != nil {
		return err
	}

	bus := event.NewEventBus()
	eng, err := engine.New(cfg, engine.WithLogger(logger), engine.WithEventBus(bus))
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := populate(eng, opts.scene, opts.count, opts.seed); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var watcher *config.Watcher
	if opts.watch && opts.configPath != "" {
		watcher, err = startWatcher(ctx, opts.configPath, eng, bus, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	if opts.healthAddr != "" {
		checker := newChecker(eng, watcher)
		go func() {
			if err := health.Serve(ctx, opts.healthAddr, checker, logger); err != nil {
				logger.Error(ctx, "health server stopped", err)
			}
		}()
	}

	logger.Info(ctx, "starting simulation",
		"renderer", opts.renderer,
		"scene", opts.scene,
		"shapes", eng.ShapeCount(),
		"time_step", cfg.Simulation.TimeStep,
	)

	switch opts.renderer {
	case "headless":
		return runHeadless(ctx, eng, cfg.Simulation, opts.steps, logger)
	case "terminal":
		return runTerminal(ctx, eng, cfg.Simulation, logger)
	case "engo":
		scene := enginescene.NewPhysicsScene(eng, cfg.Simulation.TimeStep, logger)
		enginescene.Run(scene, "physim", opts.width, opts.height)
		return nil
	default:
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}
}

// loadConfig reads path when it exists, falls back to defaults otherwise,
// and applies PHYSIM_* overrides on top.
func loadConfig(ctx context.Context, path string, logger *logging.Logger) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Info(ctx, "configuration file not found, using defaults", "config_path", path)
		} else {
			cfg, err = config.LoadConfig(path)
			if err != nil {
				return nil, err
			}
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment configuration: %w", err)
	}
	return cfg, nil
}

func startWatcher(ctx context.Context, path string, eng *engine.Engine, bus *event.Bus, logger *logging.Logger) (*config.Watcher, error) {
	onReload := func(cfg *config.Config) {
		if err := config.ApplyEnv(cfg); err != nil {
			logger.Error(ctx, "failed to apply environment to reloaded configuration", err)
			return
		}
		if err := eng.ApplyConfig(cfg); err != nil {
			logger.Error(ctx, "failed to apply reloaded configuration", err)
		}
	}
	w, err := config.NewWatcher(path, onReload,
		config.WithWatcherLogger(logger),
		config.WithWatcherEventBus(bus),
	)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "config watcher stopped", err)
		}
	}()
	return w, nil
}

const (
	maxStall    = 5 * time.Second
	maxMemoryMB = 1024
)

func newChecker(eng *engine.Engine, watcher *config.Watcher) *health.Checker {
	checker := health.NewChecker()
	checker.AddCheck(health.NewStepCheck(eng.Frame, maxStall, nil))
	checker.AddCheck(health.NewMemoryCheck(maxMemoryMB, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))
	if watcher != nil {
		checker.AddCheck(health.NewBreakerCheck("config", watcher.BreakerState))
	}
	return checker
}
