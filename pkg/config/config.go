// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/opd-ai/go-physim/pkg/lod"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config contains every tunable of the simulation
type Config struct {
	World      WorldConfig      `json:"world" toml:"world"`
	Simulation SimulationConfig `json:"simulation" toml:"simulation"`
	BroadPhase BroadPhaseConfig `json:"broadPhase" toml:"broad_phase"`
	Grid       GridConfig       `json:"grid" toml:"grid"`
	Prediction PredictionConfig `json:"prediction" toml:"prediction"`
	Threading  ThreadingConfig  `json:"threading" toml:"threading"`
	LOD        LODConfig        `json:"lod" toml:"lod"`
}

// WorldConfig describes the world rectangle and the global gravity vector
type WorldConfig struct {
	Width    float64 `json:"width" toml:"width"`
	Height   float64 `json:"height" toml:"height"`
	GravityX float64 `json:"gravityX" toml:"gravity_x"`
	GravityY float64 `json:"gravityY" toml:"gravity_y"`
}

// SimulationConfig contains the step loop settings
type SimulationConfig struct {
	TimeStep      float64 `json:"timeStep" toml:"time_step"`
	MaxDeltaTime  float64 `json:"maxDeltaTime" toml:"max_delta_time"`
	ApplyFriction bool    `json:"applyFriction" toml:"apply_friction"`
}

// BroadPhaseConfig contains candidate pair generation settings
type BroadPhaseConfig struct {
	PairThreshold int     `json:"pairThreshold" toml:"pair_threshold"`
	CellSize      float64 `json:"cellSize" toml:"cell_size"`
}

// GridConfig contains adaptive grid settings
type GridConfig struct {
	SpatialUpdateInterval int     `json:"spatialUpdateInterval" toml:"spatial_update_interval"`
	EnergyThreshold       float64 `json:"energyThreshold" toml:"energy_threshold"`
}

// PredictionConfig contains neighbor tracking and time-to-impact settings
type PredictionConfig struct {
	Enabled                bool    `json:"enabled" toml:"enabled"`
	NeighborUpdateInterval int     `json:"neighborUpdateInterval" toml:"neighbor_update_interval"`
	MaxNeighborDistance    float64 `json:"maxNeighborDistance" toml:"max_neighbor_distance"`
	MinNeighbors           int     `json:"minNeighbors" toml:"min_neighbors"`
	Horizon                float64 `json:"horizon" toml:"horizon"`
	BackstopInterval       int     `json:"backstopInterval" toml:"backstop_interval"`
}

// ThreadingConfig contains the parallel narrow-phase settings
type ThreadingConfig struct {
	Enabled bool `json:"enabled" toml:"enabled"`
	Workers int  `json:"workers" toml:"workers"`
}

// LODConfig contains level-of-detail settings
type LODConfig struct {
	Enabled bool        `json:"enabled" toml:"enabled"`
	FocusX  float64     `json:"focusX" toml:"focus_x"`
	FocusY  float64     `json:"focusY" toml:"focus_y"`
	Levels  []lod.Level `json:"levels" toml:"levels"`
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Width:    1200,
			Height:   800,
			GravityX: 0,
			GravityY: -9.81,
		},
		Simulation: SimulationConfig{
			TimeStep:     1.0 / 60.0,
			MaxDeltaTime: 0.1,
		},
		BroadPhase: BroadPhaseConfig{
			PairThreshold: 200,
			CellSize:      100,
		},
		Grid: GridConfig{
			SpatialUpdateInterval: 5,
			EnergyThreshold:       0.1,
		},
		Prediction: PredictionConfig{
			Enabled:                true,
			NeighborUpdateInterval: 10,
			MaxNeighborDistance:    100,
			MinNeighbors:           3,
			Horizon:                0.1,
			BackstopInterval:       5,
		},
		Threading: ThreadingConfig{
			Enabled: false,
			Workers: runtime.NumCPU(),
		},
		LOD: LODConfig{
			Enabled: false,
			FocusX:  600,
			FocusY:  400,
			Levels:  lod.DefaultLevels(),
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.LOD.Levels = append([]lod.Level(nil), c.LOD.Levels...)
	return &out
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads a configuration from a file. Files ending in .toml are
// decoded as TOML, anything else as JSON. Fields missing from the file keep
// their default values. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, isTOML(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte, asTOML bool) (*Config, error) {
	cfg := DefaultConfig()
	var err error
	if asTOML {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves a configuration to a file, choosing the format by extension
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("failed to marshal config: %w", ErrInvalidConfig)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// Validate checks every field for values the engine cannot run with
func (c *Config) Validate() error {
	switch {
	case c.World.Width <= 0:
		return invalid("World.Width", "must be positive, got %v", c.World.Width)
	case c.World.Height <= 0:
		return invalid("World.Height", "must be positive, got %v", c.World.Height)
	case c.Simulation.TimeStep <= 0:
		return invalid("Simulation.TimeStep", "must be positive, got %v", c.Simulation.TimeStep)
	case c.Simulation.MaxDeltaTime <= 0:
		return invalid("Simulation.MaxDeltaTime", "must be positive, got %v", c.Simulation.MaxDeltaTime)
	case c.BroadPhase.PairThreshold < 0:
		return invalid("BroadPhase.PairThreshold", "must not be negative, got %d", c.BroadPhase.PairThreshold)
	case c.BroadPhase.CellSize <= 0:
		return invalid("BroadPhase.CellSize", "must be positive, got %v", c.BroadPhase.CellSize)
	case c.Grid.SpatialUpdateInterval <= 0:
		return invalid("Grid.SpatialUpdateInterval", "must be positive, got %d", c.Grid.SpatialUpdateInterval)
	case c.Grid.EnergyThreshold < 0:
		return invalid("Grid.EnergyThreshold", "must not be negative, got %v", c.Grid.EnergyThreshold)
	case c.Prediction.NeighborUpdateInterval <= 0:
		return invalid("Prediction.NeighborUpdateInterval", "must be positive, got %d", c.Prediction.NeighborUpdateInterval)
	case c.Prediction.MaxNeighborDistance < 0:
		return invalid("Prediction.MaxNeighborDistance", "must not be negative, got %v", c.Prediction.MaxNeighborDistance)
	case c.Prediction.MinNeighbors < 0:
		return invalid("Prediction.MinNeighbors", "must not be negative, got %d", c.Prediction.MinNeighbors)
	case c.Prediction.Horizon < 0:
		return invalid("Prediction.Horizon", "must not be negative, got %v", c.Prediction.Horizon)
	case c.Prediction.BackstopInterval <= 0:
		return invalid("Prediction.BackstopInterval", "must be positive, got %d", c.Prediction.BackstopInterval)
	case c.Threading.Enabled && c.Threading.Workers < 1:
		return invalid("Threading.Workers", "must be at least 1 when threading is enabled, got %d", c.Threading.Workers)
	}

	for i := 1; i < len(c.LOD.Levels); i++ {
		if c.LOD.Levels[i].DistanceThreshold < c.LOD.Levels[i-1].DistanceThreshold {
			return invalid("LOD.Levels", "thresholds must be ascending at index %d", i)
		}
	}
	for i, l := range c.LOD.Levels {
		if l.UpdateInterval < 0 {
			return invalid("LOD.Levels", "update interval must not be negative at index %d", i)
		}
	}
	return nil
}
