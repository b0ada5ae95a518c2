// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvWorldWidth       = "PHYSIM_WORLD_WIDTH"
	EnvWorldHeight      = "PHYSIM_WORLD_HEIGHT"
	EnvGravityY         = "PHYSIM_GRAVITY_Y"
	EnvTimeStep         = "PHYSIM_TIME_STEP"
	EnvPairThreshold    = "PHYSIM_PAIR_THRESHOLD"
	EnvMultithreading   = "PHYSIM_MULTITHREADING"
	EnvWorkers          = "PHYSIM_WORKERS"
	EnvNeighborInterval = "PHYSIM_NEIGHBOR_INTERVAL"
	EnvNeighborRadius   = "PHYSIM_NEIGHBOR_RADIUS"
	EnvLOD              = "PHYSIM_LOD"
)

// LoadConfigFromEnv returns the defaults with environment overrides applied.
func LoadConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from PHYSIM_* variables and validates the result.
// Unset or empty variables leave fields untouched; malformed values are errors.
func ApplyEnv(cfg *Config) error {
	var err error
	setFloat := func(key string, dst *float64) {
		if err != nil {
			return
		}
		err = lookupFloat(key, dst)
	}
	setInt := func(key string, dst *int) {
		if err != nil {
			return
		}
		err = lookupInt(key, dst)
	}
	setBool := func(key string, dst *bool) {
		if err != nil {
			return
		}
		err = lookupBool(key, dst)
	}

	setFloat(EnvWorldWidth, &cfg.World.Width)
	setFloat(EnvWorldHeight, &cfg.World.Height)
	setFloat(EnvGravityY, &cfg.World.GravityY)
	setFloat(EnvTimeStep, &cfg.Simulation.TimeStep)
	setInt(EnvPairThreshold, &cfg.BroadPhase.PairThreshold)
	setBool(EnvMultithreading, &cfg.Threading.Enabled)
	setInt(EnvWorkers, &cfg.Threading.Workers)
	setInt(EnvNeighborInterval, &cfg.Prediction.NeighborUpdateInterval)
	setFloat(EnvNeighborRadius, &cfg.Prediction.MaxNeighborDistance)
	setBool(EnvLOD, &cfg.LOD.Enabled)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func lookupFloat(key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = f
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

func lookupBool(key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = b
	return nil
}
