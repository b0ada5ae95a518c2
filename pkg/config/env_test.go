package config

import (
	"errors"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvWorldWidth, "1600")
	t.Setenv(EnvWorldHeight, " 900 ")
	t.Setenv(EnvGravityY, "-20")
	t.Setenv(EnvTimeStep, "0.01")
	t.Setenv(EnvPairThreshold, "50")
	t.Setenv(EnvMultithreading, "true")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvNeighborInterval, "4")
	t.Setenv(EnvNeighborRadius, "75")
	t.Setenv(EnvLOD, "1")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv failed: %v", err)
	}

	if cfg.World.Width != 1600 || cfg.World.Height != 900 {
		t.Errorf("Unexpected world size %vx%v", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.GravityY != -20 {
		t.Errorf("Expected gravity -20, got %v", cfg.World.GravityY)
	}
	if cfg.Simulation.TimeStep != 0.01 {
		t.Errorf("Expected time step 0.01, got %v", cfg.Simulation.TimeStep)
	}
	if cfg.BroadPhase.PairThreshold != 50 {
		t.Errorf("Expected threshold 50, got %d", cfg.BroadPhase.PairThreshold)
	}
	if !cfg.Threading.Enabled || cfg.Threading.Workers != 2 {
		t.Errorf("Unexpected threading %+v", cfg.Threading)
	}
	if cfg.Prediction.NeighborUpdateInterval != 4 || cfg.Prediction.MaxNeighborDistance != 75 {
		t.Errorf("Unexpected prediction %+v", cfg.Prediction)
	}
	if !cfg.LOD.Enabled {
		t.Error("Expected LOD enabled")
	}
}

func TestApplyEnv_EmptyKeepsDefaults(t *testing.T) {
	t.Setenv(EnvWorldWidth, "")
	t.Setenv(EnvWorkers, "  ")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.World.Width != def.World.Width {
		t.Errorf("Expected default width, got %v", cfg.World.Width)
	}
	if cfg.Threading.Workers != def.Threading.Workers {
		t.Errorf("Expected default workers, got %d", cfg.Threading.Workers)
	}
}

func TestApplyEnv_Malformed(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvWorldWidth, "wide"},
		{EnvPairThreshold, "1.5"},
		{EnvMultithreading, "sometimes"},
		{EnvNeighborRadius, "far"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfigFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestApplyEnv_ValidatesResult(t *testing.T) {
	t.Setenv(EnvTimeStep, "0")

	_, err := LoadConfigFromEnv()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
