// cmd/physim-bench/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/opd-ai/go-physim/pkg/config"
	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/logging"
	"github.com/opd-ai/go-physim/pkg/spawn"
)

// result is one measured population.
type result struct {
	Shapes          int
	Steps           int
	StepTime        time.Duration
	CollisionChecks int
	Collisions      int
	Predictions     int
	SpatialCells    int
}

func main() {
	sizes := flag.String("sizes", "100,200,500,1000,2000", "Comma-separated shape populations")
	steps := flag.Int("steps", 200, "Steps per population")
	threads := flag.Bool("threads", false, "Enable the worker pool for narrow phase")
	workers := flag.Int("workers", 0, "Worker count (0 keeps the configured default)")
	prediction := flag.Bool("prediction", true, "Gate narrow phase on collision prediction")
	seed := flag.Uint64("seed", 1, "Random seed")
	flag.Parse()

	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), "")

	populations, err := parseSizes(*sizes)
	if err != nil {
		logger.Error(ctx, "invalid -sizes", err)
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	cfg.Threading.Enabled = *threads
	if *workers > 0 {
		cfg.Threading.Workers = *workers
	}
	cfg.Prediction.Enabled = *prediction

	results := make([]result, 0, len(populations))
	for _, n := range populations {
		r, err := measure(cfg, n, *steps, *seed, logger)
		if err != nil {
			logger.Error(ctx, "benchmark failed", err, "shapes", n)
			os.Exit(1)
		}
		logger.Debug(ctx, "population measured", "shapes", n, "step_time", r.StepTime)
		results = append(results, r)
	}
	fmt.Println(renderTable(results))
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("failed to parse population %q: %w", field, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("population must be positive, got %d", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no populations given")
	}
	return out, nil
}

// measure runs steps fixed steps over n random shapes and reports the mean
// step time and the counters of the final step.
func measure(cfg *config.Config, n, steps int, seed uint64, logger *logging.Logger) (result, error) {
	eng, err := engine.New(cfg.Clone(), engine.WithLogger(logger))
	if err != nil {
		return result{}, err
	}
	defer eng.Close()

	rng := rand.New(rand.NewPCG(seed, uint64(n)))
	spawn.Mixed(eng, rng, eng.WorldBounds(), n, 4, 12, 200)

	dt := cfg.Simulation.TimeStep
	start := time.Now()
	for i := 0; i < steps; i++ {
		eng.Step(dt)
	}
	elapsed := time.Since(start)

	st := eng.Stats()
	r := result{
		Shapes:          st.Shapes,
		Steps:           steps,
		CollisionChecks: st.CollisionChecks,
		Collisions:      st.ActualCollisions,
		Predictions:     st.Predictions,
		SpatialCells:    st.SpatialCells,
	}
	if steps > 0 {
		r.StepTime = elapsed / time.Duration(steps)
	}
	return r, nil
}

func renderTable(results []result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(r.Shapes),
			strconv.Itoa(r.Steps),
			r.StepTime.String(),
			strconv.Itoa(r.CollisionChecks),
			strconv.Itoa(r.Collisions),
			strconv.Itoa(r.Predictions),
			strconv.Itoa(r.SpatialCells),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("shapes", "steps", "step time", "checks", "collisions", "predictions", "cells").
		Rows(rows...).
		Render()
}
