// Grid path preview tool - builds a walkability grid, runs the BFS search
// and prints the grid with the path marked.
//
// Usage: go run ./cmd/gridpath -width 30 -height 12 -prob 0.3 -seed 7
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/pthm-cable/sentry/config"
	"github.com/pthm-cable/sentry/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	width := flag.Int("width", 0, "Grid width (0 = use config)")
	height := flag.Int("height", 0, "Grid height (0 = use config)")
	prob := flag.Float64("prob", -1, "Obstacle probability (negative = use config)")
	noise := flag.Bool("noise", false, "Use clustered noise walls instead of independent cells")
	threshold := flag.Float64("threshold", -1, "Noise wall threshold (negative = use config)")
	startX := flag.Int("sx", 0, "Start x")
	startY := flag.Int("sy", 0, "Start y")
	goalX := flag.Int("gx", -1, "Goal x (negative = last column)")
	goalY := flag.Int("gy", -1, "Goal y (negative = last row)")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	gc := cfg.Grid
	if *width > 0 {
		gc.Width = *width
	}
	if *height > 0 {
		gc.Height = *height
	}
	if *prob >= 0 {
		gc.ObstacleProbability = *prob
	}
	if *threshold >= 0 {
		gc.NoiseThreshold = *threshold
	}
	gc.Noise = gc.Noise || *noise

	start := systems.Point{X: *startX, Y: *startY}
	goal := systems.Point{X: *goalX, Y: *goalY}
	if goal.X < 0 {
		goal.X = gc.Width - 1
	}
	if goal.Y < 0 {
		goal.Y = gc.Height - 1
	}

	var grid *systems.Grid
	if gc.Noise {
		grid, err = systems.BuildNoiseGrid(gc.Width, gc.Height, gc.NoiseThreshold, start, goal, *seed)
	} else {
		grid, err = systems.BuildGrid(gc.Width, gc.Height, gc.ObstacleProbability, start, goal, rand.New(rand.NewSource(*seed)))
	}
	if err != nil {
		slog.Error("failed to build grid", "error", err)
		os.Exit(2)
	}

	path, err := systems.FindPath(grid, start, goal)
	if err != nil {
		if errors.Is(err, systems.ErrOutOfBounds) {
			slog.Error("endpoint outside grid", "error", err)
		} else {
			slog.Error("search failed", "error", err)
		}
		os.Exit(2)
	}

	fmt.Print(grid.Render(path))
	if path == nil {
		fmt.Printf("no path %v -> %v (%d/%d cells walkable)\n",
			start, goal, grid.WalkableCount(), gc.Width*gc.Height)
		os.Exit(1)
	}
	fmt.Printf("path %v -> %v: %d cells, %d steps\n", start, goal, path.Len(), path.Steps())
}
