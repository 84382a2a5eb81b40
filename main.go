package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/config"
	"github.com/pthm-cable/helix/engine"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	seedNodes := flag.Int("seed-nodes", 12, "Nodes placed along the spiral at startup")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	opts := engine.Options{
		Seed:      rngSeed,
		Headless:  *headless,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		SeedNodes: *seedNodes,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib window needed
		e, err := engine.NewEngine(cfg, opts)
		if err != nil {
			slog.Error("failed to create engine", "error", err)
			os.Exit(1)
		}
		defer e.Unload()

		slog.Info("starting headless run",
			"seed", rngSeed,
			"stats_window", cfg.Telemetry.StatsWindow,
			"max_ticks", *maxTicks,
		)

		for {
			e.UpdateHeadless()

			if *maxTicks > 0 && e.Tick() >= *maxTicks {
				slog.Info("max ticks reached", "tick", e.Tick())
				return
			}
		}
	} else {
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Helix")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		e, err := engine.NewEngine(cfg, opts)
		if err != nil {
			slog.Error("failed to create engine", "error", err)
			os.Exit(1)
		}
		defer e.Unload()

		for !rl.WindowShouldClose() {
			e.Update()
			e.Draw()

			if *maxTicks > 0 && e.Tick() >= *maxTicks {
				break
			}
		}
	}
}
