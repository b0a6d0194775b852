package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/demos"
	"github.com/pthm-cable/beast/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	demo := flag.String("demo", "evomouse", "Demo to run: "+strings.Join(demos.Names(), ", "))
	logStats := flag.Bool("log-stats", false, "Output generation and perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = demo default)")
	timeSteps := flag.Int("time-steps", 0, "Time steps per assessment (0 = demo default)")
	resume := flag.String("resume", "", "Snapshot file to resume evolution from")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(cfg, *demo, *seed, *outputDir, *resume, *maxGenerations, *timeSteps, *logStats); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, demo string, seed int64, outputDir, resume string, maxGenerations, timeSteps int, logStats bool) error {
	// Set up seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	setup, err := demos.Build(demo, cfg, rng)
	if err != nil {
		return err
	}
	sim := setup.Sim
	if maxGenerations > 0 {
		sim.SetGenerations(maxGenerations)
	}
	if timeSteps > 0 {
		sim.SetTimeSteps(timeSteps)
	}

	if outputDir == "" {
		outputDir = cfg.Telemetry.OutputDir
	}
	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	rec := telemetry.NewRecorder(out, cfg.Telemetry, seed)
	rec.SetLogStats(logStats)
	for _, np := range setup.Populations {
		rec.Track(np.Name, np.Population)
	}
	if cfg.Simulation.Profile {
		rec.SetProfiler(telemetry.NewPerfCollector(cfg.Telemetry.ProfileWindow))
	}
	sim.Observe(rec)

	slog.Info("starting simulation",
		"demo", demo,
		"seed", seed,
		"generations", sim.Generations(),
		"time_steps", sim.TimeSteps(),
		"output_dir", out.Dir(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if resume != "" {
		err = resumeFrom(ctx, setup, rec, resume)
	} else {
		err = sim.Run(ctx)
	}
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "status", sim.Status())
		return rec.Flush()
	}
	if err != nil {
		return err
	}
	slog.Info("finished", "status", sim.Status())
	return rec.Err()
}

// resumeFrom restores populations from a snapshot and continues the run
// from the generation it was taken at.
func resumeFrom(ctx context.Context, setup *demos.Setup, rec *telemetry.Recorder, path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Restore(setup.Populations); err != nil {
		return err
	}
	slog.Info("resuming", "snapshot", path, "run", snap.Position.Run, "generation", snap.Position.Generation)

	sim := setup.Sim
	sim.Init()
	sim.Resume(snap.Position)
	for !sim.Update() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return sim.Err()
}
