package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/avoid/api"
	"github.com/pthm-cable/avoid/config"
	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/game"
	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	realtime := flag.Bool("realtime", false, "Headless only: run each control loop on its own goroutine in wall-clock time")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	debug := flag.Bool("debug", false, "Log every command at debug level")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	snapshotPath := flag.String("snapshot", "", "Restore the arena from a snapshot file")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Arena seed (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N control ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Control ticks per frame in graphical mode")
	listen := flag.String("listen", "", "Serve the HTTP API on this address (overrides config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger, runOptions{
		configPath:     *configPath,
		headless:       *headless,
		realtime:       *realtime,
		logStats:       *logStats,
		snapshotDir:    *snapshotDir,
		snapshotPath:   *snapshotPath,
		outputDir:      *outputDir,
		seed:           *seed,
		maxTicks:       int32(*maxTicks),
		stepsPerUpdate: *stepsPerUpdate,
		listen:         *listen,
	}); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath     string
	headless       bool
	realtime       bool
	logStats       bool
	snapshotDir    string
	snapshotPath   string
	outputDir      string
	seed           int64
	maxTicks       int32
	stepsPerUpdate int
	listen         string
}

func run(logger *slog.Logger, o runOptions) error {
	// Initialize config before anything else
	if err := config.Init(o.configPath); err != nil {
		return err
	}
	cfg := config.Cfg()
	if o.seed != 0 {
		cfg.Arena.Seed = o.seed
	}
	if o.listen != "" {
		cfg.Server.Listen = o.listen
	}

	var snap *telemetry.Snapshot
	if o.snapshotPath != "" {
		var err error
		if snap, err = telemetry.LoadSnapshot(o.snapshotPath); err != nil {
			return err
		}
	}

	ctrlOpts, err := cfg.ControllerOptions()
	if err != nil {
		return err
	}
	ctrlOpts.Logger = logger

	metrics := telemetry.NewMetrics()
	opts := game.Options{
		Config:         cfg,
		Headless:       o.headless,
		LogStats:       o.logStats,
		OutputDir:      o.outputDir,
		SnapshotDir:    o.snapshotDir,
		StepsPerUpdate: o.stepsPerUpdate,
		Snapshot:       snap,
		Metrics:        metrics,
		Logger:         logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	if o.headless {
		g, err := game.NewGame(opts)
		if err != nil {
			return err
		}
		defer g.Unload()

		if cfg.Server.Listen != "" {
			serve(ctx, eg, logger, g.System(), ctrlOpts, metrics)
		}

		logger.Info("starting headless run",
			"seed", cfg.Arena.Seed,
			"robots", g.RobotCount(),
			"max_ticks", o.maxTicks,
			"realtime", o.realtime,
		)
		eg.Go(func() error {
			defer stop()
			var err error
			if o.realtime {
				err = g.RunRealtime(ctx, o.maxTicks)
			} else {
				err = g.Run(ctx, o.maxTicks)
			}
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			logger.Info("run finished", "tick", g.Tick())
			return err
		})
		return eg.Wait()
	}

	if o.realtime {
		logger.Warn("-realtime is ignored in graphical mode")
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "avoid")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(0)

	g, err := game.NewGame(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	if cfg.Server.Listen != "" {
		serve(ctx, eg, logger, g.System(), ctrlOpts, metrics)
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update()
		g.Draw()

		if o.maxTicks > 0 && g.Tick() >= o.maxTicks {
			break
		}
	}
	stop()
	return eg.Wait()
}

// serve runs the HTTP API until ctx is done.
func serve(ctx context.Context, eg *errgroup.Group, logger *slog.Logger, sys *fuzzy.System, ctrlOpts policy.Options, metrics *telemetry.Metrics) {
	cfg := config.Cfg()

	srv := &http.Server{
		Addr: cfg.Server.Listen,
		Handler: api.NewRouter(api.Options{
			System:     sys,
			Controller: ctrlOpts,
			Metrics:    metrics,
			Logger:     logger,
			RateLimit:  cfg.Server.RateLimit,
			Burst:      cfg.Server.Burst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg.Go(func() error {
		logger.Info("serving api", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
