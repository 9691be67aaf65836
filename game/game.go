// Package game runs fleets of avoidance controllers in a simulated arena.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/avoid/camera"
	"github.com/pthm-cable/avoid/components"
	"github.com/pthm-cable/avoid/config"
	"github.com/pthm-cable/avoid/control"
	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/inspector"
	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/renderer"
	"github.com/pthm-cable/avoid/systems"
	"github.com/pthm-cable/avoid/telemetry"
	"github.com/pthm-cable/avoid/ui"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config
	Headless       bool
	LogStats       bool
	OutputDir      string
	SnapshotDir    string
	StepsPerUpdate int
	// Snapshot, if set, restores obstacles and robots instead of placing
	// them from the seed.
	Snapshot      *telemetry.Snapshot
	Metrics       *telemetry.Metrics
	StatsCallback func(telemetry.WindowStats)
	Logger        *slog.Logger
}

// robot ties one arena entity to its control stack.
type robot struct {
	id     int
	entity ecs.Entity
	port   *Port
	ctrl   *policy.Controller
	loop   *control.Loop

	tick    control.Tick // last completed control tick
	hasTick bool
	g       *Game
}

// ObserveTick implements control.Observer. In fast mode it runs on a
// worker and only touches this robot; in realtime mode ticks are queued for
// the physics goroutine.
func (r *robot) ObserveTick(t control.Tick) {
	if r.g.realtime {
		r.g.queueTick(r, t)
		return
	}
	r.tick = t
	r.hasTick = true
}

// Game holds the complete arena state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	world *ecs.World

	robotMapper *ecs.Map6[
		components.Position,
		components.Heading,
		components.Body,
		components.Wheels,
		components.Sonar,
		components.Robot,
	]
	robotFilter *ecs.Filter6[
		components.Position,
		components.Heading,
		components.Body,
		components.Wheels,
		components.Sonar,
		components.Robot,
	]
	obstacleMapper *ecs.Map2[components.Position, components.Obstacle]
	obstacleFilter *ecs.Filter2[components.Position, components.Obstacle]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	headMap   *ecs.Map1[components.Heading]
	bodyMap   *ecs.Map1[components.Body]
	wheelsMap *ecs.Map1[components.Wheels]
	sonarMap  *ecs.Map1[components.Sonar]
	robotMap  *ecs.Map1[components.Robot]

	static     systems.Scene
	view       arenaView
	kinematics *systems.KinematicsSystem
	sys        *fuzzy.System
	robots     []*robot
	parallel   *parallelState
	seed       int64

	// Realtime mode
	realtime  bool
	pendingMu sync.Mutex
	pending   []robotTick

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	metrics          *telemetry.Metrics
	statsCallback    func(telemetry.WindowStats)
	lastStats        telemetry.WindowStats
	logStats         bool
	snapshotDir      string
	records          []telemetry.TickRecord

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int

	// Viewer (nil when headless)
	camera    *camera.Camera
	inspector *inspector.Inspector
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	overlays  *ui.OverlayRegistry
	perfPanel *ui.PerfPanel
	panels    *ui.Renderer
	floor     *renderer.FloorRenderer
	selected  int // robot ID, -1 for none
}

// NewGame builds the arena, the shared rule base and one controller per
// robot.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	params, err := cfg.PolicyParams()
	if err != nil {
		return nil, err
	}
	sys, err := policy.Build(params)
	if err != nil {
		return nil, fmt.Errorf("building rule base: %w", err)
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:    cfg,
		logger: logger,
		world:  world,
		robotMapper: ecs.NewMap6[
			components.Position,
			components.Heading,
			components.Body,
			components.Wheels,
			components.Sonar,
			components.Robot,
		](world),
		robotFilter: ecs.NewFilter6[
			components.Position,
			components.Heading,
			components.Body,
			components.Wheels,
			components.Sonar,
			components.Robot,
		](world),
		obstacleMapper: ecs.NewMap2[components.Position, components.Obstacle](world),
		obstacleFilter: ecs.NewFilter2[components.Position, components.Obstacle](world),
		posMap:         ecs.NewMap1[components.Position](world),
		headMap:        ecs.NewMap1[components.Heading](world),
		bodyMap:        ecs.NewMap1[components.Body](world),
		wheelsMap:      ecs.NewMap1[components.Wheels](world),
		sonarMap:       ecs.NewMap1[components.Sonar](world),
		robotMap:       ecs.NewMap1[components.Robot](world),
		sys:            sys,
		seed:           cfg.Arena.Seed,
		stepsPerUpdate: opts.StepsPerUpdate,
		selected:       -1,

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.TickSeconds),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		metrics:          opts.Metrics,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
	}
	g.parallel = newParallelState(cfg.Arena.Workers)

	if opts.Snapshot != nil {
		if err := g.restoreSnapshot(opts.Snapshot); err != nil {
			return nil, err
		}
	} else {
		g.spawnArena()
	}
	g.kinematics = systems.NewKinematicsSystem(world, g.drive(), &g.static)

	if err := g.wireControllers(); err != nil {
		return nil, err
	}
	g.snapshotScene()

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir, cfg.Telemetry.TickLog)
		if err != nil {
			return nil, err
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
		g.outputManager = om
	}

	if !opts.Headless {
		g.initViewer()
	}
	return g, nil
}

func (g *Game) drive() systems.DiffDrive {
	r := g.cfg.Robot
	return systems.DiffDrive{WheelRadius: r.WheelRadius, AxleLength: r.AxleLength, DriveGain: r.DriveGain, MaxWheel: r.MaxWheel}
}

// wireControllers gives every robot a port, a controller and a control loop.
func (g *Game) wireControllers() error {
	cfg := g.cfg
	ctrlOpts, err := cfg.ControllerOptions()
	if err != nil {
		return err
	}
	ring := systems.SonarRing{Angles: cfg.Derived.SonarAnglesRad, Range: cfg.Sonar.Range}

	g.view.poses = make([]pose, len(g.robots))
	for _, r := range g.robots {
		var noise systems.Rander
		if cfg.Sonar.Noise > 0 {
			noise = distuv.Normal{
				Mu:    0,
				Sigma: cfg.Sonar.Noise,
				Src:   rand.NewPCG(uint64(g.seed), uint64(r.id)),
			}
		}
		logger := g.logger.With("robot", r.id)
		r.g = g
		r.port = newPort(r.id, &g.view, ring, cfg.Robot.Radius, noise)

		opts := ctrlOpts
		opts.Logger = logger
		r.ctrl = policy.NewController(g.sys, opts)
		r.loop = control.NewLoop(r.port, r.port, r.ctrl, control.Options{
			Period:         cfg.Control.Period,
			Readings:       cfg.Sonar.Count,
			DefaultReading: cfg.Control.SonarDefault,
			Observer:       r,
			Logger:         logger,
		})
	}
	return nil
}

// snapshotScene rebuilds the view sonar sweeps are cast against.
func (g *Game) snapshotScene() {
	g.view.mu.Lock()
	defer g.view.mu.Unlock()

	s := &g.view.scene
	s.Reset(g.static.Width, g.static.Height)
	s.Circles = append(s.Circles, g.static.Circles...)
	s.Boxes = append(s.Boxes, g.static.Boxes...)

	query := g.robotFilter.Query()
	for query.Next() {
		pos, head, body, _, _, rb := query.Get()
		s.Circles = append(s.Circles, systems.Circle{X: pos.X, Y: pos.Y, R: body.Radius, Owner: rb.ID})
		g.view.poses[rb.ID] = pose{X: pos.X, Y: pos.Y, Heading: head.Theta, Contact: rb.Contact}
	}
}

// Tick returns the number of control ticks run.
func (g *Game) Tick() int32 { return g.tick }

// System returns the rule base shared by every robot.
func (g *Game) System() *fuzzy.System { return g.sys }

// RobotCount returns the fleet size.
func (g *Game) RobotCount() int { return len(g.robots) }

// LastStats returns the most recently flushed window.
func (g *Game) LastStats() telemetry.WindowStats { return g.lastStats }

// RobotStatus is a read-only view of one robot.
type RobotStatus struct {
	ID         int
	X, Y       float64
	Heading    float64
	Collisions int
	Fallbacks  int
	Odometer   float64
	Command    policy.Command
}

// Robots reports every robot's pose and counters.
func (g *Game) Robots() []RobotStatus {
	out := make([]RobotStatus, len(g.robots))
	for i, r := range g.robots {
		pos := g.posMap.Get(r.entity)
		head := g.headMap.Get(r.entity)
		rb := g.robotMap.Get(r.entity)
		out[i] = RobotStatus{
			ID:         r.id,
			X:          pos.X,
			Y:          pos.Y,
			Heading:    head.Theta,
			Collisions: rb.Collisions,
			Fallbacks:  rb.Fallbacks,
			Odometer:   rb.Odometer,
			Command:    r.tick.Command,
		}
	}
	return out
}

// Unload flushes output files and stops workers.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if g.floor != nil {
		g.floor.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}

// background is the context used by the frame-driven Update methods.
var background = context.Background()
