package engine

import (
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/avenir/engine/assets"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/platform"
	"github.com/spaghettifunk/avenir/engine/renderer"
	"github.com/spaghettifunk/avenir/engine/scene"
)

type Engine struct {
	currentStage Stage
	config       *core.EngineConfig
	gameInstance *Game

	window       *platform.Window
	input        *core.InputManager
	assetManager *assets.AssetManager
	renderer     renderer.Renderer
	scene        *scene.Scene

	clock          *core.Clock
	metrics        *core.Metrics
	lastMetricsLog time.Duration

	stopRequested atomic.Bool
}

func New(g *Game, cfg *core.EngineConfig) (*Engine, error) {
	if g == nil {
		return nil, errors.New("engine needs a game")
	}
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) setStage(to Stage) error {
	if !e.currentStage.canTransition(to) {
		return errors.AssertionFailedf("engine cannot go from %s to %s", e.currentStage, to)
	}
	core.LogDebug("engine stage: %s -> %s", e.currentStage, to)
	e.currentStage = to
	return nil
}

// Initialize opens the window and brings up every subsystem, then the game.
func (e *Engine) Initialize() error {
	if err := e.setStage(EngineStageInitializing); err != nil {
		return err
	}

	api, err := renderer.ParseGraphicsAPI(e.config.Renderer.API)
	if err != nil {
		core.LogError("%s", err)
		return err
	}

	app := e.config.Application
	if e.window, err = platform.NewWindow(app.Width, app.Height, app.Name); err != nil {
		return err
	}
	e.input = core.NewInputManager(e.window)

	if e.assetManager, err = assets.NewAssetManager(); err != nil {
		core.LogError("%s", err)
		return err
	}

	if e.renderer, err = renderer.Create(e.window, api, e.config, e.assetManager); err != nil {
		return err
	}

	e.scene = scene.NewScene()

	g := e.gameInstance
	g.Window = e.window
	g.Input = e.input
	g.Scene = e.scene
	if g.FnOnResize != nil {
		e.window.RegisterFramebufferSizeListener(e, g.FnOnResize)
	}
	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			core.LogError("game initialization failed: %s", err)
			return err
		}
	}
	e.scene.LogEntities()

	return e.setStage(EngineStageInitialized)
}

// Run drives the frame loop until the window closes or Stop is called.
func (e *Engine) Run() error {
	if err := e.setStage(EngineStageRunning); err != nil {
		return err
	}

	e.clock.Start()
	for e.window.IsOpen() && !e.stopRequested.Load() {
		e.clock.Tick()
		platform.PollEvents()

		frameStart := e.clock.Now()
		delta := e.clock.DeltaTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}

		view, err := e.scene.EntityInverseWorldMatrix(e.gameInstance.Camera)
		if err != nil {
			core.LogError("no camera to draw from: %s", err)
			return err
		}
		if err := e.renderer.DrawFrame(view); err != nil {
			core.LogError("renderer failed, shutting down: %s", err)
			return err
		}

		// Input state is copied last, after anything this frame may have read.
		e.input.Update()

		e.metrics.Update((e.clock.Now() - frameStart).Seconds())
		e.logMetrics()
	}
	return nil
}

func (e *Engine) logMetrics() {
	elapsed := e.clock.Elapsed()
	if elapsed-e.lastMetricsLog < time.Second {
		return
	}
	e.lastMetricsLog = elapsed
	fps, frameTime := e.metrics.Frame()
	core.LogDebug("FPS: %.0f, frame time: %.3fms", fps, frameTime)
}

// Stop asks the frame loop to exit after the current frame. It is safe to call from any goroutine.
func (e *Engine) Stop() {
	e.stopRequested.Store(true)
}

// Shutdown releases subsystems in the reverse order Initialize created them.
func (e *Engine) Shutdown() error {
	if err := e.setStage(EngineStageShuttingDown); err != nil {
		return err
	}
	core.LogInfo("shutting down...")

	var errs error
	if g := e.gameInstance; g.FnShutdown != nil {
		errs = errors.CombineErrors(errs, g.FnShutdown())
	}
	if e.renderer != nil {
		errs = errors.CombineErrors(errs, e.renderer.Shutdown())
		e.renderer = nil
	}
	if e.assetManager != nil {
		errs = errors.CombineErrors(errs, e.assetManager.Close())
		e.assetManager = nil
	}
	if e.input != nil {
		e.input.Shutdown()
		e.input = nil
	}
	if e.window != nil {
		e.window.UnregisterListener(e)
		e.window.Destroy()
		e.window = nil
	}

	if err := e.setStage(EngineStageShutdown); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	return errs
}
