// Package app implements the render model demo: startup, the main loop and
// shutdown.
package app

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/hellovr/internal/config"
	"github.com/Faultbox/hellovr/internal/engine/framebuffer"
	"github.com/Faultbox/hellovr/internal/engine/gpu"
	"github.com/Faultbox/hellovr/internal/engine/input"
	"github.com/Faultbox/hellovr/internal/engine/rendermodel"
	"github.com/Faultbox/hellovr/internal/engine/shader"
	"github.com/Faultbox/hellovr/internal/engine/window"
	"github.com/Faultbox/hellovr/internal/logger"
	"github.com/Faultbox/hellovr/internal/tracking"
)

// Title is the window title.
const Title = "hellovr_sdl"

// App is the demo application instance.
type App struct {
	cfg *config.Config

	window *window.Window
	input  *input.Input
	device *gpu.Device

	controllerProgram  *shader.Program
	renderModelProgram *shader.Program
	eyes               [2]*framebuffer.Framebuffer

	tracker tracking.Source
	camera  *tracking.Camera
	models  *rendermodel.Directory
	stats   statsReporter
}

// New creates the window, GL resources and render models described by cfg.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:     cfg,
		input:   input.New(),
		tracker: tracking.NewStatic(),
		camera:  tracking.NewCamera(),
	}

	if err := a.init(); err != nil {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("cleanup after failed init", zap.Error(cerr))
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	g := a.cfg.Graphics

	var err error
	a.window, err = window.New(window.Config{
		Title:   Title,
		X:       g.WindowX,
		Y:       g.WindowY,
		Width:   g.Width,
		Height:  g.Height,
		VSync:   g.VBlank,
		DebugGL: g.DebugGL,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	// Loaders may leave errors behind.
	_ = gpu.Check()

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	if a.controllerProgram, err = shader.NewProgram(shader.Controller()); err != nil {
		return fmt.Errorf("failed to create shaders: %w", err)
	}
	if a.renderModelProgram, err = shader.NewProgram(shader.RenderModel()); err != nil {
		return fmt.Errorf("failed to create shaders: %w", err)
	}

	for i := range a.eyes {
		if a.eyes[i], err = framebuffer.New(int32(g.Width), int32(g.Height)); err != nil {
			return fmt.Errorf("failed to create %s eye target: %w", tracking.Eyes[i], err)
		}
	}

	a.tracker.Update()

	a.device = gpu.New()
	dir := a.cfg.Models.ResolveDir(config.ExecutableDir())
	a.models = rendermodel.NewDirectory(a.device,
		rendermodel.FileLoader(dir, a.cfg.Models.Extension),
		a.cfg.Models.Slots,
		a.cfg.Models.Options(),
	)
	logger.Info("render model directory", zap.String("dir", dir))

	a.setupRenderModels(a.cfg.Models.Options())
	return nil
}

// deviceSlots are the tracked device slots that get render models. The HMD
// is never drawn.
func deviceSlots() []int {
	slots := make([]int, 0, tracking.MaxDevices-1)
	for slot := tracking.HMDSlot + 1; slot < tracking.MaxDevices; slot++ {
		slots = append(slots, slot)
	}
	return slots
}

// setupRenderModels rebuilds every render model with opts. Devices whose
// model fails to load are not drawn.
func (a *App) setupRenderModels(opts rendermodel.Options) {
	if err := a.models.Setup(deviceSlots(), opts); err != nil {
		logger.Warn("some render models failed to load",
			zap.Int("failures", len(multierr.Errors(err))),
			zap.Error(err),
		)
	}
	logger.Info("render models ready",
		zap.Int("count", a.models.Len()),
		zap.Strings("models", a.models.Models()),
		zap.Ints("slots", a.models.Slots()),
	)
}

// toggleWorkaround flips the auxiliary attribute workaround and re-uploads
// every render model.
func (a *App) toggleWorkaround() {
	opts := a.models.Options()
	opts.UseWorkaround = !opts.UseWorkaround
	a.cfg.Models.UseWorkaround = opts.UseWorkaround

	logger.Info("vertex attribute workaround toggled", zap.Bool("enabled", opts.UseWorkaround))
	a.setupRenderModels(opts)
}

// Run runs the main loop until a quit is requested.
func (a *App) Run() error {
	restore := a.window.CaptureInput()
	defer restore()

	logger.Info("starting main loop")

	for {
		quit := a.input.Update()
		for _, action := range a.input.Actions() {
			if action == input.ActionToggleWorkaround {
				a.toggleWorkaround()
			}
		}
		if quit {
			break
		}

		a.renderFrame()
	}

	logger.Info("main loop finished")
	return nil
}

// Close releases every resource. It is safe to call on a partially
// initialized App.
func (a *App) Close() error {
	logger.Info("shutting down")

	var errs error
	if a.models != nil {
		a.models.ReleaseAll()
	}
	a.controllerProgram.Delete()
	a.renderModelProgram.Delete()
	for i, fb := range a.eyes {
		if fb != nil {
			fb.Destroy()
			a.eyes[i] = nil
		}
	}
	if a.device != nil {
		errs = multierr.Append(errs, gpu.Check())
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
	return errs
}
