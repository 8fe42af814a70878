package app

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/hellovr/internal/engine/framebuffer"
	"github.com/Faultbox/hellovr/internal/engine/gpu"
	"github.com/Faultbox/hellovr/internal/engine/rendermodel"
	"github.com/Faultbox/hellovr/internal/logger"
	"github.com/Faultbox/hellovr/internal/tracking"
)

// clearColor is the eye background.
var clearColor = [4]float32{0.15, 0.15, 0.18, 1}

func (a *App) renderFrame() {
	a.renderStereoTargets()

	g := a.cfg.Graphics
	if g.VBlank && g.GLFinishHack {
		// Two renders around one vsync cause jitter on some drivers; finishing here avoids it.
		gl.Finish()
	}

	a.window.SwapBuffers()

	// Clearing right after the swap makes the following finish wait for the
	// whole present, not only its submission.
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if g.VBlank {
		gl.Flush()
		gl.Finish()
	}

	if s := a.tracker.Stats(); a.stats.changed(s) {
		logger.Info("tracked devices",
			zap.Int("poses", s.ValidPoses),
			zap.String("classes", s.Classes),
			zap.Int("controllers", s.Controllers),
		)
	}

	if g.DebugGL {
		if err := gpu.Check(); err != nil {
			logger.Warn("GL error", zap.Error(err))
		}
	}

	a.tracker.Update()
}

func (a *App) renderStereoTargets() {
	w, h := a.window.GetSize()
	left, right := framebuffer.SideBySide(int32(w), int32(h))
	viewport := framebuffer.Rect{X0: 0, Y0: 0, X1: left.Width(), Y1: left.Height()}
	dst := [2]framebuffer.Rect{left, right}

	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	gl.Enable(gl.MULTISAMPLE)

	for i, eye := range tracking.Eyes {
		fb := a.eyes[i]
		fb.Bind(viewport)
		a.renderScene(eye)
		fb.Unbind()

		gl.Disable(gl.MULTISAMPLE)
		fb.BlitToWindow(viewport, dst[i])
		gl.Enable(gl.MULTISAMPLE)
	}
}

func (a *App) renderScene(eye tracking.Eye) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)

	a.renderModelProgram.Use()

	viewProj := a.camera.ViewProjection(eye, a.tracker.HMDPose())
	for _, d := range visibleDevices(a.models, a.tracker) {
		a.renderModelProgram.SetMatrix(viewProj.Mul4(a.tracker.Pose(d.slot)))
		d.model.Draw()
	}

	gl.UseProgram(0)
}

type deviceDraw struct {
	slot  int
	model *rendermodel.Model
}

// visibleDevices returns the slots that have both a render model and a valid
// pose, in slot order.
func visibleDevices(models *rendermodel.Directory, src tracking.Source) []deviceDraw {
	var draws []deviceDraw
	for _, slot := range models.Slots() {
		if !src.Active(slot) {
			continue
		}
		if m, ok := models.ForSlot(slot); ok {
			draws = append(draws, deviceDraw{slot: slot, model: m})
		}
	}
	return draws
}

// statsReporter detects changes of the tracked device summary.
type statsReporter struct {
	last    tracking.Stats
	started bool
}

func (r *statsReporter) changed(s tracking.Stats) bool {
	if r.started && s.ValidPoses == r.last.ValidPoses && s.Controllers == r.last.Controllers {
		return false
	}
	r.started = true
	r.last = s
	return true
}
