// Package framebuffer provides OpenGL framebuffer utilities for offscreen rendering.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Samples is the multisample count of the render attachment.
const Samples = 4

// Rect is a framebuffer region in pixels, origin bottom-left.
type Rect struct {
	X0, Y0, X1, Y1 int32
}

// Width returns the horizontal extent of r.
func (r Rect) Width() int32 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() int32 { return r.Y1 - r.Y0 }

// SideBySide splits a window into left and right halves. An odd width drops
// the last column, so both halves have the same size.
func SideBySide(width, height int32) (left, right Rect) {
	half := width / 2
	return Rect{0, 0, half, height}, Rect{half, 0, 2 * half, height}
}

// Framebuffer is a per-eye render target: a multisampled color attachment
// with depth. It is blitted straight to the window, so there is no resolve
// attachment.
type Framebuffer struct {
	renderFBO     uint32
	renderTexture uint32
	depthRBO      uint32

	width  int32
	height int32
}

// New creates a new framebuffer with the specified dimensions.
func New(width, height int32) (*Framebuffer, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb := &Framebuffer{
		width:  width,
		height: height,
	}

	if err := fb.create(); err != nil {
		fb.Destroy()
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.renderFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.renderFBO)

	gl.GenRenderbuffers(1, &fb.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
	gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, Samples, gl.DEPTH_COMPONENT, fb.width, fb.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)

	gl.GenTextures(1, &fb.renderTexture)
	gl.BindTexture(gl.TEXTURE_2D_MULTISAMPLE, fb.renderTexture)
	gl.TexImage2DMultisample(gl.TEXTURE_2D_MULTISAMPLE, Samples, gl.RGBA8, fb.width, fb.height, true)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D_MULTISAMPLE, fb.renderTexture, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("render framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Bind makes the multisampled attachment the render target with viewport vp.
func (fb *Framebuffer) Bind(vp Rect) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.renderFBO)
	gl.Viewport(vp.X0, vp.Y0, vp.Width(), vp.Height())
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BlitToWindow copies src of the render attachment into dst of the default framebuffer.
func (fb *Framebuffer) BlitToWindow(src, dst Rect) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.renderFBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(src.X0, src.Y0, src.X1, src.Y1, dst.X0, dst.Y0, dst.X1, dst.Y1,
		gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
}

// Destroy releases all OpenGL resources. It is safe to call more than once.
func (fb *Framebuffer) Destroy() {
	if fb.renderFBO != 0 {
		gl.DeleteFramebuffers(1, &fb.renderFBO)
		fb.renderFBO = 0
	}
	if fb.renderTexture != 0 {
		gl.DeleteTextures(1, &fb.renderTexture)
		fb.renderTexture = 0
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}
