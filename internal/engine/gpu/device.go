// Package gpu implements the render model device on top of OpenGL 4.1 core.
package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"

	"github.com/Faultbox/hellovr/internal/engine/rendermodel"
)

// Device issues render model commands against the current GL context.
// It must only be used from the thread that owns that context.
type Device struct {
	maxAnisotropy float32
}

var _ rendermodel.Device = (*Device)(nil)

// New creates a device for the current GL context.
func New() *Device {
	d := &Device{}
	gl.GetFloatv(gl.MAX_TEXTURE_MAX_ANISOTROPY, &d.maxAnisotropy)
	return d
}

// MaxAnisotropy returns the largest anisotropy the driver supports.
func (d *Device) MaxAnisotropy() float32 {
	return d.maxAnisotropy
}

func glTarget(target rendermodel.BufferTarget) uint32 {
	if target == rendermodel.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glType(t rendermodel.AttribType) uint32 {
	if t == rendermodel.AttribUnsignedShort {
		return gl.UNSIGNED_SHORT
	}
	return gl.FLOAT
}

// GenVertexArray creates a vertex array and binds it.
func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	return vao
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

// GenBuffer creates a buffer, binds it to target and allocates sizeBytes of
// uninitialized dynamic storage.
func (d *Device) GenBuffer(target rendermodel.BufferTarget, sizeBytes int) uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(glTarget(target), buf)
	gl.BufferData(glTarget(target), sizeBytes, nil, gl.DYNAMIC_DRAW)
	return buf
}

func (d *Device) BufferSubData(target rendermodel.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(glTarget(target), offset, len(data), unsafe.Pointer(&data[0]))
}

// VertexAttribPointer declares and enables a per-vertex attribute on the bound
// vertex array. Integer attributes are converted to float without normalization.
func (d *Device) VertexAttribPointer(attr rendermodel.VertexAttrib) {
	gl.VertexAttribPointerWithOffset(attr.Location, attr.Components, glType(attr.Type), false, attr.Stride, attr.Offset)
	gl.VertexAttribDivisor(attr.Location, 0)
	gl.EnableVertexAttribArray(attr.Location)
}

// GenTexture2D creates a mipmapped RGBA8 texture.
func (d *Device) GenTexture2D(width, height int, pixels []byte) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = unsafe.Pointer(&pixels[0])
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	if d.maxAnisotropy > 0 {
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, d.maxAnisotropy)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (d *Device) BindTexture2D(tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

// DrawTriangles draws count 32-bit indices from the bound element buffer.
func (d *Device) DrawTriangles(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil)
}

func (d *Device) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (d *Device) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
}

func (d *Device) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

// Err drains the GL error queue and returns every pending error.
func (d *Device) Err() error {
	return Check()
}

// Check drains the GL error queue of the current context.
func Check() error {
	var errs error
	for i := 0; i < 16; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		errs = multierr.Append(errs, fmt.Errorf("GL error 0x%04X (%s)", code, ErrorName(code)))
	}
	return errs
}

// ErrorName returns the symbolic name of a GL error code.
func ErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return "unknown"
	}
}
