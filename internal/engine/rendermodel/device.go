// Package rendermodel uploads render models into replicated GPU buffers and draws them.
package rendermodel

// BufferTarget selects the buffer binding point.
type BufferTarget int

// Buffer binding points.
const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// AttribType is the component type of a vertex attribute.
type AttribType int

// Vertex attribute component types.
const (
	AttribFloat AttribType = iota
	AttribUnsignedShort
)

// VertexAttrib describes one vertex attribute pointer inside the bound vertex buffer.
type VertexAttrib struct {
	Location   uint32
	Components int32
	Type       AttribType
	Stride     int32
	Offset     uintptr
}

// Device is the subset of the graphics API used by render models.
// All calls must be made on the thread that owns the GL context.
type Device interface {
	// GenVertexArray creates and binds a vertex array object.
	GenVertexArray() uint32
	BindVertexArray(vao uint32)

	// GenBuffer creates a buffer, binds it to target and allocates sizeBytes
	// of uninitialized storage with a dynamic-draw usage hint.
	GenBuffer(target BufferTarget, sizeBytes int) uint32
	BufferSubData(target BufferTarget, offset int, data []byte)

	// VertexAttribPointer declares and enables an attribute with divisor 0.
	VertexAttribPointer(attr VertexAttrib)

	// GenTexture2D creates an RGBA8 texture with mipmaps, clamp-to-edge wrapping,
	// trilinear filtering and the maximum supported anisotropy.
	GenTexture2D(width, height int, pixels []byte) uint32
	// BindTexture2D binds tex to texture unit 0.
	BindTexture2D(tex uint32)

	// DrawTriangles draws count 32-bit indices from offset 0 of the bound index buffer.
	DrawTriangles(count int32)

	DeleteBuffer(id uint32)
	DeleteVertexArray(id uint32)
	DeleteTexture(id uint32)

	// Err returns and clears any pending device error.
	Err() error
}
