package rendermodel

import (
	"fmt"
	"unsafe"

	"github.com/loov/hrtime"
	"go.uber.org/zap"

	"github.com/Faultbox/hellovr/internal/logger"
	"github.com/Faultbox/hellovr/pkg/formats"
)

// Model is a render model resident in GPU memory. It exclusively owns its
// vertex array, buffers and texture. The zero value is an empty, released model.
type Model struct {
	dev  Device
	name string

	vao        uint32
	vbo        uint32
	ibo        uint32
	texture    uint32
	indexCount int32

	layout    Layout
	timeDraws bool
}

// Handles are the GPU objects owned by a Model plus its draw index count.
type Handles struct {
	VertexArray  uint32
	VertexBuffer uint32
	IndexBuffer  uint32
	Texture      uint32
	IndexCount   int32
}

// IsZero reports whether every handle is released.
func (h Handles) IsZero() bool {
	return h == Handles{}
}

// Upload creates the GPU resources for m and fills them according to opts.
// m is validated first; nothing is allocated for an invalid model.
func Upload(dev Device, name string, m *formats.RenderModel, opts Options) (*Model, error) {
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return nil, fmt.Errorf("uploading %s: %w", name, ErrEmptyModel)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	layout, err := PlanLayout(len(m.Vertices), len(m.Indices), opts)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	model := &Model{
		dev:       dev,
		name:      name,
		layout:    layout,
		timeDraws: opts.TimeDraws,
	}

	model.vao = dev.GenVertexArray()
	model.uploadVertices(m.Vertices, opts)
	model.uploadIndices(m.Indices, opts)
	dev.BindVertexArray(0)

	model.texture = dev.GenTexture2D(int(m.Texture.Width), int(m.Texture.Height), m.Texture.Pixels)
	model.indexCount = layout.DrawIndexCount

	if err := dev.Err(); err != nil {
		model.Release()
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	logger.Debug("render model uploaded",
		zap.String("name", name),
		zap.Int("vertices", layout.VertexCount),
		zap.Int("indices", layout.IndexCount),
		zap.Int("vertexReplicas", layout.VertexReplicas),
		zap.Int("indexReplicas", layout.IndexReplicas),
		zap.Int32("drawIndexCount", layout.DrawIndexCount),
		zap.Bool("workaround", opts.UseWorkaround),
	)

	return model, nil
}

// uploadVertices writes whole copies of the vertex array back to back until
// the next copy would overflow the buffer.
func (model *Model) uploadVertices(vertices []formats.RenderModelVertex, opts Options) {
	dev := model.dev
	model.vbo = dev.GenBuffer(ArrayBuffer, opts.VertexBufferBytes)

	block := vertexBytes(toGPUVertices(vertices))
	for k := 0; k < model.layout.VertexReplicas; k++ {
		dev.BufferSubData(ArrayBuffer, k*len(block), block)
	}

	stride := int32(GPUVertexSize)
	dev.VertexAttribPointer(VertexAttrib{
		Location:   AttribPosition,
		Components: 4,
		Type:       AttribFloat,
		Stride:     stride,
		Offset:     unsafe.Offsetof(GPUVertex{}.Position),
	})
	dev.VertexAttribPointer(VertexAttrib{
		Location:   AttribTexCoord,
		Components: 2,
		Type:       AttribFloat,
		Stride:     stride,
		Offset:     unsafe.Offsetof(GPUVertex{}.TexCoord),
	})
	// The second component under the workaround is the padding short; the shader ignores it.
	dev.VertexAttribPointer(VertexAttrib{
		Location:   AttribAux,
		Components: opts.AuxComponents(),
		Type:       AttribUnsignedShort,
		Stride:     stride,
		Offset:     unsafe.Offsetof(GPUVertex{}.Aux),
	})
}

// uploadIndices writes one copy of the index array per replica, each shifted
// to reference its own vertex block deeper in the vertex buffer.
func (model *Model) uploadIndices(indices []uint32, opts Options) {
	dev := model.dev
	model.ibo = dev.GenBuffer(ElementArrayBuffer, opts.IndexBufferBytes)

	shifted := make([]uint32, len(indices))
	block := indexBytes(shifted)
	for k := 0; k < model.layout.IndexReplicas; k++ {
		base, _ := model.layout.ReplicaIndexRange(k)
		for i, idx := range indices {
			shifted[i] = idx + base
		}
		dev.BufferSubData(ElementArrayBuffer, k*len(block), block)
	}
}

// Name returns the model name the resource was loaded for.
func (model *Model) Name() string {
	return model.name
}

// Layout returns the replication layout used at upload.
func (model *Model) Layout() Layout {
	return model.layout
}

// Handles returns the current GPU handles.
func (model *Model) Handles() Handles {
	return Handles{
		VertexArray:  model.vao,
		VertexBuffer: model.vbo,
		IndexBuffer:  model.ibo,
		Texture:      model.texture,
		IndexCount:   model.indexCount,
	}
}

// Draw issues the indexed draw for this model. It only reads GPU state.
func (model *Model) Draw() {
	if model.vao == 0 || model.dev == nil {
		return
	}
	dev := model.dev

	dev.BindVertexArray(model.vao)
	dev.BindTexture2D(model.texture)

	if model.timeDraws {
		start := hrtime.Now()
		dev.DrawTriangles(model.indexCount)
		logger.Debug("draw elements",
			zap.String("model", model.name),
			zap.Duration("elapsed", hrtime.Since(start)),
		)
	} else {
		dev.DrawTriangles(model.indexCount)
	}

	dev.BindVertexArray(0)
}

// Release deletes all GPU resources and resets the handles. It is safe to call
// more than once and on a zero Model.
func (model *Model) Release() {
	dev := model.dev
	if dev == nil {
		return
	}

	if model.ibo != 0 {
		dev.DeleteBuffer(model.ibo)
		model.ibo = 0
	}
	if model.vao != 0 {
		dev.DeleteVertexArray(model.vao)
		model.vao = 0
	}
	if model.vbo != 0 {
		dev.DeleteBuffer(model.vbo)
		model.vbo = 0
	}
	if model.texture != 0 {
		dev.DeleteTexture(model.texture)
		model.texture = 0
	}
	model.indexCount = 0
}
