package rendermodel

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/Faultbox/hellovr/pkg/formats"
)

// Default buffer capacities. Every model fills them completely regardless of its size,
// so the draw workload is independent of the source asset.
const (
	DefaultVertexBufferBytes = 40740000
	DefaultIndexBufferBytes  = 19012000
)

// Attribute locations shared with the render model shader.
const (
	AttribPosition uint32 = 0
	AttribTexCoord uint32 = 1
	AttribAux      uint32 = 2
)

// Upload errors.
var (
	ErrEmptyModel    = errors.New("render model has no vertices or indices")
	ErrModelTooLarge = errors.New("render model does not fit in the GPU buffers")
)

// GPUVertex is the vertex layout inside the GPU vertex buffer.
type GPUVertex struct {
	Position [4]float32 // w is reserved
	TexCoord [2]float32
	Aux      uint16
	_        uint16
}

// GPUVertexSize is the stride of GPUVertex in bytes.
const GPUVertexSize = int(unsafe.Sizeof(GPUVertex{}))

const indexSize = 4

// Options controls how a model is laid out in GPU memory.
type Options struct {
	VertexBufferBytes int
	IndexBufferBytes  int

	// UseWorkaround declares the auxiliary attribute with two components instead
	// of one. Some drivers repack single-short attributes on every draw.
	UseWorkaround bool

	// DrawReplicas is how many replicas each draw call covers.
	DrawReplicas int

	// TimeDraws logs the submission time of every draw call at debug level.
	TimeDraws bool
}

// DefaultOptions returns the reference buffer capacities with one replica per draw.
func DefaultOptions() Options {
	return Options{
		VertexBufferBytes: DefaultVertexBufferBytes,
		IndexBufferBytes:  DefaultIndexBufferBytes,
		DrawReplicas:      1,
	}
}

// AuxComponents returns the declared component count of the auxiliary attribute.
func (o Options) AuxComponents() int32 {
	if o.UseWorkaround {
		return 2
	}
	return 1
}

// Layout describes how one model is replicated into the fixed-capacity buffers.
type Layout struct {
	VertexCount int
	IndexCount  int

	VertexBlockBytes int // one replica of the vertex array
	IndexBlockBytes  int // one replica of the index array

	VertexReplicas int
	IndexReplicas  int

	// ReplicaVertexStride is added to the indices of each successive index replica.
	ReplicaVertexStride int

	// DrawReplicas is the number of index replicas covered by a draw call.
	// Only replicas whose vertex block was written are drawable.
	DrawReplicas   int
	DrawIndexCount int32
}

// PlanLayout computes the replication layout for a model of the given size.
func PlanLayout(vertexCount, indexCount int, opts Options) (Layout, error) {
	if vertexCount <= 0 || indexCount <= 0 {
		return Layout{}, ErrEmptyModel
	}

	l := Layout{
		VertexCount:         vertexCount,
		IndexCount:          indexCount,
		VertexBlockBytes:    vertexCount * GPUVertexSize,
		IndexBlockBytes:     indexCount * indexSize,
		ReplicaVertexStride: 3 * vertexCount,
	}
	l.VertexReplicas = opts.VertexBufferBytes / l.VertexBlockBytes
	l.IndexReplicas = opts.IndexBufferBytes / l.IndexBlockBytes

	// Offset indices of the last replica must still fit in 32 bits.
	maxByOffset := int((uint64(math.MaxUint32)-uint64(vertexCount-1))/uint64(l.ReplicaVertexStride) + 1)
	if l.IndexReplicas > maxByOffset {
		l.IndexReplicas = maxByOffset
	}

	if l.VertexReplicas == 0 || l.IndexReplicas == 0 {
		return Layout{}, fmt.Errorf("%w: %d vertex bytes into %d, %d index bytes into %d", ErrModelTooLarge,
			l.VertexBlockBytes, opts.VertexBufferBytes, l.IndexBlockBytes, opts.IndexBufferBytes)
	}

	// Index replica k reads vertex block 3k, which must be one of the written replicas.
	drawable := (l.VertexReplicas-1)/3 + 1
	if drawable > l.IndexReplicas {
		drawable = l.IndexReplicas
	}

	l.DrawReplicas = opts.DrawReplicas
	if l.DrawReplicas < 1 {
		l.DrawReplicas = 1
	}
	if l.DrawReplicas > drawable {
		l.DrawReplicas = drawable
	}

	l.DrawIndexCount = int32(l.DrawReplicas * indexCount)

	return l, nil
}

// ReplicaIndexRange returns the half-open range of vertex indices replica k may reference.
func (l Layout) ReplicaIndexRange(k int) (lo, hi uint32) {
	base := uint32(k * l.ReplicaVertexStride)
	return base, base + uint32(l.ReplicaVertexStride)
}

// toGPUVertices converts model vertices to the GPU layout.
func toGPUVertices(vertices []formats.RenderModelVertex) []GPUVertex {
	out := make([]GPUVertex, len(vertices))
	for i, v := range vertices {
		out[i] = GPUVertex{
			Position: [4]float32{v.Position[0], v.Position[1], v.Position[2], 0},
			TexCoord: v.TexCoord,
			Aux:      v.Aux,
		}
	}
	return out
}

func vertexBytes(v []GPUVertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*GPUVertexSize)
}

func indexBytes(idx []uint32) []byte {
	if len(idx) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&idx[0])), len(idx)*indexSize)
}
