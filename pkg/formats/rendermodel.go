// Package formats provides readers and writers for render model files.
// Render model (.model) binary format: vertices, 16-bit triangle indices and an RGBA8 diffuse texture.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Render model format errors.
var (
	ErrTruncatedRenderModel = errors.New("truncated render model data")
	ErrIndexOutOfRange      = errors.New("render model index out of range")
	ErrTextureSize          = errors.New("render model texture size mismatch")
	ErrTooManyVertices      = errors.New("render model has too many vertices for 16-bit indices")
	ErrEmptyRenderModel     = errors.New("render model has no vertices or triangles")
)

const (
	// VertexRecordSize is the persisted size of one vertex: position, normal, texcoord.
	VertexRecordSize = 32

	// MaxRenderModelVertices is the largest vertex count addressable by 16-bit indices.
	MaxRenderModelVertices = math.MaxUint16 + 1

	// BytesPerPixel is the texel size of the RGBA8 diffuse texture.
	BytesPerPixel = 4
)

// RenderModelVertex is a single vertex of a render model.
type RenderModelVertex struct {
	Position [3]float32
	Normal   [3]float32 // stored in the record, unused by the renderer
	TexCoord [2]float32
	Aux      uint16 // per-vertex tag, not persisted
}

// RenderModelTexture is the diffuse texture of a render model.
type RenderModelTexture struct {
	Width  uint16
	Height uint16
	Pixels []byte // row-major RGBA8, Width*Height*4 bytes
}

// RenderModel is a triangle mesh with one diffuse texture.
type RenderModel struct {
	Vertices []RenderModelVertex
	Indices  []uint32 // triangle list, 3 per triangle
	Texture  RenderModelTexture
}

// TriangleCount returns the number of triangles in the index list.
func (m *RenderModel) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of all vertex positions.
func (m *RenderModel) Bounds() (lo, hi [3]float32) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo = m.Vertices[0].Position
	hi = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < lo[i] {
				lo[i] = v.Position[i]
			}
			if v.Position[i] > hi[i] {
				hi[i] = v.Position[i]
			}
		}
	}
	return lo, hi
}

// Validate checks the index and texture invariants of the model.
func (m *RenderModel) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return ErrEmptyRenderModel
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrIndexOutOfRange, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d = %d, vertex count %d", ErrIndexOutOfRange, i, idx, len(m.Vertices))
		}
	}
	want := int(m.Texture.Width) * int(m.Texture.Height) * BytesPerPixel
	if len(m.Texture.Pixels) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, have %d",
			ErrTextureSize, m.Texture.Width, m.Texture.Height, want, len(m.Texture.Pixels))
	}
	return nil
}

// ParseRenderModel parses a render model from raw bytes.
func ParseRenderModel(data []byte) (*RenderModel, error) {
	r := bytes.NewReader(data)

	var vertexCount uint32
	if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
		return nil, fmt.Errorf("%w: reading vertex count", ErrTruncatedRenderModel)
	}
	if uint64(vertexCount)*VertexRecordSize > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d vertices declared, %d bytes left", ErrTruncatedRenderModel, vertexCount, r.Len())
	}

	// Position (3), normal (3), texcoord (2) per record.
	raw := make([]float32, int(vertexCount)*8)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncatedRenderModel)
	}

	m := &RenderModel{
		Vertices: make([]RenderModelVertex, vertexCount),
	}
	for i := range m.Vertices {
		rec := raw[i*8 : i*8+8]
		v := &m.Vertices[i]
		v.Position = [3]float32{rec[0], rec[1], rec[2]}
		v.Normal = [3]float32{rec[3], rec[4], rec[5]}
		v.TexCoord = [2]float32{rec[6], rec[7]}
	}

	var triangleCount uint32
	if err := binary.Read(r, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("%w: reading triangle count", ErrTruncatedRenderModel)
	}
	indexCount := uint64(triangleCount) * 3
	if indexCount*2 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d triangles declared, %d bytes left", ErrTruncatedRenderModel, triangleCount, r.Len())
	}

	indices16 := make([]uint16, indexCount)
	if err := binary.Read(r, binary.LittleEndian, indices16); err != nil {
		return nil, fmt.Errorf("%w: reading indices", ErrTruncatedRenderModel)
	}
	m.Indices = make([]uint32, indexCount)
	for i, idx := range indices16 {
		if uint32(idx) >= vertexCount {
			return nil, fmt.Errorf("%w: index %d = %d, vertex count %d", ErrIndexOutOfRange, i, idx, vertexCount)
		}
		m.Indices[i] = uint32(idx)
	}

	if err := binary.Read(r, binary.LittleEndian, &m.Texture.Width); err != nil {
		return nil, fmt.Errorf("%w: reading texture width", ErrTruncatedRenderModel)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.Texture.Height); err != nil {
		return nil, fmt.Errorf("%w: reading texture height", ErrTruncatedRenderModel)
	}

	pixelBytes := int(m.Texture.Width) * int(m.Texture.Height) * BytesPerPixel
	if pixelBytes > r.Len() {
		return nil, fmt.Errorf("%w: texture %dx%d needs %d bytes, %d left",
			ErrTruncatedRenderModel, m.Texture.Width, m.Texture.Height, pixelBytes, r.Len())
	}
	m.Texture.Pixels = make([]byte, pixelBytes)
	if _, err := io.ReadFull(r, m.Texture.Pixels); err != nil {
		return nil, fmt.Errorf("%w: reading texture pixels", ErrTruncatedRenderModel)
	}

	return m, nil
}

// ReadRenderModel reads a whole render model from r.
func ReadRenderModel(r io.Reader) (*RenderModel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading render model: %w", err)
	}
	return ParseRenderModel(data)
}

// LoadRenderModel loads a render model from a file.
func LoadRenderModel(path string) (*RenderModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading render model: %w", err)
	}
	m, err := ParseRenderModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode serializes the model into the render model file format.
func (m *RenderModel) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Vertices) > MaxRenderModelVertices {
		return nil, fmt.Errorf("%w: %d", ErrTooManyVertices, len(m.Vertices))
	}

	buf := bytes.NewBuffer(make([]byte, 0, m.encodedSize()))

	binary.Write(buf, binary.LittleEndian, uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		rec := [8]float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1],
		}
		binary.Write(buf, binary.LittleEndian, rec)
	}

	binary.Write(buf, binary.LittleEndian, uint32(m.TriangleCount()))
	indices16 := make([]uint16, len(m.Indices))
	for i, idx := range m.Indices {
		indices16[i] = uint16(idx)
	}
	binary.Write(buf, binary.LittleEndian, indices16)

	binary.Write(buf, binary.LittleEndian, m.Texture.Width)
	binary.Write(buf, binary.LittleEndian, m.Texture.Height)
	buf.Write(m.Texture.Pixels)

	return buf.Bytes(), nil
}

// WriteTo writes the encoded model to w.
func (m *RenderModel) WriteTo(w io.Writer) (int64, error) {
	data, err := m.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// SaveRenderModel writes the model to path, creating or truncating the file.
func SaveRenderModel(path string, m *RenderModel) error {
	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encoding render model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing render model: %w", err)
	}
	return nil
}

func (m *RenderModel) encodedSize() int {
	return 4 + len(m.Vertices)*VertexRecordSize +
		4 + len(m.Indices)*2 +
		4 + len(m.Texture.Pixels)
}

// NewQuad returns a unit quad in the XY plane with a 2x2 checker texture.
func NewQuad() *RenderModel {
	return &RenderModel{
		Vertices: []RenderModelVertex{
			{Position: [3]float32{-0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
			{Position: [3]float32{0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}},
			{Position: [3]float32{0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{-0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Texture: RenderModelTexture{
			Width:  2,
			Height: 2,
			Pixels: []byte{
				255, 255, 255, 255, 0, 0, 0, 255,
				0, 0, 0, 255, 255, 255, 255, 255,
			},
		},
	}
}
