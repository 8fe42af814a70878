package rendermodel

import (
	"errors"
	"fmt"
	"unsafe"
)

// mirrorLimit caps the buffer sizes whose contents the fake keeps in memory.
const mirrorLimit = 1 << 22

type fakeBuffer struct {
	target BufferTarget
	size   int
	data   []byte
	writes int
}

// fakeDevice records every call made by render models.
type fakeDevice struct {
	nextID uint32
	live   map[uint32]string

	buffers  map[uint32]*fakeBuffer
	bound    map[BufferTarget]uint32
	textures map[uint32][2]int

	attribs      []VertexAttrib
	boundVAO     uint32
	boundTexture uint32
	draws        []int32

	events   []string
	created  int
	deleted  int
	misuse   []string
	pending  error
	failNext bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		live:     make(map[uint32]string),
		buffers:  make(map[uint32]*fakeBuffer),
		bound:    make(map[BufferTarget]uint32),
		textures: make(map[uint32][2]int),
	}
}

func (d *fakeDevice) gen(kind string) uint32 {
	d.nextID++
	d.live[d.nextID] = kind
	d.created++
	d.events = append(d.events, "gen "+kind)
	return d.nextID
}

func (d *fakeDevice) del(kind string, id uint32) {
	if id == 0 {
		d.misuse = append(d.misuse, "delete of zero "+kind)
		return
	}
	if got, ok := d.live[id]; !ok || got != kind {
		d.misuse = append(d.misuse, fmt.Sprintf("delete of unknown %s %d", kind, id))
		return
	}
	delete(d.live, id)
	d.deleted++
	d.events = append(d.events, "del "+kind)
}

func (d *fakeDevice) GenVertexArray() uint32 {
	id := d.gen("vao")
	d.boundVAO = id
	return id
}

func (d *fakeDevice) BindVertexArray(vao uint32) {
	d.boundVAO = vao
}

func (d *fakeDevice) GenBuffer(target BufferTarget, sizeBytes int) uint32 {
	id := d.gen("buffer")
	b := &fakeBuffer{target: target, size: sizeBytes}
	if sizeBytes <= mirrorLimit {
		b.data = make([]byte, sizeBytes)
	}
	d.buffers[id] = b
	d.bound[target] = id
	return id
}

func (d *fakeDevice) BufferSubData(target BufferTarget, offset int, data []byte) {
	b, ok := d.buffers[d.bound[target]]
	if !ok {
		d.misuse = append(d.misuse, "sub-data with no bound buffer")
		return
	}
	if offset < 0 || offset+len(data) > b.size {
		d.misuse = append(d.misuse, fmt.Sprintf("sub-data [%d,%d) outside buffer of %d bytes", offset, offset+len(data), b.size))
		return
	}
	b.writes++
	if b.data != nil {
		copy(b.data[offset:], data)
	}
}

func (d *fakeDevice) VertexAttribPointer(attr VertexAttrib) {
	if d.bound[ArrayBuffer] == 0 || d.boundVAO == 0 {
		d.misuse = append(d.misuse, "attribute declared without bound vao/vbo")
	}
	d.attribs = append(d.attribs, attr)
}

func (d *fakeDevice) GenTexture2D(width, height int, pixels []byte) uint32 {
	if len(pixels) != width*height*4 {
		d.misuse = append(d.misuse, "texture pixel size mismatch")
	}
	id := d.gen("texture")
	d.textures[id] = [2]int{width, height}
	if d.failNext {
		d.pending = errors.New("GL_OUT_OF_MEMORY")
		d.failNext = false
	}
	return id
}

func (d *fakeDevice) BindTexture2D(tex uint32) {
	d.boundTexture = tex
}

func (d *fakeDevice) DrawTriangles(count int32) {
	if d.boundVAO == 0 {
		d.misuse = append(d.misuse, "draw with no vao bound")
	}
	d.draws = append(d.draws, count)
}

func (d *fakeDevice) DeleteBuffer(id uint32) {
	d.del("buffer", id)
	delete(d.buffers, id)
}

func (d *fakeDevice) DeleteVertexArray(id uint32) {
	d.del("vao", id)
}

func (d *fakeDevice) DeleteTexture(id uint32) {
	d.del("texture", id)
	delete(d.textures, id)
}

func (d *fakeDevice) Err() error {
	err := d.pending
	d.pending = nil
	return err
}

// liveCount returns the number of live objects of kind.
func (d *fakeDevice) liveCount(kind string) int {
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

func asUint32s(b []byte) []uint32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
}

func asGPUVertices(b []byte) []GPUVertex {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*GPUVertex)(unsafe.Pointer(&b[0])), len(b)/GPUVertexSize)
}
