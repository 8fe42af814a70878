package tracking

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Eye selects one of the two stereo views.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

// Eyes lists both eyes in render order.
var Eyes = [2]Eye{EyeLeft, EyeRight}

func (e Eye) String() string {
	if e == EyeRight {
		return "right"
	}
	return "left"
}

// Camera holds the per-eye projection and head-to-eye matrices.
type Camera struct {
	projection [2]mgl32.Mat4
	eyePos     [2]mgl32.Mat4
}

// NewCamera returns the camera of the captured headset.
func NewCamera() *Camera {
	c := &Camera{}
	c.projection[EyeLeft] = mgl32.Mat4{
		0.757585824, 0, 0, 0,
		0, 0.681940317, 0, 0,
		-0.0568149090, 9.85278675e-05, -1.00334454, -1,
		0, 0, -0.100334451, 0,
	}
	c.projection[EyeRight] = mgl32.Mat4{
		0.758769333, 0, 0, 0,
		0, 0.682856500, 0, 0,
		0.0570514202, -0.00101399445, -1.00334454, -1,
		0, 0, -0.100334451, 0,
	}
	// Eye-to-head offsets, inverted to head-to-eye.
	c.eyePos[EyeLeft] = mgl32.Translate3D(-0.0311999992, 0, 0.0149999997).Inv()
	c.eyePos[EyeRight] = mgl32.Translate3D(0.0311999992, 0, 0.0149999997).Inv()
	return c
}

// Projection returns the projection matrix of eye.
func (c *Camera) Projection(eye Eye) mgl32.Mat4 {
	return c.projection[eye]
}

// EyePose returns the head-to-eye matrix of eye.
func (c *Camera) EyePose(eye Eye) mgl32.Mat4 {
	return c.eyePos[eye]
}

// ViewProjection returns projection × eye pose × HMD pose for eye.
func (c *Camera) ViewProjection(eye Eye, hmdPose mgl32.Mat4) mgl32.Mat4 {
	return c.projection[eye].Mul4(c.eyePos[eye]).Mul4(hmdPose)
}
