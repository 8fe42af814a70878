// Package tracking provides tracked device poses and per-eye camera matrices.
//
// No VR runtime is attached: Static replays one captured frame of an HMD and
// two controllers, and Camera carries the matching per-eye projections.
package tracking

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxDevices is the number of tracked device slots.
const MaxDevices = 64

// HMDSlot is the slot of the head mounted display.
const HMDSlot = 0

// DeviceClass identifies what kind of device a slot holds.
type DeviceClass byte

// Device classes, encoded as the single characters used in pose summaries.
const (
	ClassInvalid    DeviceClass = 0
	ClassHMD        DeviceClass = 'H'
	ClassController DeviceClass = 'C'
	ClassGeneric    DeviceClass = 'G'
	ClassReference  DeviceClass = 'T'
)

// Stats summarizes the poses seen in the last update.
type Stats struct {
	ValidPoses  int
	Controllers int
	Classes     string
}

// Source supplies device poses once per frame.
type Source interface {
	// Update refreshes every pose.
	Update()
	// Pose returns the device-to-tracking transform of slot.
	Pose(slot int) mgl32.Mat4
	// Active reports whether slot has a valid pose.
	Active(slot int) bool
	// HMDPose returns the tracking-to-head transform.
	HMDPose() mgl32.Mat4
	Stats() Stats
}

// Static is a Source that always reports the same captured poses.
type Static struct {
	poses   [MaxDevices]mgl32.Mat4
	classes [MaxDevices]DeviceClass
	hmd     mgl32.Mat4
	stats   Stats
}

var _ Source = (*Static)(nil)

// NewStatic returns a Static source. Poses are installed by the first Update.
func NewStatic() *Static {
	s := &Static{hmd: mgl32.Ident4()}
	for i := range s.poses {
		s.poses[i] = mgl32.Ident4()
	}
	return s
}

// capturedPoses are column-major device-to-tracking transforms of slots 0..2.
var capturedPoses = []struct {
	class DeviceClass
	pose  mgl32.Mat4
}{
	{ClassHMD, mgl32.Mat4{
		0.660372, 0.005540, -0.750918, 0.000000,
		0.124383, 0.985353, 0.116655, 0.000000,
		0.740566, -0.170437, 0.650010, 0.000000,
		-0.762210, 0.816847, 0.476603, 1.000000,
	}},
	{ClassController, mgl32.Mat4{
		0.544623, -0.146795, 0.825734, 0.000000,
		-0.116081, 0.961893, 0.247564, 0.000000,
		-0.830609, -0.230681, 0.506829, 0.000000,
		-0.935668, 0.832183, 0.417553, 1.000000,
	}},
	{ClassController, mgl32.Mat4{
		0.869483, 0.196030, 0.453399, 0.000000,
		-0.309990, 0.931179, 0.191867, 0.000000,
		-0.384584, -0.307374, 0.870412, 0.000000,
		-1.001555, 0.838425, 0.263718, 1.000000,
	}},
}

// Update installs the captured poses.
func (s *Static) Update() {
	stats := Stats{}
	classes := make([]byte, 0, len(capturedPoses))
	for slot, p := range capturedPoses {
		s.poses[slot] = p.pose
		s.classes[slot] = p.class
		stats.ValidPoses++
		if p.class == ClassController {
			stats.Controllers++
		}
		classes = append(classes, byte(p.class))
	}
	stats.Classes = string(classes)
	s.stats = stats

	if s.classes[HMDSlot] == ClassHMD {
		s.hmd = s.poses[HMDSlot].Inv()
	}
}

// Pose returns the device-to-tracking transform of slot, or identity when
// slot is out of range.
func (s *Static) Pose(slot int) mgl32.Mat4 {
	if slot < 0 || slot >= MaxDevices {
		return mgl32.Ident4()
	}
	return s.poses[slot]
}

// Class returns the device class of slot.
func (s *Static) Class(slot int) DeviceClass {
	if slot < 0 || slot >= MaxDevices {
		return ClassInvalid
	}
	return s.classes[slot]
}

func (s *Static) Active(slot int) bool {
	return s.Class(slot) != ClassInvalid
}

func (s *Static) HMDPose() mgl32.Mat4 {
	return s.hmd
}

func (s *Static) Stats() Stats {
	return s.stats
}
