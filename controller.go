package isoslice

import (
	"errors"
	"fmt"
)

// ErrInvalidMode is returned by SetOrientation for values outside 0..3.
var ErrInvalidMode = errors.New("isoslice: invalid orientation mode")

// SlideHeight is the fixed plane height of the X and Z slide modes.
const SlideHeight = 1.5

// OrientationMode selects how the plane pose tracks its drag handle.
type OrientationMode int

const (
	// ModeFollow copies the handle's position and rotation.
	ModeFollow OrientationMode = iota
	// ModeSlideY places the plane at (0, handle.y, 0).
	ModeSlideY
	// ModeSlideX places the plane at (handle.x, 1.5, 0).
	ModeSlideX
	// ModeSlideZ places the plane at (0, 1.5, handle.z).
	ModeSlideZ
)

// Valid reports whether m is one of the four modes.
func (m OrientationMode) Valid() bool {
	return m >= ModeFollow && m <= ModeSlideZ
}

func (m OrientationMode) String() string {
	switch m {
	case ModeFollow:
		return "follow"
	case ModeSlideY:
		return "slide-y"
	case ModeSlideX:
		return "slide-x"
	case ModeSlideZ:
		return "slide-z"
	default:
		return fmt.Sprintf("OrientationMode(%d)", int(m))
	}
}

// ParseOrientationMode converts a mode name as printed by String.
func ParseOrientationMode(s string) (OrientationMode, error) {
	for m := ModeFollow; m <= ModeSlideZ; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	if s == "" {
		return ModeFollow, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Handle is the grab target that drives the plane. Its pose is written by an
// external input system and recentered onto the plane after every tick.
type Handle struct {
	Pose Pose

	// TrackRotation tells the input system whether grabbing the handle also
	// rotates it. Release turns it back on.
	TrackRotation bool
}

// Controller is the plane alignment state machine.
type Controller struct {
	mode OrientationMode
}

// Mode returns the active orientation mode.
func (c *Controller) Mode() OrientationMode { return c.mode }

// SetMode switches the orientation mode. The new mode applies from the next
// call to Apply.
func (c *Controller) SetMode(m OrientationMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	c.mode = m
	return nil
}

// Apply constrains plane to the handle according to the active mode and then
// recenters the handle onto the resulting plane position. Only the slide
// modes leave the plane rotation untouched.
func (c *Controller) Apply(plane Pose, h *Handle) Pose {
	if h == nil {
		return plane
	}
	hp := h.Pose.Position
	switch c.mode {
	case ModeFollow:
		plane = h.Pose
	case ModeSlideY:
		plane.Position = Vec3{Y: hp.Y}
	case ModeSlideX:
		plane.Position = Vec3{X: hp.X, Y: SlideHeight}
	case ModeSlideZ:
		plane.Position = Vec3{Y: SlideHeight, Z: hp.Z}
	}
	h.Pose.Position = plane.Position
	return plane
}

// Release re-enables rotation tracking on the handle after a grab ends.
func (c *Controller) Release(h *Handle) {
	if h != nil {
		h.TrackRotation = true
	}
}
