package isoslice

import "gonum.org/v1/gonum/spatial/r3"

// FieldParams configures one sampling of the scalar field over the plane grid.
// Everything except the plane basis comes from the closest surface.
type FieldParams struct {
	PlaneMode   bool
	Forward     Vec3
	Right       Vec3
	Offset      Vec3 // plane position minus closest-surface position
	Size        float64
	Function    int
	Orientation int
}

// FieldProvider samples the scalar field of an implicit surface.
//
// SampleField returns samples indexed x + n*y for an n×n plane grid, with
// values in [-1, 1] and NoData where the surface has no influence. Providers
// may return more than n*n samples; only the first n*n are read.
type FieldProvider interface {
	SampleField(params FieldParams, n int) ([]float32, error)
}

// FieldProviderFunc adapts a function to the FieldProvider interface.
type FieldProviderFunc func(params FieldParams, n int) ([]float32, error)

// SampleField calls f(params, n).
func (f FieldProviderFunc) SampleField(params FieldParams, n int) ([]float32, error) {
	return f(params, n)
}

// fieldParamsFor builds the sampling parameters for a plane pose and surface.
func fieldParamsFor(pose Pose, s *Surface) FieldParams {
	return FieldParams{
		PlaneMode:   true,
		Forward:     pose.Forward(),
		Right:       pose.Right(),
		Offset:      r3.Sub(pose.Position, s.Position),
		Size:        s.Size,
		Function:    s.Function,
		Orientation: s.Orientation,
	}
}
