// Package field provides a scalar field generator for plane sampling.
//
// Surfaces are signed distance functions built with sdfx, or OpenSimplex
// noise. Samples are mapped so the surface boundary lies exactly on the
// iso-level: values above 0.5 are inside, values below are outside, and
// isoslice.NoData marks points outside the surface's chunk cube.
package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/isoslice"
)

// Field function selectors.
const (
	FuncSphere   = 0
	FuncBox      = 1
	FuncCylinder = 2
	FuncNoise    = 3
)

// Orientation tags.
const (
	OrientNone = 0
	OrientX90  = 1
	OrientY90  = 2
	OrientZ90  = 3
)

var (
	// ErrUnknownFunction is returned for an unsupported function selector.
	ErrUnknownFunction = errors.New("field: unknown function")

	// ErrUnknownOrientation is returned for an unsupported orientation tag.
	ErrUnknownOrientation = errors.New("field: unknown orientation")

	// ErrInvalidSize is returned when a surface size is not positive.
	ErrInvalidSize = errors.New("field: size must be positive")

	// ErrVolumeSampling is returned when plane mode is off.
	ErrVolumeSampling = errors.New("field: volumetric sampling is not supported")
)

// Config configures a Generator.
type Config struct {
	// PointsPerChunk is the half-extent of the chunk cube in grid units.
	// Zero means isoslice.DefaultPointsPerChunk.
	PointsPerChunk int

	// Seed seeds the noise function.
	Seed int64

	// NoiseScale converts grid units to noise coordinates. Zero means 0.1.
	NoiseScale float64

	// PadVolume makes SampleField return n*n*n samples with only the first
	// n*n populated, the layout of volumetric field buffers.
	PadVolume bool
}

// Generator samples sdfx shapes and OpenSimplex noise over a plane grid.
// It implements isoslice.FieldProvider and is safe for concurrent use.
type Generator struct {
	cfg   Config
	noise opensimplex.Noise
}

// NewGenerator creates a generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.PointsPerChunk <= 0 {
		cfg.PointsPerChunk = isoslice.DefaultPointsPerChunk
	}
	if cfg.NoiseScale == 0 {
		cfg.NoiseScale = 0.1
	}
	return &Generator{cfg: cfg, noise: opensimplex.New(cfg.Seed)}
}

// SampleField samples an n×n grid spanned by the plane basis in params,
// indexed x + n*y.
func (g *Generator) SampleField(params isoslice.FieldParams, n int) ([]float32, error) {
	if !params.PlaneMode {
		return nil, ErrVolumeSampling
	}
	eval, err := g.evaluator(params)
	if err != nil {
		return nil, err
	}

	size := n * n
	if g.cfg.PadVolume {
		size *= n
	}
	out := make([]float32, size)

	// Positions are in grid units relative to the surface.
	origin := r3.Scale(isoslice.WorldToGrid, params.Offset)
	half := float64(n / 2)
	limit := float64(g.cfg.PointsPerChunk)
	for y := range n {
		for x := range n {
			gx, gz := float64(x)-half, float64(y)-half
			p := v3.Vec{
				X: origin.X + params.Right.X*gx + params.Forward.X*gz,
				Y: origin.Y + params.Right.Y*gx + params.Forward.Y*gz,
				Z: origin.Z + params.Right.Z*gx + params.Forward.Z*gz,
			}
			if math.Abs(p.X) >= limit || math.Abs(p.Y) >= limit || math.Abs(p.Z) >= limit {
				out[x+n*y] = isoslice.NoData
				continue
			}
			out[x+n*y] = eval(p)
		}
	}
	return out, nil
}

// evaluator returns the sample function for params.
func (g *Generator) evaluator(params isoslice.FieldParams) (func(v3.Vec) float32, error) {
	if params.Function == FuncNoise {
		scale := g.cfg.NoiseScale
		return func(p v3.Vec) float32 {
			v := g.noise.Eval3(p.X*scale, p.Y*scale, p.Z*scale)
			// Keep real samples off the sentinel.
			return float32(min(max(v, -0.999), 1))
		}, nil
	}

	if params.Size <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSize, params.Size)
	}
	shape, err := Shape(params.Function, params.Size, params.Orientation)
	if err != nil {
		return nil, err
	}
	return func(p v3.Vec) float32 {
		return distanceToValue(shape.Evaluate(p), params.Size)
	}, nil
}

// Shape builds the sdfx solid for a function selector, sized in grid units
// and rotated by an orientation tag.
func Shape(function int, size float64, orientation int) (sdf.SDF3, error) {
	var (
		s   sdf.SDF3
		err error
	)
	switch function {
	case FuncSphere:
		s, err = sdf.Sphere3D(size / 2)
	case FuncBox:
		s, err = sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0)
	case FuncCylinder:
		s, err = sdf.Cylinder3D(size, size/2, 0)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFunction, function)
	}
	if err != nil {
		return nil, fmt.Errorf("field: build shape %d: %w", function, err)
	}

	switch orientation {
	case OrientNone:
		return s, nil
	case OrientX90:
		return sdf.Transform3D(s, sdf.RotateX(math.Pi/2)), nil
	case OrientY90:
		return sdf.Transform3D(s, sdf.RotateY(math.Pi/2)), nil
	case OrientZ90:
		return sdf.Transform3D(s, sdf.RotateZ(math.Pi/2)), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOrientation, orientation)
	}
}

// distanceToValue maps a signed distance to [0, 1] with the boundary at 0.5.
func distanceToValue(d, size float64) float32 {
	v := 0.5 - d/size
	return float32(min(max(v, 0), 1))
}
