// Package debugdraw renders a plane's last pass to an image: the sampled
// field as a cell map with the accepted contour segments stroked on top.
package debugdraw

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/isoslice"
)

// ErrNoField is returned when the plane has not sampled a field yet.
var ErrNoField = errors.New("debugdraw: plane has no field")

// Colors of the field map.
var (
	NoDataColor  = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	InsideColor  = color.NRGBA{R: 230, G: 120, B: 30, A: 255}
	OutsideColor = color.NRGBA{R: 30, G: 70, B: 160, A: 255}
)

// Options configures Draw.
type Options struct {
	// Scale is the edge of one field sample in pixels. Zero means 8.
	Scale int

	// LineWidth is the segment stroke width in pixels. Zero means 2.
	LineWidth float64

	// HideSegments draws the field map only.
	HideSegments bool
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 8
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 2
	}
	return o
}

// SampleColor maps one field sample to its map color. Outside samples get
// brighter as they approach the iso-level.
func SampleColor(v float32) color.NRGBA {
	switch {
	case v == isoslice.NoData:
		return NoDataColor
	case v >= isoslice.IsoLevel:
		return InsideColor
	}
	t := max(0, min(1, v/isoslice.IsoLevel))
	c := OutsideColor
	c.R += uint8(t * 100)
	c.G += uint8(t * 100)
	c.B += uint8(t * 80)
	return c
}

// FieldImage returns an n×n image with one pixel per sample. Pixel (x, y)
// is sample x + n*y.
func FieldImage(field []float32, n int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			img.SetNRGBA(x, y, SampleColor(field[x+n*y]))
		}
	}
	return img
}

// Upscale enlarges src by an integer factor without smoothing, so every
// sample stays a solid block.
func Upscale(src image.Image, scale int) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// ToGrid projects a world point onto the plane's grid axes. The result is
// in grid units relative to the plane center: X along Right, Z along Forward.
func ToGrid(pose isoslice.Pose, world isoslice.Vec3) isoslice.Vec3 {
	d := r3.Scale(isoslice.WorldToGrid, r3.Sub(world, pose.Position))
	return isoslice.V3(r3.Dot(d, pose.Right()), 0, r3.Dot(d, pose.Forward()))
}

// Draw renders p's last pass. The caller owns the returned context and
// should Close it.
func Draw(p *isoslice.Plane, opts Options) (*gg.Context, error) {
	field := p.Field()
	if len(field) == 0 {
		return nil, ErrNoField
	}
	opts = opts.withDefaults()
	n := p.Metrics().PlaneGridPoints()

	dc := gg.NewContextForImage(Upscale(FieldImage(field, n), opts.Scale))
	if opts.HideSegments {
		return dc, nil
	}

	half := float64(n / 2)
	scale := float64(opts.Scale)
	pixel := func(g isoslice.Vec3) (float64, float64) {
		return (g.X + half + 0.5) * scale, (g.Z + half + 0.5) * scale
	}

	pose := p.SampledPose()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(opts.LineWidth)
	for _, pl := range p.Placements() {
		x1, y1 := pixel(ToGrid(pose, pl.A))
		x2, y2 := pixel(ToGrid(pose, pl.B))
		dc.DrawLine(x1, y1, x2, y2)
	}
	if err := dc.Stroke(); err != nil {
		_ = dc.Close()
		return nil, err
	}
	return dc, nil
}
