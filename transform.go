package isoslice

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Placement is an accepted segment in world space together with the pose and
// scale of the visual that represents it.
type Placement struct {
	A, B     Vec3 // world-space endpoints
	Mid      Vec3 // world-space midpoint, the visual's position
	Dir      Vec3 // B - A
	Rotation Quat // rotates Up onto Dir
	Scale    Vec3 // (thickness, |Dir| * 0.6, thickness)
}

// GridToWorldPoint maps a centered grid-local point onto the plane in world
// space.
func GridToWorldPoint(plane Pose, p Vec3) Vec3 {
	offset := r3.Add(r3.Scale(p.X, plane.Right()), r3.Scale(p.Z, plane.Forward()))
	return r3.Add(plane.Position, r3.Scale(GridToWorld, offset))
}

// LocalToVolume returns a world point relative to a surface position,
// expressed in grid units.
func LocalToVolume(world, surface Vec3) Vec3 {
	return r3.Scale(WorldToGrid, r3.Sub(world, surface))
}

// InsideChunk reports whether all axes of a local-to-volume coordinate are
// strictly inside the chunk cube of half-extent pointsPerChunk.
func InsideChunk(local Vec3, pointsPerChunk int) bool {
	limit := float64(pointsPerChunk)
	return math.Abs(local.X) < limit &&
		math.Abs(local.Y) < limit &&
		math.Abs(local.Z) < limit
}

// PlaceSegment maps one grid-local segment into world space and derives its
// visual pose. It reports false when the segment's midpoint falls outside the
// chunk cube around surface.
func PlaceSegment(plane Pose, surface Vec3, seg Segment, pointsPerChunk int) (Placement, bool) {
	a := GridToWorldPoint(plane, seg.A)
	b := GridToWorldPoint(plane, seg.B)
	mid := r3.Scale(0.5, r3.Add(a, b))
	if !InsideChunk(LocalToVolume(mid, surface), pointsPerChunk) {
		return Placement{}, false
	}
	dir := r3.Sub(b, a)
	return Placement{
		A:        a,
		B:        b,
		Mid:      mid,
		Dir:      dir,
		Rotation: FromToRotation(Up, dir),
		Scale:    Vec3{X: SegmentThickness, Y: r3.Norm(dir) * SegmentLengthScale, Z: SegmentThickness},
	}, true
}

// TransformSegments places every segment and keeps those inside the chunk
// cube around surface, preserving their order.
func TransformSegments(plane Pose, surface Vec3, segs []Segment, pointsPerChunk int) []Placement {
	out := make([]Placement, 0, len(segs))
	for _, s := range segs {
		if p, ok := PlaceSegment(plane, surface, s, pointsPerChunk); ok {
			out = append(out, p)
		}
	}
	return out
}
