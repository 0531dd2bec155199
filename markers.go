package isoslice

// MarkerKind classifies a debug marker.
type MarkerKind int

const (
	// MarkerNoData marks a sample carrying the NoData sentinel.
	MarkerNoData MarkerKind = iota
	// MarkerInside marks a sample above the iso-level.
	MarkerInside
	// MarkerOutside marks a sample at or below the iso-level.
	MarkerOutside
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerNoData:
		return "nodata"
	case MarkerInside:
		return "inside"
	default:
		return "outside"
	}
}

// Marker is a debug gizmo for one grid sample.
type Marker struct {
	Position Vec3
	Size     float64
	Kind     MarkerKind
	Value    float32
}

// classify maps a field sample to its marker kind.
func classify(v float32) MarkerKind {
	switch {
	case v == NoData:
		return MarkerNoData
	case v > IsoLevel:
		return MarkerInside
	default:
		return MarkerOutside
	}
}

// DebugMarkers returns one marker per sample of the last field, laid out on
// the current plane pose. It returns nil before the first render pass.
func (p *Plane) DebugMarkers() []Marker {
	if len(p.field) == 0 {
		return nil
	}
	n := p.metrics.PlaneGridPoints()
	half := float64(n / 2)
	out := make([]Marker, 0, n*n)
	for y := range n {
		for x := range n {
			v := p.field[x+n*y]
			out = append(out, Marker{
				Position: GridToWorldPoint(p.pose, Vec3{X: float64(x) - half, Z: float64(y) - half}),
				Size:     MarkerSize,
				Kind:     classify(v),
				Value:    v,
			})
		}
	}
	return out
}
