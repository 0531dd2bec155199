package isoslice

import (
	"errors"
	"fmt"
)

// ErrCountOutOfRange is returned when a readback asks for more segments than
// the kernel produced or than the buffer can hold.
var ErrCountOutOfRange = errors.New("isoslice: segment count out of range")

// ErrFieldTooShort is returned when a field has fewer than N*N samples.
var ErrFieldTooShort = errors.New("isoslice: field shorter than grid")

// Segment is a contour piece in centered grid-local space. Only X and Z carry
// information; Y is always zero at emission time.
type Segment struct {
	A, B Vec3
}

// Kernel detects iso-level crossings on a sampled plane field.
//
// The protocol for one frame is strictly sequential:
//
//	k.Dispatch(field, iso)       // reset counter, upload, run
//	n, _ := k.ReadCount()        // blocking copy of the append counter
//	segs, _ := k.ReadSegments(n) // sized copy of exactly n records
//
// The count is only known after the dispatch completes, so the two readback
// steps must not be collapsed into one fixed-size transfer.
type Kernel interface {
	// Name identifies the implementation ("cpu", "wgpu").
	Name() string

	// Dispatch resets the append counter to zero, uploads the first N*N
	// samples of field and runs the intersection over all cells.
	Dispatch(field []float32, iso float32) error

	// ReadCount returns the number of segments produced by the last dispatch,
	// clamped to the segment capacity.
	ReadCount() (int, error)

	// ReadSegments copies count segment records to host memory.
	ReadSegments(count int) ([]Segment, error)

	// Close releases the kernel's buffers.
	Close()
}

// edge endpoints, as corner indices: bottom, right, top, left.
var cellEdges = [4][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// cellSegments lists the edge pairs joined for each marching-squares case.
// Corner bit i is set when corner i lies above the iso-level. Corners are
// (x,y), (x+1,y), (x+1,y+1), (x,y+1). Saddles (5, 10) emit two segments.
var cellSegments = [16][4]int8{
	{-1, -1, -1, -1},
	{3, 0, -1, -1},
	{0, 1, -1, -1},
	{3, 1, -1, -1},
	{1, 2, -1, -1},
	{3, 0, 1, 2},
	{0, 2, -1, -1},
	{3, 2, -1, -1},
	{2, 3, -1, -1},
	{0, 2, -1, -1},
	{0, 1, 2, 3},
	{1, 2, -1, -1},
	{1, 3, -1, -1},
	{0, 1, -1, -1},
	{0, 3, -1, -1},
	{-1, -1, -1, -1},
}

// marchCell evaluates the cell whose lower corner is (x, y) on an n×n field and
// calls emit for every segment it produces. Cells touching a NoData sample
// produce nothing.
func marchCell(field []float32, n, x, y int, iso float32, emit func(Segment)) {
	if x < 0 || y < 0 || x >= n-1 || y >= n-1 {
		return
	}
	cx := [4]int{x, x + 1, x + 1, x}
	cy := [4]int{y, y, y + 1, y + 1}
	var v [4]float32
	caseIndex := 0
	for i := range 4 {
		v[i] = field[cx[i]+n*cy[i]]
		if v[i] == NoData {
			return
		}
		if v[i] > iso {
			caseIndex |= 1 << i
		}
	}
	row := cellSegments[caseIndex]
	if row[0] < 0 {
		return
	}

	half := float64(n / 2)
	point := func(edge int8) Vec3 {
		c0, c1 := cellEdges[edge][0], cellEdges[edge][1]
		t := 0.5
		if d := v[c1] - v[c0]; d != 0 {
			t = float64((iso - v[c0]) / d)
		}
		px := float64(cx[c0]) + t*float64(cx[c1]-cx[c0])
		pz := float64(cy[c0]) + t*float64(cy[c1]-cy[c0])
		return Vec3{X: px - half, Z: pz - half}
	}

	for i := 0; i < len(row) && row[i] >= 0; i += 2 {
		emit(Segment{A: point(row[i]), B: point(row[i+1])})
	}
}

// checkField reports whether field can feed a grid of m.
func checkField(m Metrics, field []float32) error {
	if len(field) < m.FieldLen() {
		return fmt.Errorf("%w: %d samples, need %d", ErrFieldTooShort, len(field), m.FieldLen())
	}
	return nil
}

// checkCount validates a ReadSegments request against the last read count.
func checkCount(count, last, capacity int) error {
	if count < 0 || count > capacity || count > last {
		return fmt.Errorf("%w: %d (produced %d, capacity %d)", ErrCountOutOfRange, count, last, capacity)
	}
	return nil
}
