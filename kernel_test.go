package isoslice

import (
	"cmp"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

// filledField returns an n×n field with every sample set to v.
func filledField(n int, v float32) []float32 {
	f := make([]float32, n*n)
	for i := range f {
		f[i] = v
	}
	return f
}

// runKernel dispatches field on k and reads back every segment.
func runKernel(t *testing.T, k Kernel, field []float32) []Segment {
	t.Helper()
	if err := k.Dispatch(field, IsoLevel); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	n, err := k.ReadCount()
	if err != nil {
		t.Fatalf("ReadCount: %v", err)
	}
	segs, err := k.ReadSegments(n)
	if err != nil {
		t.Fatalf("ReadSegments(%d): %v", n, err)
	}
	if len(segs) != n {
		t.Fatalf("ReadSegments(%d) returned %d segments", n, len(segs))
	}
	return segs
}

func sortSegments(segs []Segment) {
	slices.SortFunc(segs, func(a, b Segment) int {
		return cmp.Or(
			cmp.Compare(a.A.X, b.A.X),
			cmp.Compare(a.A.Z, b.A.Z),
			cmp.Compare(a.B.X, b.B.X),
			cmp.Compare(a.B.Z, b.B.Z),
		)
	})
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func newTestKernel(t *testing.T) *CPUKernel {
	t.Helper()
	k := NewCPUKernel(DefaultMetrics())
	t.Cleanup(k.Close)
	return k
}

func TestKernelBelowIsoLevelEmitsNothing(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()

	for _, v := range []float32{0, 0.2, 0.5, NoData} {
		if segs := runKernel(t, k, filledField(n, v)); len(segs) != 0 {
			t.Errorf("field of %v: %d segments, want 0", v, len(segs))
		}
	}
}

func TestKernelSingleCrossing(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	c, r := 10, 20

	// Only one cell has four real corners: left column 0.2, right column 0.8.
	f := filledField(n, NoData)
	f[c+n*r], f[c+n*(r+1)] = 0.2, 0.2
	f[c+1+n*r], f[c+1+n*(r+1)] = 0.8, 0.8

	segs := runKernel(t, k, f)
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	half := float64(n / 2)
	wantX := float64(c) + 0.5 - half
	for _, p := range []Vec3{s.A, s.B} {
		if !near(p.X, wantX) {
			t.Errorf("crossing x = %v, want %v", p.X, wantX)
		}
		if p.Y != 0 {
			t.Errorf("y = %v, want 0", p.Y)
		}
		if p.X < float64(c)-half || p.X > float64(c+1)-half {
			t.Errorf("crossing x = %v outside the straddling samples", p.X)
		}
	}
	zs := []float64{s.A.Z, s.B.Z}
	slices.Sort(zs)
	if !near(zs[0], float64(r)-half) || !near(zs[1], float64(r+1)-half) {
		t.Errorf("segment z span = %v, want [%v %v]", zs, float64(r)-half, float64(r+1)-half)
	}
}

func TestKernelInterpolation(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	c, r := 5, 5

	f := filledField(n, NoData)
	f[c+n*r], f[c+n*(r+1)] = 0, 0
	f[c+1+n*r], f[c+1+n*(r+1)] = 0.625, 0.625

	segs := runKernel(t, k, f)
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	// t = 0.5 / 0.625 = 0.8 along the edge.
	want := float64(c) + 0.8 - float64(n/2)
	if !near(segs[0].A.X, want) {
		t.Errorf("crossing x = %v, want %v", segs[0].A.X, want)
	}
}

func TestKernelStepRow(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	r := 17

	f := make([]float32, n*n)
	for y := range n {
		for x := range n {
			if y <= r {
				f[x+n*y] = 1
			}
		}
	}

	segs := runKernel(t, k, f)
	if len(segs) != n-1 {
		t.Fatalf("got %d segments, want %d", len(segs), n-1)
	}
	wantZ := float64(r) + 0.5 - float64(n/2)
	for _, s := range segs {
		if !near(s.A.Z, wantZ) || !near(s.B.Z, wantZ) {
			t.Fatalf("segment %v not on z = %v", s, wantZ)
		}
		if !near(math.Abs(s.B.X-s.A.X), 1) {
			t.Fatalf("segment %v does not span one cell", s)
		}
	}
}

func TestKernelSaddleEmitsTwo(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	c, r := 3, 4

	f := filledField(n, NoData)
	f[c+n*r], f[c+1+n*(r+1)] = 0.9, 0.9
	f[c+1+n*r], f[c+n*(r+1)] = 0.1, 0.1

	if segs := runKernel(t, k, f); len(segs) != 2 {
		t.Errorf("saddle: got %d segments, want 2", len(segs))
	}
}

func TestKernelCountMatchesReadback(t *testing.T) {
	k := newTestKernel(t)
	m := DefaultMetrics()
	n := m.PlaneGridPoints()
	rng := rand.New(rand.NewPCG(1, 2))

	for range 20 {
		f := make([]float32, n*n)
		for i := range f {
			switch rng.IntN(10) {
			case 0:
				f[i] = NoData
			default:
				f[i] = rng.Float32()
			}
		}
		if err := k.Dispatch(f, IsoLevel); err != nil {
			t.Fatal(err)
		}
		count, err := k.ReadCount()
		if err != nil {
			t.Fatal(err)
		}
		if count < 0 || count > m.SegmentCapacity() {
			t.Fatalf("count %d outside [0, %d]", count, m.SegmentCapacity())
		}
		segs, err := k.ReadSegments(count)
		if err != nil {
			t.Fatal(err)
		}
		if len(segs) != count {
			t.Fatalf("ReadSegments(%d) returned %d", count, len(segs))
		}
		if _, err := k.ReadSegments(count + 1); !errors.Is(err, ErrCountOutOfRange) {
			t.Fatalf("ReadSegments(count+1) err = %v, want ErrCountOutOfRange", err)
		}
	}
}

func TestKernelIdempotent(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	rng := rand.New(rand.NewPCG(3, 4))
	f := make([]float32, n*n)
	for i := range f {
		f[i] = rng.Float32()
	}

	first := runKernel(t, k, f)
	second := runKernel(t, k, f)
	sortSegments(first)
	sortSegments(second)
	if !slices.Equal(first, second) {
		t.Errorf("reruns differ: %d vs %d segments", len(first), len(second))
	}
}

func TestKernelAcceptsOversizedField(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	f := filledField(n*n, 0)[:n*n*n]
	if err := k.Dispatch(f, IsoLevel); err != nil {
		t.Errorf("Dispatch(n³ samples) = %v", err)
	}
}

func TestKernelFieldTooShort(t *testing.T) {
	k := newTestKernel(t)
	if err := k.Dispatch(make([]float32, 10), IsoLevel); !errors.Is(err, ErrFieldTooShort) {
		t.Errorf("Dispatch(short) = %v, want ErrFieldTooShort", err)
	}
}

func TestReadSegmentsBeforeCount(t *testing.T) {
	k := newTestKernel(t)
	n := DefaultMetrics().PlaneGridPoints()
	f := make([]float32, n*n)
	for i := n * 10; i < len(f); i++ {
		f[i] = 1
	}
	if err := k.Dispatch(f, IsoLevel); err != nil {
		t.Fatal(err)
	}
	// Nothing is retrievable until the count has been read.
	if _, err := k.ReadSegments(1); !errors.Is(err, ErrCountOutOfRange) {
		t.Errorf("ReadSegments before ReadCount err = %v, want ErrCountOutOfRange", err)
	}
}

func TestCheckCount(t *testing.T) {
	tests := []struct {
		count, last, capacity int
		ok                    bool
	}{
		{0, 0, 10, true},
		{5, 5, 10, true},
		{3, 5, 10, true},
		{-1, 5, 10, false},
		{6, 5, 10, false},
		{11, 20, 10, false},
	}
	for _, tt := range tests {
		err := checkCount(tt.count, tt.last, tt.capacity)
		if (err == nil) != tt.ok {
			t.Errorf("checkCount(%d, %d, %d) = %v, want ok=%v", tt.count, tt.last, tt.capacity, err, tt.ok)
		}
	}
}

func TestCellSegmentsTable(t *testing.T) {
	// Every case except all-in and all-out joins edges whose corners differ.
	for c, row := range cellSegments {
		for i := 0; i < len(row) && row[i] >= 0; i++ {
			e := cellEdges[row[i]]
			in0 := c&(1<<e[0]) != 0
			in1 := c&(1<<e[1]) != 0
			if in0 == in1 {
				t.Errorf("case %d uses edge %d which does not straddle", c, row[i])
			}
		}
	}
}

func BenchmarkCPUKernelDispatch(b *testing.B) {
	k := NewCPUKernel(DefaultMetrics())
	defer k.Close()
	n := DefaultMetrics().PlaneGridPoints()
	rng := rand.New(rand.NewPCG(5, 6))
	f := make([]float32, n*n)
	for i := range f {
		f[i] = rng.Float32()
	}
	b.ReportAllocs()
	for b.Loop() {
		_ = k.Dispatch(f, IsoLevel)
		c, _ := k.ReadCount()
		_, _ = k.ReadSegments(c)
	}
}
