package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/isoslice"
)

// stepPlane renders a field whose upper rows are inside, giving a straight
// contour across the grid.
func stepPlane(t *testing.T) *isoslice.Plane {
	t.Helper()
	provider := isoslice.FieldProviderFunc(func(_ isoslice.FieldParams, n int) ([]float32, error) {
		f := make([]float32, n*n)
		for i := range n * (n / 2) {
			f[i] = 1
		}
		return f, nil
	})
	p, err := isoslice.NewPlane(provider, isoslice.WithCPUKernel())
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	t.Cleanup(p.Close)
	p.AttachSurface(&isoslice.Surface{Name: "step", Size: 16})
	if _, err := p.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return p
}

func TestRecords(t *testing.T) {
	p := stepPlane(t)
	recs := Records(3, p)
	if len(recs) == 0 || len(recs) != len(p.Placements()) {
		t.Fatalf("got %d records for %d placements", len(recs), len(p.Placements()))
	}
	for i, r := range recs {
		if r.Tick != 3 || r.Surface != "step" || r.Index != i {
			t.Fatalf("record %d = %+v", i, r)
		}
		want := math.Hypot(r.BX-r.AX, r.BZ-r.AZ)
		if math.Abs(r.Length-want) > 1e-9 {
			t.Fatalf("record %d length = %v, want %v", i, r.Length, want)
		}
	}
}

func TestRecordsWithoutSurface(t *testing.T) {
	p, err := isoslice.NewPlane(isoslice.FieldProviderFunc(func(isoslice.FieldParams, int) ([]float32, error) {
		return nil, nil
	}), isoslice.WithCPUKernel())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if recs := Records(0, p); len(recs) != 0 {
		t.Errorf("got %d records without a render", len(recs))
	}
}

func TestWriterHeaderOnce(t *testing.T) {
	p := stepPlane(t)
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Write(nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("empty batch wrote output")
	}
	first, second := Records(0, p), Records(1, p)
	if err := w.Write(first); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(second); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.Rows() != len(first)+len(second) {
		t.Errorf("Rows() = %d, want %d", w.Rows(), len(first)+len(second))
	}
	if n := strings.Count(buf.String(), "tick,surface"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != w.Rows() {
		t.Fatalf("read %d records, want %d", len(got), w.Rows())
	}
	if got[len(first)].Tick != 1 {
		t.Errorf("second batch tick = %d, want 1", got[len(first)].Tick)
	}
	g, f := got[0], first[0]
	if g.Surface != f.Surface || g.Index != f.Index || math.Abs(g.AX-f.AX) > 1e-9 || math.Abs(g.BZ-f.BZ) > 1e-9 {
		t.Errorf("round trip mismatch: %+v vs %+v", g, f)
	}
}
