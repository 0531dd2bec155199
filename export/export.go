// Package export writes accepted contour segments as CSV.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/isoslice"
)

// Record is one accepted segment of one tick.
type Record struct {
	Tick    int     `csv:"tick"`
	Surface string  `csv:"surface"`
	Index   int     `csv:"index"`
	AX      float64 `csv:"ax"`
	AY      float64 `csv:"ay"`
	AZ      float64 `csv:"az"`
	BX      float64 `csv:"bx"`
	BY      float64 `csv:"by"`
	BZ      float64 `csv:"bz"`
	Length  float64 `csv:"length"`
}

// Records converts the placements of p's last pass.
func Records(tick int, p *isoslice.Plane) []Record {
	name := ""
	if s := p.Closest(); s != nil {
		name = s.Name
	}
	placed := p.Placements()
	out := make([]Record, len(placed))
	for i, pl := range placed {
		out[i] = Record{
			Tick:    tick,
			Surface: name,
			Index:   i,
			AX:      pl.A.X,
			AY:      pl.A.Y,
			AZ:      pl.A.Z,
			BX:      pl.B.X,
			BY:      pl.B.Y,
			BZ:      pl.B.Z,
			Length:  r3.Norm(pl.Dir),
		}
	}
	return out
}

// Writer appends records to a CSV stream. The header is written with the
// first non-empty batch.
type Writer struct {
	w             io.Writer
	headerWritten bool
	rows          int
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends records.
func (cw *Writer) Write(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if !cw.headerWritten {
		if err := gocsv.Marshal(records, cw.w); err != nil {
			return fmt.Errorf("export: writing segments: %w", err)
		}
		cw.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, cw.w); err != nil {
			return fmt.Errorf("export: writing segments: %w", err)
		}
	}
	cw.rows += len(records)
	return nil
}

// Rows returns the number of records written.
func (cw *Writer) Rows() int { return cw.rows }

// Read parses records written by Writer.
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	if err := gocsv.Unmarshal(r, &out); err != nil {
		return nil, fmt.Errorf("export: reading segments: %w", err)
	}
	return out, nil
}
