package main

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/isoslice"
	"github.com/gogpu/isoslice/config"
)

// session is a loaded scene and the plane slicing it.
type session struct {
	cfg   *config.Config
	plane *isoslice.Plane
	ticks int
}

func openSession(g *globalFlags) (*session, error) {
	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, err
	}
	var extra []isoslice.PlaneOption
	if !g.gpu {
		extra = append(extra, isoslice.WithCPUKernel())
	}
	p, err := cfg.NewPlane(extra...)
	if err != nil {
		return nil, err
	}
	ticks := cfg.Simulation.Ticks
	if g.ticks >= 0 {
		ticks = g.ticks
	}
	return &session{cfg: cfg, plane: p, ticks: ticks}, nil
}

func (s *session) Close() { s.plane.Close() }

// summary accumulates what a run produced.
type summary struct {
	Kernel   string
	Surface  string
	Ticks    int
	Passes   int
	Accepted int // over all passes
	Last     int // accepted by the last pass
	Built    int // visuals alive after the run
}

// run renders the initial pose, then advances the handle by the scene step
// once per tick. onPass runs after every pass that sampled the field.
func (s *session) run(onPass func(tick int) error) (summary, error) {
	p := s.plane
	sum := summary{Kernel: p.KernelName(), Ticks: s.ticks}

	pass := func(tick int) error {
		sum.Passes++
		sum.Last = len(p.Placements())
		sum.Accepted += sum.Last
		if onPass != nil {
			return onPass(tick)
		}
		return nil
	}

	if _, err := p.Render(); err != nil {
		return sum, err
	}
	if err := pass(0); err != nil {
		return sum, err
	}
	for tick := 1; tick <= s.ticks; tick++ {
		h := p.Handle()
		h.Pose.Position = r3.Add(h.Pose.Position, s.cfg.Derived.Step)
		rendered, err := p.Update()
		if err != nil {
			return sum, fmt.Errorf("tick %d: %w", tick, err)
		}
		if rendered {
			if err := pass(tick); err != nil {
				return sum, err
			}
		}
	}

	if c := p.Closest(); c != nil {
		sum.Surface = c.Name
	}
	sum.Built = p.Container().Len()
	return sum, nil
}

// print writes the summary with grouped digits.
func (sum summary) print(w io.Writer) {
	pr := message.NewPrinter(language.English)
	surface := sum.Surface
	if surface == "" {
		surface = "(none)"
	}
	pr.Fprintf(w, "kernel:   %s\n", sum.Kernel)
	pr.Fprintf(w, "surface:  %s\n", surface)
	pr.Fprintf(w, "ticks:    %d (%d passes)\n", sum.Ticks, sum.Passes)
	pr.Fprintf(w, "segments: %d accepted in total, %d in the last pass\n", sum.Accepted, sum.Last)
	pr.Fprintf(w, "visuals:  %d\n", sum.Built)
}
