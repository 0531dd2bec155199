package visual

import (
	"log/slog"
)

// BuildStats summarizes one Build call.
type BuildStats struct {
	Built   int // instances present after the build
	Skipped int // placements dropped because no template was assigned
	Removed int // instances destroyed
}

// Builder turns a frame's transforms into container instances.
//
// Every Build replaces the container's contents with exactly one instance per
// transform. With Retain set, existing entities are reused slot by slot and
// only the surplus is destroyed; the observable result is identical to a full
// rebuild.
type Builder struct {
	Template *Template
	Retain   bool
	Logger   *slog.Logger
}

// Build replaces the instances in c with one per transform.
func (b *Builder) Build(c *Container, transforms []Transform) BuildStats {
	var stats BuildStats
	if !b.Retain {
		stats.Removed = c.Clear()
	}

	if b.Template == nil {
		stats.Skipped = len(transforms)
		if stats.Skipped > 0 {
			log := b.logger()
			for i := range transforms {
				log.Warn("visual: no segment template", "slot", i)
			}
		}
		stats.Removed += c.Clear()
		return stats
	}

	for i, tr := range transforms {
		if b.Retain && c.Place(i, b.Template, tr) {
			continue
		}
		c.Spawn(b.Template, tr)
	}
	stats.Removed += c.Truncate(len(transforms))
	stats.Built = c.Len()
	return stats
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
