package isoslice

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is an implicit surface the plane can cut through.
type Surface struct {
	Name        string
	Position    Vec3
	Size        float64
	Function    int // field function selector
	Orientation int // orientation tag passed to the field provider
}

func (s *Surface) String() string {
	return fmt.Sprintf("surface %q at (%.3f, %.3f, %.3f)", s.Name, s.Position.X, s.Position.Y, s.Position.Z)
}

// SelectionPolicy decides which qualifying surface is the closest one.
type SelectionPolicy int

const (
	// SelectLastWithin keeps the last surface in registration order whose
	// distance is below the proximity threshold. Nearer surfaces registered
	// earlier lose to farther ones registered later.
	SelectLastWithin SelectionPolicy = iota

	// SelectNearest keeps the qualifying surface with the smallest distance.
	// Ties go to the later registration.
	SelectNearest
)

func (p SelectionPolicy) String() string {
	switch p {
	case SelectLastWithin:
		return "last"
	case SelectNearest:
		return "nearest"
	default:
		return fmt.Sprintf("SelectionPolicy(%d)", int(p))
	}
}

// ParseSelectionPolicy converts a configuration name to a policy.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch s {
	case "", "last":
		return SelectLastWithin, nil
	case "nearest":
		return SelectNearest, nil
	default:
		return 0, fmt.Errorf("isoslice: unknown selection policy %q", s)
	}
}

// Registry tracks surfaces and picks the one closest to a plane.
//
// A registry may be shared by several planes. Attach takes a write lock;
// selection only reads.
type Registry struct {
	mu        sync.RWMutex
	surfaces  []*Surface
	proximity float64
	policy    SelectionPolicy
}

// NewRegistry creates a registry with the default proximity and policy.
func NewRegistry() *Registry {
	return &Registry{proximity: DefaultProximity, policy: SelectLastWithin}
}

// SetProximity sets the distance under which a surface qualifies.
func (r *Registry) SetProximity(d float64) {
	r.mu.Lock()
	r.proximity = d
	r.mu.Unlock()
}

// SetPolicy sets the selection policy.
func (r *Registry) SetPolicy(p SelectionPolicy) {
	r.mu.Lock()
	r.policy = p
	r.mu.Unlock()
}

// Attach adds s unless the same surface is already tracked. It reports whether
// s was added.
func (r *Registry) Attach(s *Surface) bool {
	if s == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.surfaces {
		if t == s {
			return false
		}
	}
	r.surfaces = append(r.surfaces, s)
	return true
}

// Surfaces returns the tracked surfaces in registration order.
func (r *Registry) Surfaces() []*Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Surface, len(r.surfaces))
	copy(out, r.surfaces)
	return out
}

// Len returns the number of tracked surfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}

// SelectClosest returns the surface chosen for a plane at pos, or false when
// no surface lies within the proximity threshold.
func (r *Registry) SelectClosest(pos Vec3) (*Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		closest *Surface
		best    float64
	)
	for _, s := range r.surfaces {
		d := r3.Norm(r3.Sub(s.Position, pos))
		if d >= r.proximity {
			continue
		}
		if r.policy == SelectNearest && closest != nil && d > best {
			continue
		}
		closest, best = s, d
	}
	return closest, closest != nil
}
