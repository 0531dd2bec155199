// Package visual holds the renderable representations built for contour
// segments.
//
// Instances live as entities in an ark ECS world so an external renderer can
// query them alongside its own components. A Container is the dedicated
// parent of one plane's segment visuals; it is rebuilt every render pass.
package visual

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Template is the prototype a segment visual is instantiated from.
type Template struct {
	Name string
	Mesh string
}

// Transform is the world pose and scale of an instance.
type Transform struct {
	Position r3.Vec
	Rotation quat.Number
	Scale    r3.Vec
}

// Instance links an entity to its template and container slot.
type Instance struct {
	Template *Template
	Slot     int
	Visible  bool
}

// Snapshot is a copy of one instance's components.
type Snapshot struct {
	Transform
	Instance
}

// Container owns the entities of one plane's segment visuals.
//
// Container is not safe for concurrent use; a plane updates it from its own
// tick.
type Container struct {
	world   *ecs.World
	mapper  *ecs.Map2[Transform, Instance]
	slots   []ecs.Entity
	visible bool
}

// NewContainer creates an empty, visible container with its own world.
func NewContainer() *Container {
	return NewContainerInWorld(ecs.NewWorld())
}

// NewContainerInWorld creates a container whose entities live in world, so a
// host application can share one world between several planes.
func NewContainerInWorld(world *ecs.World) *Container {
	return &Container{
		world:   world,
		mapper:  ecs.NewMap2[Transform, Instance](world),
		visible: true,
	}
}

// World returns the ECS world the instances live in.
func (c *Container) World() *ecs.World { return c.world }

// Len returns the number of live instances.
func (c *Container) Len() int { return len(c.slots) }

// Visible reports whether instances are rendered.
func (c *Container) Visible() bool { return c.visible }

// SetVisible toggles rendering of every instance. New instances inherit the
// container's state.
func (c *Container) SetVisible(v bool) {
	c.visible = v
	for _, e := range c.slots {
		_, inst := c.mapper.Get(e)
		inst.Visible = v
	}
}

// Spawn adds an instance in the next free slot.
func (c *Container) Spawn(t *Template, tr Transform) {
	inst := Instance{Template: t, Slot: len(c.slots), Visible: c.visible}
	e := c.mapper.NewEntity(&tr, &inst)
	c.slots = append(c.slots, e)
}

// Place overwrites the instance in slot i. It reports false if the slot does
// not exist.
func (c *Container) Place(i int, t *Template, tr Transform) bool {
	if i < 0 || i >= len(c.slots) {
		return false
	}
	dst, inst := c.mapper.Get(c.slots[i])
	*dst = tr
	inst.Template = t
	inst.Visible = c.visible
	return true
}

// Truncate destroys every instance from slot n on and returns how many were
// removed.
func (c *Container) Truncate(n int) int {
	if n < 0 {
		n = 0
	}
	if n >= len(c.slots) {
		return 0
	}
	removed := 0
	for _, e := range c.slots[n:] {
		if c.world.Alive(e) {
			c.world.RemoveEntity(e)
			removed++
		}
	}
	c.slots = c.slots[:n]
	return removed
}

// Clear destroys every instance and returns how many were removed.
func (c *Container) Clear() int {
	return c.Truncate(0)
}

// Snapshots returns copies of all instances ordered by slot.
func (c *Container) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(c.slots))
	for _, e := range c.slots {
		tr, inst := c.mapper.Get(e)
		out = append(out, Snapshot{Transform: *tr, Instance: *inst})
	}
	return out
}

// CountVisible returns the number of visible segment instances in world,
// across every container that shares it.
func CountVisible(world *ecs.World) int {
	filter := ecs.NewFilter2[Transform, Instance](world)
	n := 0
	query := filter.Query()
	for query.Next() {
		_, inst := query.Get()
		if inst.Visible {
			n++
		}
	}
	return n
}
