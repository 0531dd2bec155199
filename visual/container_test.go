package visual

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

var testTemplate = &Template{Name: "segment"}

func at(x float64) Transform {
	return Transform{Position: r3.Vec{X: x}, Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
}

func TestContainerSpawnAndSnapshots(t *testing.T) {
	c := NewContainer()
	for i := range 3 {
		c.Spawn(testTemplate, at(float64(i)))
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	for i, s := range c.Snapshots() {
		if s.Slot != i || s.Position.X != float64(i) || s.Template != testTemplate || !s.Visible {
			t.Errorf("snapshot %d = %+v", i, s)
		}
	}
}

func TestContainerPlace(t *testing.T) {
	c := NewContainer()
	c.Spawn(testTemplate, at(0))

	other := &Template{Name: "other"}
	if !c.Place(0, other, at(5)) {
		t.Fatal("Place(0) = false")
	}
	if c.Place(1, other, at(6)) {
		t.Error("Place past the end should report false")
	}
	if c.Place(-1, other, at(6)) {
		t.Error("Place(-1) should report false")
	}
	s := c.Snapshots()[0]
	if s.Position.X != 5 || s.Template != other {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestContainerTruncate(t *testing.T) {
	c := NewContainer()
	for i := range 5 {
		c.Spawn(testTemplate, at(float64(i)))
	}
	if got := c.Truncate(2); got != 3 {
		t.Errorf("Truncate(2) removed %d, want 3", got)
	}
	if got := c.Truncate(4); got != 0 {
		t.Errorf("Truncate(4) removed %d, want 0", got)
	}
	if got := c.Clear(); got != 2 {
		t.Errorf("Clear() removed %d, want 2", got)
	}
	if c.Len() != 0 || CountVisible(c.World()) != 0 {
		t.Errorf("container not empty: len %d, visible %d", c.Len(), CountVisible(c.World()))
	}
}

func TestContainerVisibility(t *testing.T) {
	c := NewContainer()
	c.Spawn(testTemplate, at(0))
	c.SetVisible(false)
	c.Spawn(testTemplate, at(1))

	if CountVisible(c.World()) != 0 {
		t.Error("hidden container has visible instances")
	}
	c.SetVisible(true)
	if got := CountVisible(c.World()); got != 2 {
		t.Errorf("CountVisible = %d, want 2", got)
	}
}

func TestContainersShareWorld(t *testing.T) {
	world := ecs.NewWorld()
	a := NewContainerInWorld(world)
	b := NewContainerInWorld(world)
	a.Spawn(testTemplate, at(0))
	b.Spawn(testTemplate, at(1))
	b.Spawn(testTemplate, at(2))

	if got := CountVisible(world); got != 3 {
		t.Errorf("CountVisible = %d, want 3", got)
	}
	a.Clear()
	if got := CountVisible(world); got != 2 {
		t.Errorf("CountVisible = %d after clearing a, want 2", got)
	}
	if b.Len() != 2 || b.Snapshots()[1].Position.X != 2 {
		t.Error("clearing a touched b")
	}
}
