package isoslice

import (
	"errors"
	"fmt"

	"github.com/gogpu/isoslice/visual"
)

// ErrNilProvider is returned by NewPlane without a field provider.
var ErrNilProvider = errors.New("isoslice: field provider must not be nil")

// RenderStats reports what one render pass produced.
type RenderStats struct {
	Emitted  int  // segments read back from the kernel
	Accepted int  // segments inside the chunk cube
	Built    int  // visual instances after the rebuild
	Skipped  int  // accepted segments without a visual (no template)
	Stale    bool // no surface qualified; the previous selection was reused
}

// Plane is a movable cutting plane that extracts the contour where it
// intersects the closest registered surface.
//
// A Plane is driven from a single goroutine: call Update once per tick. The
// pose and surface selection of the previous pass are kept per plane, so
// independent planes can share a Registry without interfering.
type Plane struct {
	metrics    Metrics
	provider   FieldProvider
	kernel     Kernel
	registry   *Registry
	builder    visual.Builder
	container  *visual.Container
	controller Controller
	handle     *Handle

	pose     Pose
	prevPose Pose
	sampled  Pose // pose of the last field sampling
	closest  *Surface
	field    []float32
	placed   []Placement
	visible  bool
	closed   bool
}

// NewPlane creates a plane sampling fields from provider.
//
// The kernel's buffers are sized from the metrics once here. If an
// accelerator is registered its kernel is used; otherwise, or when it cannot
// serve the metrics, the CPU kernel is.
func NewPlane(provider FieldProvider, opts ...PlaneOption) (*Plane, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.metrics.Validate(); err != nil {
		return nil, err
	}

	p := &Plane{
		metrics:   o.metrics,
		provider:  provider,
		registry:  o.registry,
		container: o.container,
		handle:    o.handle,
		pose:      o.pose,
		prevPose:  IdentityPose(),
		visible:   true,
		builder:   visual.Builder{Template: o.template, Retain: o.retain},
	}
	if err := p.controller.SetMode(o.mode); err != nil {
		return nil, err
	}
	if p.registry == nil {
		p.registry = NewRegistry()
	}
	if o.proximity != nil {
		p.registry.SetProximity(*o.proximity)
	}
	if o.policy != nil {
		p.registry.SetPolicy(*o.policy)
	}
	if p.container == nil {
		p.container = visual.NewContainer()
	}
	if p.handle == nil {
		p.handle = &Handle{Pose: o.pose}
	}

	p.kernel = o.kernel
	if p.kernel == nil {
		p.kernel = newKernel(o.metrics, o.forceCPU)
	}
	Logger().Debug("plane created",
		"kernel", p.kernel.Name(),
		"grid", o.metrics.PlaneGridPoints(),
		"capacity", o.metrics.SegmentCapacity())
	return p, nil
}

// AttachSurface registers s with the plane's registry. Attaching the same
// surface twice is a no-op.
func (p *Plane) AttachSurface(s *Surface) bool {
	return p.registry.Attach(s)
}

// Update runs one tick. When the pose differs from the previous tick's, a
// render pass runs on the current pose; the alignment mode is applied and
// the handle recentered afterwards either way. It reports whether a render
// pass ran.
//
// Render errors are logged and returned; the tick still completes.
func (p *Plane) Update() (bool, error) {
	var err error
	rendered := false
	if !p.pose.Equal(p.prevPose) {
		rendered = true
		if _, err = p.Render(); err != nil {
			Logger().Warn("render pass failed", "err", err)
		}
		p.prevPose = p.pose
	}
	p.pose = p.controller.Apply(p.pose, p.handle)
	return rendered, err
}

// Render samples the field around the closest surface, extracts the contour
// and rebuilds the segment visuals.
//
// When no surface is in range the previous selection is reused with a
// warning. When no surface has ever been in range the pass is skipped.
func (p *Plane) Render() (RenderStats, error) {
	var stats RenderStats
	if p.closed {
		return stats, errors.New("isoslice: plane is closed")
	}
	log := Logger()

	if s, ok := p.registry.SelectClosest(p.pose.Position); ok {
		p.closest = s
	} else {
		stats.Stale = true
		log.Warn("no closest surface detected", "position", p.pose.Position)
	}
	if p.closest == nil {
		return stats, nil
	}

	params := fieldParamsFor(p.pose, p.closest)
	n := p.metrics.PlaneGridPoints()
	field, err := p.provider.SampleField(params, n)
	if err != nil {
		return stats, fmt.Errorf("isoslice: sample field: %w", err)
	}
	if err := checkField(p.metrics, field); err != nil {
		return stats, err
	}
	p.field = append(p.field[:0], field[:p.metrics.FieldLen()]...)
	p.sampled = p.pose

	if err := p.kernel.Dispatch(p.field, IsoLevel); err != nil {
		return stats, fmt.Errorf("isoslice: dispatch: %w", err)
	}
	count, err := p.kernel.ReadCount()
	if err != nil {
		return stats, fmt.Errorf("isoslice: read count: %w", err)
	}
	segs, err := p.kernel.ReadSegments(count)
	if err != nil {
		return stats, fmt.Errorf("isoslice: read segments: %w", err)
	}
	stats.Emitted = len(segs)

	p.placed = TransformSegments(p.pose, p.closest.Position, segs, p.metrics.PointsPerChunk)
	stats.Accepted = len(p.placed)

	transforms := make([]visual.Transform, len(p.placed))
	for i, pl := range p.placed {
		transforms[i] = visual.Transform{Position: pl.Mid, Rotation: pl.Rotation, Scale: pl.Scale}
	}
	p.builder.Logger = log
	b := p.builder.Build(p.container, transforms)
	stats.Built = b.Built
	stats.Skipped = b.Skipped

	log.Debug("render pass",
		"surface", p.closest.Name,
		"emitted", stats.Emitted,
		"accepted", stats.Accepted,
		"built", stats.Built)
	return stats, nil
}

// Pose returns the current plane pose.
func (p *Plane) Pose() Pose { return p.pose }

// SetPose moves the plane directly. The change is picked up by the next
// Update.
func (p *Plane) SetPose(pose Pose) { p.pose = pose }

// Handle returns the drag handle driving the plane.
func (p *Plane) Handle() *Handle { return p.handle }

// SetOrientation switches the alignment mode. Values outside 0..3 return
// ErrInvalidMode and leave the mode unchanged.
func (p *Plane) SetOrientation(mode int) error {
	return p.controller.SetMode(OrientationMode(mode))
}

// Orientation returns the active alignment mode.
func (p *Plane) Orientation() OrientationMode { return p.controller.Mode() }

// Release re-enables rotation tracking on the handle.
func (p *Plane) Release() { p.controller.Release(p.handle) }

// ChangeVisibility flips the visibility of the plane and its segment visuals.
// The handle stays visible.
func (p *Plane) ChangeVisibility() {
	p.visible = !p.visible
	p.container.SetVisible(p.visible)
}

// Visible reports whether the plane is rendered.
func (p *Plane) Visible() bool { return p.visible }

// Closest returns the surface used by the last render pass, or nil.
func (p *Plane) Closest() *Surface { return p.closest }

// Field returns the field of the last render pass. The slice is owned by the
// plane and overwritten by the next pass.
func (p *Plane) Field() []float32 { return p.field }

// SampledPose returns the pose the current field was sampled at. Update
// moves the plane after rendering, so it can differ from Pose.
func (p *Plane) SampledPose() Pose { return p.sampled }

// Placements returns the segments accepted by the last render pass.
func (p *Plane) Placements() []Placement { return p.placed }

// Container returns the container holding the segment visuals.
func (p *Plane) Container() *visual.Container { return p.container }

// Registry returns the surface registry the plane selects from.
func (p *Plane) Registry() *Registry { return p.registry }

// Metrics returns the plane's grid metrics.
func (p *Plane) Metrics() Metrics { return p.metrics }

// KernelName returns the name of the intersection kernel in use.
func (p *Plane) KernelName() string { return p.kernel.Name() }

// Close releases the kernel buffers and destroys the segment visuals.
// Close is idempotent.
func (p *Plane) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.kernel.Close()
	p.container.Clear()
}
