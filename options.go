package isoslice

import "github.com/gogpu/isoslice/visual"

// PlaneOption configures a Plane during creation.
// Use functional options to customize Plane behavior.
//
// Example:
//
//	// Default: CPU or registered GPU kernel, private registry
//	p, err := isoslice.NewPlane(provider)
//
//	// Shared registry and a segment template
//	p, err := isoslice.NewPlane(provider,
//		isoslice.WithRegistry(reg),
//		isoslice.WithTemplate(&visual.Template{Name: "segment"}))
type PlaneOption func(*planeOptions)

// planeOptions holds optional configuration for Plane creation.
type planeOptions struct {
	metrics   Metrics
	registry  *Registry
	template  *visual.Template
	retain    bool
	kernel    Kernel
	forceCPU  bool
	container *visual.Container
	handle    *Handle
	pose      Pose
	mode      OrientationMode

	proximity *float64
	policy    *SelectionPolicy
}

// defaultOptions returns the default plane options.
func defaultOptions() planeOptions {
	return planeOptions{
		metrics: DefaultMetrics(),
		pose:    IdentityPose(),
	}
}

// WithMetrics sets the grid metrics. They are fixed for the plane's lifetime.
func WithMetrics(m Metrics) PlaneOption {
	return func(o *planeOptions) {
		o.metrics = m
	}
}

// WithRegistry makes the plane select surfaces from a shared registry.
// Without it the plane creates a private one.
func WithRegistry(r *Registry) PlaneOption {
	return func(o *planeOptions) {
		o.registry = r
	}
}

// WithProximity sets the selection distance on the plane's registry.
func WithProximity(d float64) PlaneOption {
	return func(o *planeOptions) {
		o.proximity = &d
	}
}

// WithPolicy sets the selection policy on the plane's registry.
func WithPolicy(p SelectionPolicy) PlaneOption {
	return func(o *planeOptions) {
		o.policy = &p
	}
}

// WithTemplate sets the template segment visuals are instantiated from.
// A plane without a template renders no visuals and warns per segment.
func WithTemplate(t *visual.Template) PlaneOption {
	return func(o *planeOptions) {
		o.template = t
	}
}

// WithRetainedPool makes the visual builder reuse instances by slot instead
// of destroying and recreating them every pass.
func WithRetainedPool(retain bool) PlaneOption {
	return func(o *planeOptions) {
		o.retain = retain
	}
}

// WithKernel injects an intersection kernel. The plane takes ownership and
// closes it in Close.
func WithKernel(k Kernel) PlaneOption {
	return func(o *planeOptions) {
		o.kernel = k
	}
}

// WithCPUKernel bypasses any registered accelerator.
func WithCPUKernel() PlaneOption {
	return func(o *planeOptions) {
		o.forceCPU = true
	}
}

// WithContainer sets the container segment visuals are parented under,
// typically one created in a world shared with the host application.
func WithContainer(c *visual.Container) PlaneOption {
	return func(o *planeOptions) {
		o.container = c
	}
}

// WithHandle attaches an externally owned drag handle.
func WithHandle(h *Handle) PlaneOption {
	return func(o *planeOptions) {
		o.handle = h
	}
}

// WithPose sets the initial plane pose.
func WithPose(p Pose) PlaneOption {
	return func(o *planeOptions) {
		o.pose = p
	}
}

// WithOrientation sets the initial orientation mode. Invalid modes make
// NewPlane fail with ErrInvalidMode.
func WithOrientation(m OrientationMode) PlaneOption {
	return func(o *planeOptions) {
		o.mode = m
	}
}
