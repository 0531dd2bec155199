package isoslice

import (
	"github.com/gogpu/isoslice/internal/parallel"
)

// CPUKernel runs the intersection kernel on a goroutine pool.
//
// Work-groups of NumThreads × NumThreads cells are executed in parallel, and
// segments are collected through an atomic append buffer with the same fixed
// capacity and silent clamping as the GPU implementation.
type CPUKernel struct {
	metrics Metrics
	pool    *parallel.WorkerPool
	field   []float32
	out     *parallel.AppendBuffer[Segment]
	last    int
}

var _ Kernel = (*CPUKernel)(nil)

// NewCPUKernel allocates the field and segment buffers for m.
func NewCPUKernel(m Metrics) *CPUKernel {
	return &CPUKernel{
		metrics: m,
		pool:    parallel.NewWorkerPool(0),
		field:   make([]float32, m.FieldLen()),
		out:     parallel.NewAppendBuffer[Segment](m.SegmentCapacity()),
	}
}

// Name returns "cpu".
func (k *CPUKernel) Name() string { return "cpu" }

// Dispatch resets the counter, copies the field and runs every work-group.
func (k *CPUKernel) Dispatch(field []float32, iso float32) error {
	if err := checkField(k.metrics, field); err != nil {
		return err
	}
	k.out.Reset()
	k.last = 0
	copy(k.field, field[:len(k.field)])

	n := k.metrics.PlaneGridPoints()
	threads := k.metrics.NumThreads
	groups := k.metrics.WorkGroups()
	emit := func(s Segment) { k.out.Append(s) }

	k.pool.Dispatch(groups, groups, func(gx, gy int) {
		for ty := range threads {
			for tx := range threads {
				marchCell(k.field, n, gx*threads+tx, gy*threads+ty, iso, emit)
			}
		}
	})

	if dropped := k.out.Attempted() - k.out.Count(); dropped > 0 {
		Logger().Debug("cpu kernel: segment capacity reached",
			"capacity", k.out.Cap(), "dropped", dropped)
	}
	return nil
}

// ReadCount returns the clamped append counter.
func (k *CPUKernel) ReadCount() (int, error) {
	k.last = k.out.Count()
	return k.last, nil
}

// ReadSegments returns exactly count segments from the append buffer.
func (k *CPUKernel) ReadSegments(count int) ([]Segment, error) {
	if err := checkCount(count, k.last, k.out.Cap()); err != nil {
		return nil, err
	}
	return k.out.Items(count), nil
}

// Close stops the worker pool.
func (k *CPUKernel) Close() {
	k.pool.Close()
}
