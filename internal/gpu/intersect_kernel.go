//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/isoslice"
)

const (
	paramsSize   = 16 // Params: grid, capacity, iso, no_data
	segmentSize  = 16 // Segment: two vec2<f32>
	counterSize  = 4
	fenceTimeout = 5 * time.Second
)

// kernelBuffers are the device buffers of one kernel. Sizes derive from the
// metrics and never change.
type kernelBuffers struct {
	params       hal.Buffer
	field        hal.Buffer
	segments     hal.Buffer
	counter      hal.Buffer
	countStaging hal.Buffer
	segStaging   hal.Buffer

	fieldSize    uint64
	segmentsSize uint64
}

// allocBuffers creates every buffer a kernel for m needs.
func allocBuffers(device hal.Device, m isoslice.Metrics) (*kernelBuffers, error) {
	b := &kernelBuffers{
		fieldSize:    uint64(m.FieldLen()) * 4,                  //nolint:gosec // grid size fits uint64
		segmentsSize: uint64(m.SegmentCapacity()) * segmentSize, //nolint:gosec // capacity fits uint64
	}
	specs := []struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&b.params, "plane_params", paramsSize, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&b.field, "plane_field", b.fieldSize, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&b.segments, "plane_segments", b.segmentsSize, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&b.counter, "plane_counter", counterSize, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst},
		{&b.countStaging, "plane_count_staging", counterSize, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
		{&b.segStaging, "plane_segments_staging", b.segmentsSize, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	for _, s := range specs {
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{Label: s.label, Size: s.size, Usage: s.usage})
		if err != nil {
			b.destroy(device)
			return nil, fmt.Errorf("create %s buffer: %w", s.label, err)
		}
		*s.dst = buf
	}
	slogger().Debug("gpu: kernel buffers allocated",
		"field_bytes", b.fieldSize, "segment_bytes", b.segmentsSize)
	return b, nil
}

func (b *kernelBuffers) destroy(device hal.Device) {
	for _, buf := range []*hal.Buffer{&b.params, &b.field, &b.segments, &b.counter, &b.countStaging, &b.segStaging} {
		if *buf != nil {
			device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
}

// IntersectKernel runs the plane intersection shader. It implements
// isoslice.Kernel. A kernel is used by a single plane and is not safe for
// concurrent use.
type IntersectKernel struct {
	device    hal.Device
	queue     hal.Queue
	pipeline  hal.ComputePipeline
	bindGroup hal.BindGroup
	buf       *kernelBuffers

	metrics  isoslice.Metrics
	capacity int
	last     int
	fieldTmp []byte
}

var _ isoslice.Kernel = (*IntersectKernel)(nil)

func newIntersectKernel(
	device hal.Device, queue hal.Queue,
	layout hal.BindGroupLayout, pipeline hal.ComputePipeline,
	m isoslice.Metrics,
) (*IntersectKernel, error) {
	buf, err := allocBuffers(device, m)
	if err != nil {
		return nil, fmt.Errorf("isoslice/gpu: %w", err)
	}
	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "plane_intersect_bind", Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.params.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: buf.field.NativeHandle(), Offset: 0, Size: buf.fieldSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: buf.segments.NativeHandle(), Offset: 0, Size: buf.segmentsSize}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: buf.counter.NativeHandle(), Offset: 0, Size: counterSize}},
		},
	})
	if err != nil {
		buf.destroy(device)
		return nil, fmt.Errorf("isoslice/gpu: create bind group: %w", err)
	}
	return &IntersectKernel{
		device:    device,
		queue:     queue,
		pipeline:  pipeline,
		bindGroup: bg,
		buf:       buf,
		metrics:   m,
		capacity:  m.SegmentCapacity(),
		fieldTmp:  make([]byte, buf.fieldSize),
	}, nil
}

// Name returns "wgpu".
func (k *IntersectKernel) Name() string { return "wgpu" }

// Dispatch resets the counter, uploads the field and runs the shader over
// N/8 × N/8 work-groups. It blocks until the GPU is done.
func (k *IntersectKernel) Dispatch(field []float32, iso float32) error {
	if k.buf == nil {
		return fmt.Errorf("isoslice/gpu: kernel is closed")
	}
	n := k.metrics.FieldLen()
	if len(field) < n {
		return fmt.Errorf("%w: %d samples, need %d", isoslice.ErrFieldTooShort, len(field), n)
	}
	k.last = 0

	k.queue.WriteBuffer(k.buf.params, 0, encodeParams(k.metrics.PlaneGridPoints(), k.capacity, iso))
	k.queue.WriteBuffer(k.buf.counter, 0, make([]byte, counterSize))
	encodeField(k.fieldTmp, field[:n])
	k.queue.WriteBuffer(k.buf.field, 0, k.fieldTmp)

	groups := uint32(k.metrics.WorkGroups()) //nolint:gosec // work-group count fits uint32
	return k.submit("plane_intersect", func(enc hal.CommandEncoder) {
		pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "plane_intersect_pass"})
		pass.SetPipeline(k.pipeline)
		pass.SetBindGroup(0, k.bindGroup, nil)
		pass.Dispatch(groups, groups, 1)
		pass.End()
	})
}

// ReadCount copies the append counter to host memory and returns it clamped
// to the segment capacity.
func (k *IntersectKernel) ReadCount() (int, error) {
	if k.buf == nil {
		return 0, fmt.Errorf("isoslice/gpu: kernel is closed")
	}
	err := k.submit("plane_count_readback", func(enc hal.CommandEncoder) {
		enc.CopyBufferToBuffer(k.buf.counter, k.buf.countStaging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: counterSize},
		})
	})
	if err != nil {
		return 0, err
	}
	raw := make([]byte, counterSize)
	if err := k.queue.ReadBuffer(k.buf.countStaging, 0, raw); err != nil {
		return 0, fmt.Errorf("isoslice/gpu: read counter: %w", err)
	}
	appended := int(binary.LittleEndian.Uint32(raw))
	k.last = min(appended, k.capacity)
	if appended > k.capacity {
		slogger().Debug("gpu: segment capacity reached",
			"capacity", k.capacity, "dropped", appended-k.capacity)
	}
	return k.last, nil
}

// ReadSegments copies exactly count segment records to host memory.
func (k *IntersectKernel) ReadSegments(count int) ([]isoslice.Segment, error) {
	if k.buf == nil {
		return nil, fmt.Errorf("isoslice/gpu: kernel is closed")
	}
	if count < 0 || count > k.capacity || count > k.last {
		return nil, fmt.Errorf("%w: %d (produced %d, capacity %d)",
			isoslice.ErrCountOutOfRange, count, k.last, k.capacity)
	}
	if count == 0 {
		return nil, nil
	}
	size := uint64(count) * segmentSize //nolint:gosec // count checked above
	err := k.submit("plane_segment_readback", func(enc hal.CommandEncoder) {
		enc.CopyBufferToBuffer(k.buf.segments, k.buf.segStaging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: size},
		})
	})
	if err != nil {
		return nil, err
	}
	raw := make([]byte, size)
	if err := k.queue.ReadBuffer(k.buf.segStaging, 0, raw); err != nil {
		return nil, fmt.Errorf("isoslice/gpu: read segments: %w", err)
	}
	return decodeSegments(raw, count), nil
}

// Close destroys the bind group and buffers. Close is idempotent.
func (k *IntersectKernel) Close() {
	if k.buf == nil {
		return
	}
	if k.bindGroup != nil {
		k.device.DestroyBindGroup(k.bindGroup)
		k.bindGroup = nil
	}
	k.buf.destroy(k.device)
	k.buf = nil
}

// submit records one command buffer, submits it and waits on a fence.
func (k *IntersectKernel) submit(label string, record func(hal.CommandEncoder)) error {
	encoder, err := k.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("isoslice/gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("isoslice/gpu: begin encoding: %w", err)
	}
	record(encoder)
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("isoslice/gpu: end encoding: %w", err)
	}
	defer k.device.FreeCommandBuffer(cmdBuf)

	fence, err := k.device.CreateFence()
	if err != nil {
		return fmt.Errorf("isoslice/gpu: create fence: %w", err)
	}
	defer k.device.DestroyFence(fence)
	if err := k.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("isoslice/gpu: submit %s: %w", label, err)
	}
	ok, err := k.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("isoslice/gpu: wait for %s: %w", label, err)
	}
	if !ok {
		return fmt.Errorf("isoslice/gpu: %s timed out after %v", label, fenceTimeout)
	}
	return nil
}

// encodeParams serializes the Params uniform.
func encodeParams(grid, capacity int, iso float32) []byte {
	b := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(grid))     //nolint:gosec // grid fits uint32
	binary.LittleEndian.PutUint32(b[4:], uint32(capacity)) //nolint:gosec // capacity fits uint32
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(iso))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(isoslice.NoData))
	return b
}

// encodeField writes samples into dst as little-endian float32.
func encodeField(dst []byte, field []float32) {
	for i, v := range field {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// decodeSegments reads count Segment records. The shader stores the in-plane
// axes only; they map to X and Z.
func decodeSegments(raw []byte, count int) []isoslice.Segment {
	f := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])))
	}
	out := make([]isoslice.Segment, count)
	for i := range out {
		o := i * segmentSize
		out[i] = isoslice.Segment{
			A: isoslice.Vec3{X: f(o), Z: f(o + 4)},
			B: isoslice.Vec3{X: f(o + 8), Z: f(o + 12)},
		}
	}
	return out
}
