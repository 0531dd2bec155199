package isoslice

import (
	"errors"
	"sync"
	"testing"
)

// mockAccelerator implements KernelAccelerator for testing.
type mockAccelerator struct {
	name      string
	initErr   error
	kernelErr error
	closed    bool
	kernels   int
	mu        sync.Mutex
}

func (m *mockAccelerator) Name() string { return m.name }

func (m *mockAccelerator) Init() error { return m.initErr }

func (m *mockAccelerator) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *mockAccelerator) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// NewKernel hands out a CPU kernel under the accelerator's name so tests can
// tell which path a plane took.
func (m *mockAccelerator) NewKernel(metrics Metrics) (Kernel, error) {
	if m.kernelErr != nil {
		return nil, m.kernelErr
	}
	m.mu.Lock()
	m.kernels++
	m.mu.Unlock()
	return &namedKernel{Kernel: NewCPUKernel(metrics), name: m.name}, nil
}

type namedKernel struct {
	Kernel
	name string
}

func (k *namedKernel) Name() string { return k.name }

// resetAccelerator clears the global accelerator state between tests.
func resetAccelerator() {
	accelMu.Lock()
	accel = nil
	accelMu.Unlock()
}

func TestRegisterAcceleratorNil(t *testing.T) {
	resetAccelerator()

	err := RegisterAccelerator(nil)
	if err == nil {
		t.Fatal("expected error when registering nil accelerator")
	}
	if err.Error() != "isoslice: accelerator must not be nil" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if Accelerator() != nil {
		t.Error("accelerator should remain nil after failed registration")
	}
}

func TestRegisterAcceleratorInitError(t *testing.T) {
	resetAccelerator()

	initErr := errors.New("GPU init failed")
	mock := &mockAccelerator{name: "failing", initErr: initErr}

	err := RegisterAccelerator(mock)
	if err == nil {
		t.Fatal("expected error when Init fails")
	}
	if !errors.Is(err, initErr) {
		t.Errorf("expected init error, got: %v", err)
	}
	if Accelerator() != nil {
		t.Error("accelerator should remain nil after Init failure")
	}
}

func TestRegisterAcceleratorSuccess(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	mock := &mockAccelerator{name: "test-gpu"}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := Accelerator()
	if a == nil {
		t.Fatal("expected non-nil accelerator after registration")
	}
	if a.Name() != "test-gpu" {
		t.Errorf("expected name %q, got %q", "test-gpu", a.Name())
	}
}

func TestRegisterAcceleratorReplacesOld(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	first := &mockAccelerator{name: "first"}
	second := &mockAccelerator{name: "second"}

	if err := RegisterAccelerator(first); err != nil {
		t.Fatalf("unexpected error registering first: %v", err)
	}
	if err := RegisterAccelerator(second); err != nil {
		t.Fatalf("unexpected error registering second: %v", err)
	}

	if !first.isClosed() {
		t.Error("expected first accelerator to be closed after replacement")
	}
	if a := Accelerator(); a == nil || a.Name() != "second" {
		t.Errorf("expected accelerator %q, got %v", "second", a)
	}
	if second.isClosed() {
		t.Error("second accelerator should not be closed")
	}
}

func TestAcceleratorReturnsNilWhenNoneRegistered(t *testing.T) {
	resetAccelerator()

	if a := Accelerator(); a != nil {
		t.Errorf("expected nil accelerator, got %v", a)
	}
}

func TestNewKernelSelection(t *testing.T) {
	tests := []struct {
		name     string
		accel    *mockAccelerator
		forceCPU bool
		want     string
	}{
		{"none registered", nil, false, "cpu"},
		{"accelerated", &mockAccelerator{name: "mock-gpu"}, false, "mock-gpu"},
		{"forced cpu", &mockAccelerator{name: "mock-gpu"}, true, "cpu"},
		{"fallback sentinel", &mockAccelerator{name: "mock-gpu", kernelErr: ErrFallbackToCPU}, false, "cpu"},
		{"allocation failure", &mockAccelerator{name: "mock-gpu", kernelErr: errors.New("out of memory")}, false, "cpu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAccelerator()
			t.Cleanup(resetAccelerator)
			if tt.accel != nil {
				if err := RegisterAccelerator(tt.accel); err != nil {
					t.Fatalf("RegisterAccelerator: %v", err)
				}
			}

			k := newKernel(DefaultMetrics(), tt.forceCPU)
			defer k.Close()
			if k.Name() != tt.want {
				t.Errorf("kernel = %q, want %q", k.Name(), tt.want)
			}
		})
	}
}

func TestSetAcceleratorDeviceProviderNoAccelerator(t *testing.T) {
	resetAccelerator()

	if err := SetAcceleratorDeviceProvider(nil); err != nil {
		t.Errorf("SetAcceleratorDeviceProvider() = %v, want nil", err)
	}
}

func TestSetAcceleratorDeviceProviderNotAware(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	if err := RegisterAccelerator(&mockAccelerator{name: "plain"}); err != nil {
		t.Fatal(err)
	}
	if err := SetAcceleratorDeviceProvider(nil); err != nil {
		t.Errorf("SetAcceleratorDeviceProvider() = %v, want nil", err)
	}
}

func TestErrFallbackToCPU(t *testing.T) {
	if ErrFallbackToCPU == nil {
		t.Fatal("ErrFallbackToCPU should not be nil")
	}
	wrapped := errors.Join(errors.New("context"), ErrFallbackToCPU)
	if !errors.Is(wrapped, ErrFallbackToCPU) {
		t.Error("wrapped error should match ErrFallbackToCPU")
	}
}

func BenchmarkAcceleratorNilCheck(b *testing.B) {
	resetAccelerator()
	b.ReportAllocs()
	for b.Loop() {
		_ = Accelerator()
	}
}
