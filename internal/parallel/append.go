package parallel

import "sync/atomic"

// AppendBuffer is a fixed-capacity output buffer paired with an atomically
// incremented index. Concurrent producers call Append; each successful call
// owns a distinct slot. Appends beyond capacity are dropped silently, and the
// counter keeps counting so callers can observe the overflow.
//
// Reset and Items must not run concurrently with Append.
type AppendBuffer[T any] struct {
	items   []T
	counter atomic.Uint32
}

// NewAppendBuffer allocates a buffer with room for capacity items.
func NewAppendBuffer[T any](capacity int) *AppendBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &AppendBuffer[T]{items: make([]T, capacity)}
}

// Append reserves the next slot and writes v into it. It reports whether the
// value was stored.
func (b *AppendBuffer[T]) Append(v T) bool {
	idx := b.counter.Add(1) - 1
	if int(idx) >= len(b.items) {
		return false
	}
	b.items[idx] = v
	return true
}

// Reset sets the counter back to zero. Slot contents are left in place and
// are overwritten by later appends.
func (b *AppendBuffer[T]) Reset() {
	b.counter.Store(0)
}

// Count returns the number of stored items, clamped to the capacity.
func (b *AppendBuffer[T]) Count() int {
	n := int(b.counter.Load())
	if n > len(b.items) {
		return len(b.items)
	}
	return n
}

// Attempted returns the raw counter value, including dropped appends.
func (b *AppendBuffer[T]) Attempted() int {
	return int(b.counter.Load())
}

// Cap returns the fixed capacity.
func (b *AppendBuffer[T]) Cap() int {
	return len(b.items)
}

// Items returns a copy of the first n stored items. n is clamped to Count.
func (b *AppendBuffer[T]) Items(n int) []T {
	if c := b.Count(); n > c {
		n = c
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, b.items[:n])
	return out
}
