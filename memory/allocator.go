package memory

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrOutOfMemory indicates that an allocation would exceed the allocator's
// configured limit.
//
// The limit and requested size can be accessed via errors.As.
type ErrOutOfMemory struct {
	Requested int64
	Limit     int64
}

func (e *ErrOutOfMemory) Error() string {
	return fmt.Sprintf("out of memory: requested %d bytes, limit %d bytes", e.Requested, e.Limit)
}

// Allocator hands out reference-counted buffers and tracks their total size.
//
// If a limit is configured, allocations that would exceed it fail with
// ErrOutOfMemory. Allocation never blocks.
type Allocator struct {
	limit  int64
	sem    *semaphore.Weighted // nil if unlimited
	used   atomic.Int64
	logger *slog.Logger
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithLimit sets a hard limit for allocated bytes. If limit <= 0, no limit
// is enforced (only tracking).
func WithLimit(limit int64) AllocatorOption {
	return func(a *Allocator) {
		a.limit = limit
	}
}

// WithLogger sets the logger used to report allocation failures.
func WithLogger(logger *slog.Logger) AllocatorOption {
	return func(a *Allocator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAllocator creates a new Allocator.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	if a.limit > 0 {
		a.sem = semaphore.NewWeighted(a.limit)
	}
	return a
}

// Allocate reserves size bytes and returns a zero-filled buffer.
//
// On failure no memory is reserved; the returned error satisfies
// errors.As(&ErrOutOfMemory{}).
func (a *Allocator) Allocate(size int) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("allocate: negative size %d", size)
	}
	if a.sem != nil && size > 0 {
		if !a.sem.TryAcquire(int64(size)) {
			if a.logger != nil {
				a.logger.Warn("allocation failed",
					"requested", size,
					"limit", a.limit,
					"used", a.used.Load())
			}
			return nil, &ErrOutOfMemory{Requested: int64(size), Limit: a.limit}
		}
	}
	a.used.Add(int64(size))

	b := &Buffer{data: make([]byte, size)}
	b.root = &bufferRoot{alloc: a, size: int64(size)}
	b.root.refs.Store(1)
	return b, nil
}

// AllocatedBytes returns the number of currently allocated bytes.
func (a *Allocator) AllocatedBytes() int64 {
	if a == nil {
		return 0
	}
	return a.used.Load()
}

// Limit returns the configured byte limit, or 0 if unlimited.
func (a *Allocator) Limit() int64 {
	if a == nil {
		return 0
	}
	return a.limit
}

func (a *Allocator) release(size int64) {
	if a == nil || size <= 0 {
		return
	}
	if a.sem != nil {
		a.sem.Release(size)
	}
	a.used.Add(-size)
}
