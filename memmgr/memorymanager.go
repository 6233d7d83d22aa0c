package memmgr

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrOutOfDeviceMemory is returned when the device cannot satisfy an
// allocation request. It is never silently retried by the core.
var ErrOutOfDeviceMemory = errors.New("out of device memory")

// MemoryManager is the allocator contract the driver core consumes. The
// real implementations (ioctl-backed) live outside this module.
type MemoryManager interface {
	// AllocateGraphicsMemoryWithProperties returns a zero-filled allocation
	// of at least properties.Size bytes, aligned to properties.Alignment
	// (PageSize when zero). Failure surfaces ErrOutOfDeviceMemory.
	AllocateGraphicsMemoryWithProperties(properties AllocationProperties) (*GraphicsAllocation, error)

	// FreeGraphicsMemory releases an allocation. Freeing nil is a no-op.
	FreeGraphicsMemory(allocation *GraphicsAllocation)
}

// OsAgnosticMemoryManager is a host-backed MemoryManager: allocations are
// plain zero-filled slices with fabricated, monotonically increasing GPU
// addresses. It backs tools and tests; it performs no device transport.
type OsAgnosticMemoryManager struct {
	mu          sync.Mutex
	nextAddress uint64
}

// NewOsAgnosticMemoryManager returns an empty host-backed manager.
func NewOsAgnosticMemoryManager() *OsAgnosticMemoryManager {
	// Fake GPU addresses start away from zero so a zeroed address is
	// recognizable as "never assigned".
	return &OsAgnosticMemoryManager{nextAddress: 1 << 32}
}

// AllocateGraphicsMemoryWithProperties implements MemoryManager.
func (m *OsAgnosticMemoryManager) AllocateGraphicsMemoryWithProperties(properties AllocationProperties) (*GraphicsAllocation, error) {
	if properties.Size <= 0 {
		return nil, errors.Errorf("invalid allocation size %d", properties.Size)
	}
	alignment := properties.Alignment
	if alignment == 0 {
		alignment = PageSize
	}
	size := AlignUp(properties.Size, alignment)

	m.mu.Lock()
	gpuAddress := m.nextAddress
	m.nextAddress += uint64(size)
	m.mu.Unlock()

	buffer := make([]byte, size)
	return NewGraphicsAllocation(properties.Type, buffer, gpuAddress, properties.RootDeviceIndex, properties.DeviceBitfield), nil
}

// FreeGraphicsMemory implements MemoryManager.
func (m *OsAgnosticMemoryManager) FreeGraphicsMemory(allocation *GraphicsAllocation) {
	if allocation == nil {
		return
	}
	allocation.buffer = nil
}

// FailMemoryManager wraps another manager and fails the N-th allocation
// (and all later ones) with ErrOutOfDeviceMemory. It exists to exercise
// partial-construction unwinding.
type FailMemoryManager struct {
	inner     MemoryManager
	remaining int
}

// NewFailMemoryManager returns a manager that satisfies failAfter
// allocations through inner before failing.
func NewFailMemoryManager(failAfter int, inner MemoryManager) *FailMemoryManager {
	return &FailMemoryManager{inner: inner, remaining: failAfter}
}

// AllocateGraphicsMemoryWithProperties implements MemoryManager.
func (m *FailMemoryManager) AllocateGraphicsMemoryWithProperties(properties AllocationProperties) (*GraphicsAllocation, error) {
	if m.remaining <= 0 {
		return nil, errors.WithStack(ErrOutOfDeviceMemory)
	}
	m.remaining--
	return m.inner.AllocateGraphicsMemoryWithProperties(properties)
}

// FreeGraphicsMemory implements MemoryManager.
func (m *FailMemoryManager) FreeGraphicsMemory(allocation *GraphicsAllocation) {
	m.inner.FreeGraphicsMemory(allocation)
}
