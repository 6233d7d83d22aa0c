// Package memmgr provides the graphics-memory allocation contract the
// driver core consumes, together with an OS-agnostic host-backed
// implementation used by tools and tests.
package memmgr

import "github.com/lukaszgotszaldintel/compute-runtime/hwinfo"

// AllocationType classifies what a graphics allocation backs. The type
// decides placement and caching policy in a real memory manager.
type AllocationType int

const (
	AllocationUnknown AllocationType = iota
	AllocationBuffer
	AllocationCommandBuffer
	AllocationInternalHeap
	AllocationPrintfSurface
)

// Memory granularity constants for graphics allocations.
const (
	PageSize    = 4 << 10
	PageSize64K = 64 << 10
)

// AlignUp rounds value up to the next multiple of alignment, which must be
// a power of two.
func AlignUp(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}

// IsAligned reports whether value is a multiple of alignment (power of two).
func IsAligned(value, alignment int) bool {
	return value&(alignment-1) == 0
}

// AllocationProperties describes one allocation request.
type AllocationProperties struct {
	RootDeviceIndex       uint32
	Size                  int
	Alignment             int
	Type                  AllocationType
	MultiOsContextCapable bool
	DeviceBitfield        hwinfo.DeviceBitfield
}

// GraphicsAllocation is one block of device-visible memory. Instances are
// created by a MemoryManager and stay valid until freed through it.
type GraphicsAllocation struct {
	allocationType  AllocationType
	buffer          []byte
	gpuAddress      uint64
	rootDeviceIndex uint32
	deviceBitfield  hwinfo.DeviceBitfield
}

// NewGraphicsAllocation wraps an already materialized buffer. Memory
// managers call this; tests may use it to fabricate allocations.
func NewGraphicsAllocation(allocationType AllocationType, buffer []byte, gpuAddress uint64, rootDeviceIndex uint32, deviceBitfield hwinfo.DeviceBitfield) *GraphicsAllocation {
	return &GraphicsAllocation{
		allocationType:  allocationType,
		buffer:          buffer,
		gpuAddress:      gpuAddress,
		rootDeviceIndex: rootDeviceIndex,
		deviceBitfield:  deviceBitfield,
	}
}

// Type returns the allocation's type.
func (a *GraphicsAllocation) Type() AllocationType { return a.allocationType }

// UnderlyingBuffer returns the host-visible backing memory.
func (a *GraphicsAllocation) UnderlyingBuffer() []byte { return a.buffer }

// UnderlyingBufferSize returns the size of the backing memory in bytes.
func (a *GraphicsAllocation) UnderlyingBufferSize() int { return len(a.buffer) }

// GPUAddress returns the device virtual address of the allocation.
func (a *GraphicsAllocation) GPUAddress() uint64 { return a.gpuAddress }

// RootDeviceIndex returns the root device the allocation belongs to.
func (a *GraphicsAllocation) RootDeviceIndex() uint32 { return a.rootDeviceIndex }

// DeviceBitfield returns the partitions the allocation is visible to.
func (a *GraphicsAllocation) DeviceBitfield() hwinfo.DeviceBitfield { return a.deviceBitfield }
