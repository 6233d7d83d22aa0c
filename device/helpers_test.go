package device

// Common setup for the device topology tests.

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/debugflags"
	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
)

func init() {
	klog.InitFlags(nil)
}

// countingMemoryManager wraps another manager and tracks the number of
// live allocations, so tests can assert balanced teardown.
type countingMemoryManager struct {
	inner memmgr.MemoryManager

	mu        sync.Mutex
	allocated int
	freed     int
}

func newCountingMemoryManager() *countingMemoryManager {
	return &countingMemoryManager{inner: memmgr.NewOsAgnosticMemoryManager()}
}

func (m *countingMemoryManager) AllocateGraphicsMemoryWithProperties(properties memmgr.AllocationProperties) (*memmgr.GraphicsAllocation, error) {
	allocation, err := m.inner.AllocateGraphicsMemoryWithProperties(properties)
	if err == nil {
		m.mu.Lock()
		m.allocated++
		m.mu.Unlock()
	}
	return allocation, err
}

func (m *countingMemoryManager) FreeGraphicsMemory(allocation *memmgr.GraphicsAllocation) {
	if allocation != nil {
		m.mu.Lock()
		m.freed++
		m.mu.Unlock()
	}
	m.inner.FreeGraphicsMemory(allocation)
}

func (m *countingMemoryManager) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocated - m.freed
}

func defaultTestHwInfo(ccsCount uint32) *hwinfo.HardwareInfo {
	return &hwinfo.HardwareInfo{
		Family:       hwinfo.ProductTGLLP,
		GtSystemInfo: hwinfo.GtSystemInfo{CCSCount: ccsCount},
		CapabilityTable: hwinfo.CapabilityTable{
			DefaultEngineType:     enginetypes.EngineRCS,
			DefaultPreemptionMode: hwinfo.PreemptionMidThread,
		},
	}
}

func newTestEnv(flags debugflags.Flags, ccsCount uint32) *ExecutionEnvironment {
	return &ExecutionEnvironment{
		MemoryManager: memmgr.NewOsAgnosticMemoryManager(),
		HardwareInfo:  defaultTestHwInfo(ccsCount),
		Flags:         flags,
	}
}
