// Package hwinfo describes the static hardware configuration of one
// accelerator: its product family, the enabled engine instances and the
// per-platform capability table the rest of the driver core keys off.
package hwinfo

import (
	"math/bits"

	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
)

// DeviceBitfield is the set of physical partition (tile) indices a device
// instance represents. Bit i set means partition i belongs to the device.
type DeviceBitfield uint64

// Count returns the number of partitions in the set.
func (b DeviceBitfield) Count() int {
	return bits.OnesCount64(uint64(b))
}

// Test reports whether partition i is in the set.
func (b DeviceBitfield) Test(i uint32) bool {
	return b&(1<<i) != 0
}

// Union returns the set union of b and other.
func (b DeviceBitfield) Union(other DeviceBitfield) DeviceBitfield {
	return b | other
}

// BitfieldForSubDevices returns the bitfield covering sub-devices 0..n-1.
func BitfieldForSubDevices(n uint32) DeviceBitfield {
	if n == 0 {
		n = 1
	}
	return DeviceBitfield(1<<n - 1)
}

// PreemptionMode selects how far the hardware is allowed to preempt
// in-flight work on a context.
type PreemptionMode int

const (
	PreemptionDisabled PreemptionMode = iota
	PreemptionMidBatch
	PreemptionThreadGroup
	PreemptionMidThread
)

// GtSystemInfo carries the engine-instance counts reported by the hardware.
type GtSystemInfo struct {
	// CCSCount is the number of compute command streamers enabled.
	CCSCount uint32
}

// CapabilityTable holds the per-platform defaults the topology layer needs.
type CapabilityTable struct {
	DefaultEngineType     enginetypes.EngineType
	DefaultPreemptionMode PreemptionMode
}

// HardwareInfo is the static description of one accelerator.
type HardwareInfo struct {
	Family          ProductFamily
	GtSystemInfo    GtSystemInfo
	CapabilityTable CapabilityTable
}

// GpgpuEngineInstances returns the generic engine set a device without
// sub-devices creates: the default engine, a low-priority and an internal
// alias of it, and one regular context per enabled compute engine instance.
func GpgpuEngineInstances(hwInfo *HardwareInfo) []enginetypes.TypeUsage {
	defaultType := hwInfo.CapabilityTable.DefaultEngineType
	engines := []enginetypes.TypeUsage{
		{Type: defaultType, Usage: enginetypes.UsageRegular},
		{Type: defaultType, Usage: enginetypes.UsageLowPriority},
		{Type: defaultType, Usage: enginetypes.UsageInternal},
	}
	for i := uint32(0); i < hwInfo.GtSystemInfo.CCSCount; i++ {
		engineType := enginetypes.ComputeEngineInstance(i)
		if engineType == defaultType {
			continue
		}
		engines = append(engines, enginetypes.TypeUsage{Type: engineType, Usage: enginetypes.UsageRegular})
	}
	return engines
}
