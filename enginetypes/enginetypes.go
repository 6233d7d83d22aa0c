// Package enginetypes defines the hardware engine identities and usage
// classes used across the driver core.
//
// An engine is one hardware command streamer on the accelerator: the render
// engine (RCS), the copy engine (BCS) or one of the compute engines (CCS).
// Every execution context created by the driver binds to exactly one
// EngineType together with an EngineUsage describing what the context is
// for (regular client work, low-priority work or internal driver
// bookkeeping).
package enginetypes

// EngineType identifies one hardware command streamer.
type EngineType int

//go:generate go tool enumer -type EngineType enginetypes.go

const (
	// EngineRCS is the render/3D command streamer.
	EngineRCS EngineType = iota

	// EngineBCS is the blitter (copy) command streamer.
	EngineBCS

	// EngineCCS is the first compute command streamer. Additional compute
	// engine instances follow contiguously so that EngineCCS+i addresses the
	// i-th instance.
	EngineCCS
	EngineCCS1
	EngineCCS2
	EngineCCS3

	// EngineCCCS is the aggregated compute engine exposed by a root device
	// whose work spans all of its sub-devices.
	EngineCCCS

	// NumEngines is a sentinel. A device that does not represent a single
	// engine instance reports NumEngines as its instanced engine type.
	NumEngines
)

// ComputeEngineInstance returns the engine type of the i-th compute engine
// instance.
func ComputeEngineInstance(i uint32) EngineType {
	return EngineCCS + EngineType(i)
}

// IsComputeCapable reports whether the engine type is one of the compute
// command streamers (including the aggregated one).
func (i EngineType) IsComputeCapable() bool {
	return (i >= EngineCCS && i <= EngineCCS3) || i == EngineCCCS
}
