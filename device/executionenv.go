// Package device implements the accelerator topology: root devices, their
// generic and engine-instanced sub-devices, the engines each one exposes,
// and the two-counter reference-counting rules tying their lifetimes
// together.
package device

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/debugflags"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
	"github.com/lukaszgotszaldintel/compute-runtime/oscontext"
)

// CSRFactory creates the submission channel for one execution context.
type CSRFactory func(osContext *oscontext.OsContext) (csr.CommandStreamReceiver, error)

// ExecutionEnvironment bundles the external collaborators device creation
// needs: the allocator, the hardware description, the debug flags and the
// factories for OS contexts and submission channels. One environment is
// shared by all devices of one process.
type ExecutionEnvironment struct {
	MemoryManager memmgr.MemoryManager
	HardwareInfo  *hwinfo.HardwareInfo
	Flags         debugflags.Flags

	// OsInterface materializes hardware contexts; nil runs os-agnostic.
	OsInterface oscontext.OsInterface

	// NewCommandStreamReceiver creates the submission channel per engine;
	// nil falls back to the in-process csr.HostCSR.
	NewCommandStreamReceiver CSRFactory

	nextContextID atomic.Uint32
}

func (e *ExecutionEnvironment) validate() error {
	if e.MemoryManager == nil {
		return errors.New("execution environment without memory manager")
	}
	if e.HardwareInfo == nil {
		return errors.New("execution environment without hardware info")
	}
	return nil
}

// allocateContextID hands out process-wide unique context ids.
func (e *ExecutionEnvironment) allocateContextID() uint32 {
	return e.nextContextID.Add(1) - 1
}

func (e *ExecutionEnvironment) newCSR(osContext *oscontext.OsContext) (csr.CommandStreamReceiver, error) {
	if e.NewCommandStreamReceiver != nil {
		return e.NewCommandStreamReceiver(osContext)
	}
	return csr.NewHostCSR(osContext), nil
}

// DebugSession is a hardware debug session attached to a root device. It
// is optional and only ever consulted for side observations.
type DebugSession interface {
	IsAttached() bool
	ReportTrackedAddresses(contextID uint32)
}
