// Package oscontext models the hardware execution context behind one
// engine: an immutable identity (engine type and usage, device affinity,
// preemption mode) plus a lazily materialized OS/hardware handle.
//
// Creating the underlying hardware context is expensive, and most engines
// on most devices are never used. The driver therefore supports deferring
// that creation until first use, except for contexts that driver startup
// itself depends on; see ImmediateContextInitializationRequired.
package oscontext

import (
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/debugflags"
	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
)

// OsInterface creates the OS/hardware-level context for an OsContext.
// A nil OsInterface means there is nothing to materialize (os-agnostic
// mode); EnsureInitialized then only flips the initialized bit.
type OsInterface interface {
	InitializeContext(ctx *OsContext) error
}

// OsContext binds an engine identity to a hardware execution context.
// The identity is fixed at creation; only the initialized state and the
// default-context flag change afterwards.
type OsContext struct {
	osInterface    OsInterface
	contextID      uint32
	deviceBitfield hwinfo.DeviceBitfield
	typeUsage      enginetypes.TypeUsage
	preemptionMode hwinfo.PreemptionMode
	rootDevice     bool

	defaultContext bool

	mu          sync.Mutex
	initialized bool
}

// Create returns a new, uninitialized OsContext. rootDevice marks contexts
// created by a root device on behalf of all its sub-devices.
func Create(osInterface OsInterface, contextID uint32, deviceBitfield hwinfo.DeviceBitfield,
	typeUsage enginetypes.TypeUsage, preemptionMode hwinfo.PreemptionMode, rootDevice bool) *OsContext {
	return &OsContext{
		osInterface:    osInterface,
		contextID:      contextID,
		deviceBitfield: deviceBitfield,
		typeUsage:      typeUsage,
		preemptionMode: preemptionMode,
		rootDevice:     rootDevice,
	}
}

// ImmediateContextInitializationRequired decides whether the context must
// be materialized at creation time rather than deferred to first use.
//
// Internal contexts and the device's default engine are load-bearing for
// driver startup and are always immediate. Everything else is immediate
// unless deferral is enabled in the flags.
func (c *OsContext) ImmediateContextInitializationRequired(flags debugflags.Flags, isDefaultEngine bool) bool {
	if c.typeUsage.Usage == enginetypes.UsageInternal {
		return true
	}
	if isDefaultEngine {
		return true
	}
	return !flags.DeferOsContextInitialization
}

// EnsureInitialized materializes the hardware context. The first
// successful call performs the creation; later calls are no-ops. A failed
// creation leaves the context uninitialized so the call can be retried.
func (c *OsContext) EnsureInitialized() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if c.osInterface != nil {
		if err := c.osInterface.InitializeContext(c); err != nil {
			return errors.Wrapf(err, "initializing context %d (%s/%s)",
				c.contextID, c.typeUsage.Type, c.typeUsage.Usage)
		}
	}
	c.initialized = true
	klog.V(2).Infof("Initialized context %d (%s/%s, bitfield %#b)",
		c.contextID, c.typeUsage.Type, c.typeUsage.Usage, c.deviceBitfield)
	return nil
}

// IsInitialized reports whether the hardware context has been created.
func (c *OsContext) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// ContextID returns the driver-wide id of the context.
func (c *OsContext) ContextID() uint32 { return c.contextID }

// DeviceBitfield returns the partitions the context is affine to.
func (c *OsContext) DeviceBitfield() hwinfo.DeviceBitfield { return c.deviceBitfield }

// EngineType returns the engine the context runs on.
func (c *OsContext) EngineType() enginetypes.EngineType { return c.typeUsage.Type }

// EngineUsage returns the usage class of the context.
func (c *OsContext) EngineUsage() enginetypes.EngineUsage { return c.typeUsage.Usage }

// PreemptionMode returns the preemption mode the context was created with.
func (c *OsContext) PreemptionMode() hwinfo.PreemptionMode { return c.preemptionMode }

// IsLowPriority reports whether the context runs at low priority.
func (c *OsContext) IsLowPriority() bool {
	return c.typeUsage.Usage == enginetypes.UsageLowPriority
}

// IsInternalEngine reports whether the context is for internal driver use.
func (c *OsContext) IsInternalEngine() bool {
	return c.typeUsage.Usage == enginetypes.UsageInternal
}

// IsRootDevice reports whether a root device created this context on
// behalf of its sub-devices.
func (c *OsContext) IsRootDevice() bool { return c.rootDevice }

// IsDefaultContext reports whether this is the device's default context.
func (c *OsContext) IsDefaultContext() bool { return c.defaultContext }

// SetDefaultContext marks or unmarks the context as the device default.
func (c *OsContext) SetDefaultContext(isDefault bool) { c.defaultContext = isDefault }
