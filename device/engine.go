package device

import (
	"github.com/pkg/errors"

	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
	"github.com/lukaszgotszaldintel/compute-runtime/oscontext"
)

// Engine pairs one execution context with the submission channel that
// feeds it. Engines are owned by exactly one device.
type Engine struct {
	OsContext             *oscontext.OsContext
	CommandStreamReceiver csr.CommandStreamReceiver

	// internalHeap backs per-engine driver state (scratch, preemption
	// buffers). Freed when the owning device is destroyed.
	internalHeap *memmgr.GraphicsAllocation
}

const engineInternalHeapSize = 4 * memmgr.PageSize

// createEngine builds one engine on d. isRootContext marks the aggregated
// context a root device creates on behalf of its sub-devices; isDefault
// marks the device's designated default engine, which forces immediate
// context initialization.
func (d *Device) createEngine(typeUsage enginetypes.TypeUsage, isRootContext, isDefault bool) (*Engine, error) {
	env := d.env
	osContext := oscontext.Create(env.OsInterface, env.allocateContextID(), d.deviceBitfield,
		typeUsage, env.HardwareInfo.CapabilityTable.DefaultPreemptionMode, isRootContext)
	osContext.SetDefaultContext(isDefault)

	if osContext.ImmediateContextInitializationRequired(env.Flags, isDefault) {
		if err := osContext.EnsureInitialized(); err != nil {
			return nil, err
		}
	}

	receiver, err := env.newCSR(osContext)
	if err != nil {
		return nil, errors.Wrapf(err, "creating command stream receiver for %s/%s", typeUsage.Type, typeUsage.Usage)
	}

	heap, err := env.MemoryManager.AllocateGraphicsMemoryWithProperties(memmgr.AllocationProperties{
		RootDeviceIndex: d.rootDeviceIndex,
		Size:            engineInternalHeapSize,
		Type:            memmgr.AllocationInternalHeap,
		DeviceBitfield:  d.deviceBitfield,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "allocating internal heap for engine %s/%s", typeUsage.Type, typeUsage.Usage)
	}

	engine := &Engine{
		OsContext:             osContext,
		CommandStreamReceiver: receiver,
		internalHeap:          heap,
	}
	d.engines = append(d.engines, engine)
	return engine, nil
}

// createEngines builds the engine set for d per the topology rules: a root
// device with generic sub-devices only creates the aggregated special
// engine; everything else creates the full per-platform generic set. An
// engine-instanced leaf creates the single engine it stands for.
func (d *Device) createEngines() error {
	if d.engineInstanced {
		_, err := d.createEngine(
			enginetypes.TypeUsage{Type: d.engineInstancedType, Usage: enginetypes.UsageRegular},
			false, true)
		return err
	}

	if !d.IsSubDevice() && d.hasGenericSubDevices() {
		// Cross-sub-device operations go through a single aggregated engine;
		// the real engines belong to the sub-devices.
		_, err := d.createEngine(
			enginetypes.TypeUsage{Type: enginetypes.EngineCCCS, Usage: enginetypes.UsageRegular},
			true, true)
		return err
	}

	defaultType := d.env.HardwareInfo.CapabilityTable.DefaultEngineType
	for _, typeUsage := range hwinfo.GpgpuEngineInstances(d.env.HardwareInfo) {
		isDefault := typeUsage.Type == defaultType && typeUsage.Usage == enginetypes.UsageRegular
		if _, err := d.createEngine(typeUsage, false, isDefault); err != nil {
			return err
		}
	}
	return nil
}

// Engines returns the engines owned by this device instance.
func (d *Device) Engines() []*Engine { return d.engines }

// DefaultEngine returns the device's designated default engine, or nil if
// the device owns no engines.
func (d *Device) DefaultEngine() *Engine {
	for _, engine := range d.engines {
		if engine.OsContext.IsDefaultContext() {
			return engine
		}
	}
	return nil
}

// EngineByTypeUsage returns the device's engine matching typeUsage.
func (d *Device) EngineByTypeUsage(typeUsage enginetypes.TypeUsage) (*Engine, error) {
	for _, engine := range d.engines {
		if engine.OsContext.EngineType() == typeUsage.Type && engine.OsContext.EngineUsage() == typeUsage.Usage {
			return engine, nil
		}
	}
	return nil, errors.Errorf("device %d has no engine %s/%s", d.rootDeviceIndex, typeUsage.Type, typeUsage.Usage)
}
