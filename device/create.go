package device

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
)

// NewRootDevice creates the topology for one physical accelerator.
//
// The sub-device layout follows the flags in env: CreateMultipleSubDevices
// requests that many generic sub-devices, each owning one bit of the
// root's bitfield; EngineInstancedSubDevices additionally exposes one leaf
// per enabled compute engine instance when the hardware reports more than
// one. Creation is atomic: if any sub-device or engine fails to come up,
// everything already built is torn down and the error is returned.
//
// The returned device carries one internal reference owned by the caller;
// drop it with DecRefInternal when done.
func NewRootDevice(env *ExecutionEnvironment, rootDeviceIndex uint32) (*Device, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}

	numSubDevices := env.Flags.CreateMultipleSubDevices
	ccsCount := env.HardwareInfo.GtSystemInfo.CCSCount
	engineInstancing := env.Flags.EngineInstancedSubDevices && ccsCount > 1

	root := &Device{
		env:                 env,
		rootDeviceIndex:     rootDeviceIndex,
		deviceBitfield:      hwinfo.BitfieldForSubDevices(numSubDevices),
		engineInstancedType: enginetypes.NumEngines,
	}
	root.internalRefCount.Store(1)

	if err := root.createDeviceImpl(numSubDevices, engineInstancing, ccsCount); err != nil {
		root.destroyResources()
		return nil, errors.WithMessagef(err, "creating root device %d", rootDeviceIndex)
	}

	klog.V(1).Infof("Created root device %d: %d sub-devices, bitfield %#b, engine instancing %t",
		rootDeviceIndex, root.NumSubDevices(), root.deviceBitfield, engineInstancing)
	return root, nil
}

func (d *Device) createDeviceImpl(numSubDevices uint32, engineInstancing bool, ccsCount uint32) error {
	if numSubDevices > 1 {
		if err := d.createSubDevices(numSubDevices, engineInstancing, ccsCount); err != nil {
			return err
		}
	} else if engineInstancing {
		if err := d.createEngineInstancedSubDevices(ccsCount); err != nil {
			return err
		}
	}
	return d.createEngines()
}

// createSubDevices builds the generic sub-devices of a root, each assigned
// a distinct singleton bit of the root's bitfield and a subDeviceIndex in
// creation order.
func (d *Device) createSubDevices(count uint32, engineInstancing bool, ccsCount uint32) error {
	for i := uint32(0); i < count; i++ {
		sub := &Device{
			env:                 d.env,
			rootDeviceIndex:     d.rootDeviceIndex,
			subDeviceIndex:      i,
			deviceBitfield:      hwinfo.DeviceBitfield(1) << i,
			root:                d,
			engineInstancedType: enginetypes.NumEngines,
		}
		// Attach before building so a failure mid-build still tears the
		// partial sub-device down through the root.
		d.subdevices = append(d.subdevices, sub)
		if engineInstancing {
			if err := sub.createEngineInstancedSubDevices(ccsCount); err != nil {
				return errors.WithMessagef(err, "sub-device %d", i)
			}
		}
		if err := sub.createEngines(); err != nil {
			return errors.WithMessagef(err, "sub-device %d", i)
		}
	}
	return nil
}

// createEngineInstancedSubDevices builds one leaf per compute engine
// instance. A leaf borrows its parent's bitfield and subDeviceIndex and
// carries only the engine identity.
func (d *Device) createEngineInstancedSubDevices(ccsCount uint32) error {
	for i := uint32(0); i < ccsCount; i++ {
		leaf := &Device{
			env:                 d.env,
			rootDeviceIndex:     d.rootDeviceIndex,
			subDeviceIndex:      d.subDeviceIndex,
			deviceBitfield:      d.deviceBitfield,
			root:                d.rootDevice(),
			engineInstanced:     true,
			engineInstancedType: enginetypes.ComputeEngineInstance(i),
		}
		d.subdevices = append(d.subdevices, leaf)
		if err := leaf.createEngines(); err != nil {
			return errors.WithMessagef(err, "engine-instanced sub-device %s", leaf.engineInstancedType)
		}
	}
	return nil
}
