package device

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
)

// ErrInvalidDeviceIndex is returned by DeviceByID for an index outside the
// device's available range. It signals a programming error in the caller.
var ErrInvalidDeviceIndex = errors.New("invalid device index")

// Device is one node of the accelerator topology tree: a root device, a
// generic sub-device (one tile) or an engine-instanced leaf. The tree owns
// its children; sub-devices keep a non-owning pointer back to their root,
// used only for the internal-reference delegation rule.
type Device struct {
	env *ExecutionEnvironment

	rootDeviceIndex uint32
	subDeviceIndex  uint32
	deviceBitfield  hwinfo.DeviceBitfield

	// root is nil for a root device.
	root       *Device
	subdevices []*Device

	engines []*Engine

	engineInstanced     bool
	engineInstancedType enginetypes.EngineType

	apiRefCount      atomic.Int32
	internalRefCount atomic.Int32

	debugSession DebugSession
	destroyed    atomic.Bool
}

// RootDeviceIndex returns the index of the physical accelerator this
// device (or its root) represents.
func (d *Device) RootDeviceIndex() uint32 { return d.rootDeviceIndex }

// SubDeviceIndex returns the device's index among its root's generic
// sub-devices. Only meaningful when IsSubDevice reports true; an
// engine-instanced leaf reports its generic parent's index.
func (d *Device) SubDeviceIndex() uint32 { return d.subDeviceIndex }

// IsSubDevice reports whether the device is a child of a root device.
func (d *Device) IsSubDevice() bool { return d.root != nil }

// DeviceBitfield returns the physical partitions this device represents.
// For any device with children it equals the union of the children's
// bitfields; engine-instanced leaves share their parent's bitfield.
func (d *Device) DeviceBitfield() hwinfo.DeviceBitfield { return d.deviceBitfield }

// NumSubDevices returns the number of immediate children.
func (d *Device) NumSubDevices() uint32 { return uint32(len(d.subdevices)) }

// NumAvailableDevices returns 1 for a leaf, otherwise the number of
// immediate children.
func (d *Device) NumAvailableDevices() uint32 {
	if len(d.subdevices) == 0 {
		return 1
	}
	return uint32(len(d.subdevices))
}

// DeviceByID returns the i-th child, or the device itself when it has no
// children and i is 0. Any other index is an ErrInvalidDeviceIndex.
func (d *Device) DeviceByID(i uint32) (*Device, error) {
	if len(d.subdevices) == 0 {
		if i == 0 {
			return d, nil
		}
		return nil, errors.Wrapf(ErrInvalidDeviceIndex, "index %d on a device without sub-devices", i)
	}
	if i >= uint32(len(d.subdevices)) {
		return nil, errors.Wrapf(ErrInvalidDeviceIndex, "index %d, device has %d sub-devices", i, len(d.subdevices))
	}
	return d.subdevices[i], nil
}

// hasGenericSubDevices reports whether the device's children are generic
// (tile) sub-devices as opposed to engine-instanced leaves.
func (d *Device) hasGenericSubDevices() bool {
	return len(d.subdevices) > 0 && !d.subdevices[0].engineInstanced
}

// EngineInstanced reports whether this device is an engine-instanced leaf.
func (d *Device) EngineInstanced() bool { return d.engineInstanced }

// InstancedEngineType returns the engine instance an engine-instanced leaf
// stands for; NumEngines for every other device.
func (d *Device) InstancedEngineType() enginetypes.EngineType { return d.engineInstancedType }

// HardwareInfo returns the static hardware description.
func (d *Device) HardwareInfo() *hwinfo.HardwareInfo { return d.env.HardwareInfo }

// Environment returns the shared execution environment.
func (d *Device) Environment() *ExecutionEnvironment { return d.env }

// rootDevice returns the root of the tree d belongs to.
func (d *Device) rootDevice() *Device {
	if d.root != nil {
		return d.root
	}
	return d
}

// AttachDebugSession attaches a hardware debug session to the device's
// root. Passing nil detaches.
func (d *Device) AttachDebugSession(session DebugSession) {
	d.rootDevice().debugSession = session
}

// DebugSession returns the debug session attached to the device's root,
// or nil.
func (d *Device) DebugSession() DebugSession {
	return d.rootDevice().debugSession
}

// RetainAPI takes an API reference on the device: its own apiRefCount and
// internalRefCount both grow by one. A sub-device additionally pins its
// root alive by taking one internal reference on it; the root's
// apiRefCount is never touched on a sub-device's behalf.
func (d *Device) RetainAPI() {
	d.apiRefCount.Add(1)
	d.internalRefCount.Add(1)
	if d.root != nil {
		d.root.internalRefCount.Add(1)
	}
}

// ReleaseAPI drops an API reference, exactly mirroring RetainAPI. When the
// root's combined counts reach zero the whole tree is destroyed.
func (d *Device) ReleaseAPI() {
	d.apiRefCount.Add(-1)
	d.internalRefCount.Add(-1)
	if d.root != nil {
		d.root.internalRefCount.Add(-1)
	}
	d.rootDevice().destroyIfUnreferenced()
}

// IncRefInternal takes an internal (driver-side) reference. A sub-device
// never accumulates internal keep-alive state of its own: the reference
// always lands on its root.
func (d *Device) IncRefInternal() {
	d.rootDevice().internalRefCount.Add(1)
}

// DecRefInternal drops an internal reference from the root; when the
// root's combined counts reach zero the whole tree is destroyed.
func (d *Device) DecRefInternal() {
	root := d.rootDevice()
	root.internalRefCount.Add(-1)
	root.destroyIfUnreferenced()
}

// APIRefCount returns the device's own API reference count.
func (d *Device) APIRefCount() int32 { return d.apiRefCount.Load() }

// InternalRefCount returns the device's own internal reference count.
func (d *Device) InternalRefCount() int32 { return d.internalRefCount.Load() }

func (d *Device) destroyIfUnreferenced() {
	if d.root != nil {
		return
	}
	if d.apiRefCount.Load()+d.internalRefCount.Load() > 0 {
		return
	}
	d.destroyResources()
}

// destroyResources frees every engine allocation in the tree. It runs at
// most once; later calls are no-ops.
func (d *Device) destroyResources() {
	if !d.destroyed.CompareAndSwap(false, true) {
		return
	}
	for _, sub := range d.subdevices {
		sub.destroyResources()
	}
	for _, engine := range d.engines {
		if engine.internalHeap != nil {
			d.env.MemoryManager.FreeGraphicsMemory(engine.internalHeap)
			engine.internalHeap = nil
		}
	}
	d.engines = nil
	if d.root == nil {
		klog.V(1).Infof("Destroyed root device %d", d.rootDeviceIndex)
	}
}
