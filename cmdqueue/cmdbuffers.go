package cmdqueue

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/device"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
)

type bufferAllocation int

const (
	firstBuffer bufferAllocation = iota
	secondBuffer
)

// commandBufferManager double-buffers a queue's command stream. While the
// device consumes one buffer the host fills the other; reusing a buffer is
// gated on the flush stamp of its previous submission, which is the sole
// thing keeping the host from overwriting commands still executing.
type commandBufferManager struct {
	buffers   [2]*memmgr.GraphicsAllocation
	flushID   [2]csr.FlushStamp
	bufferUse bufferAllocation
}

// initialize allocates both buffers, rounded up to the 64K allocation
// granularity and zero-filled. If either allocation fails, whatever was
// obtained is released and the failure surfaces as out-of-device-memory.
func (m *commandBufferManager) initialize(dev *device.Device, sizeRequested int) error {
	alignedSize := memmgr.AlignUp(sizeRequested, memmgr.PageSize64K)
	properties := memmgr.AllocationProperties{
		RootDeviceIndex:       dev.RootDeviceIndex(),
		Size:                  alignedSize,
		Type:                  memmgr.AllocationCommandBuffer,
		MultiOsContextCapable: dev.NumAvailableDevices() > 1,
		DeviceBitfield:        dev.DeviceBitfield(),
	}
	memoryManager := dev.Environment().MemoryManager

	var err error
	m.buffers[firstBuffer], err = memoryManager.AllocateGraphicsMemoryWithProperties(properties)
	if err == nil {
		m.buffers[secondBuffer], err = memoryManager.AllocateGraphicsMemoryWithProperties(properties)
	}
	if err != nil {
		m.destroy(memoryManager)
		return errors.WithMessagef(memmgr.ErrOutOfDeviceMemory, "command buffer allocation of %d bytes: %v", alignedSize, err)
	}

	clear(m.buffers[firstBuffer].UnderlyingBuffer())
	clear(m.buffers[secondBuffer].UnderlyingBuffer())
	m.flushID[firstBuffer] = 0
	m.flushID[secondBuffer] = 0
	m.bufferUse = firstBuffer
	return nil
}

// destroy releases both buffers unconditionally, even if one was never
// written to.
func (m *commandBufferManager) destroy(memoryManager memmgr.MemoryManager) {
	for i := range m.buffers {
		if m.buffers[i] != nil {
			memoryManager.FreeGraphicsMemory(m.buffers[i])
			m.buffers[i] = nil
		}
	}
}

func (m *commandBufferManager) currentBufferAllocation() *memmgr.GraphicsAllocation {
	return m.buffers[m.bufferUse]
}

// switchBuffers toggles the active buffer. If the newly active buffer was
// submitted before, the call blocks until the device confirms that
// submission complete; a zero stamp means the buffer was never used and no
// wait occurs. The wait is unconditional and unbounded: skipping it would
// let the host overwrite commands the device may still be executing.
func (m *commandBufferManager) switchBuffers(receiver csr.CommandStreamReceiver) error {
	if m.bufferUse == firstBuffer {
		m.bufferUse = secondBuffer
	} else {
		m.bufferUse = firstBuffer
	}

	completionID := m.flushID[m.bufferUse]
	if completionID != 0 {
		klog.V(3).Infof("Switching command buffers, waiting for flush stamp %d", completionID)
		if err := receiver.WaitForFlushStamp(completionID); err != nil {
			return errors.WithMessagef(err, "waiting for flush stamp %d before buffer reuse", completionID)
		}
	}
	return nil
}

func (m *commandBufferManager) setCurrentFlushStamp(stamp csr.FlushStamp) {
	m.flushID[m.bufferUse] = stamp
}
