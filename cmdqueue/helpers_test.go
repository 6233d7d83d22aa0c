package cmdqueue

// Shared fixtures for the command queue tests: a recording command stream
// receiver and a host-backed device.

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/debugflags"
	"github.com/lukaszgotszaldintel/compute-runtime/device"
	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
	"github.com/lukaszgotszaldintel/compute-runtime/oscontext"
)

func init() {
	klog.InitFlags(nil)
}

// recordingCSR records every interaction so tests can assert on the exact
// sequence of waits and submissions.
type recordingCSR struct {
	osContext *oscontext.OsContext

	flushStamp     csr.FlushStamp
	completedTasks csr.TaskCount

	submissions          []csr.BatchBuffer
	residencySizes       []int
	waitForFlushStamps   []csr.FlushStamp
	waitCompletionCalls  []completionWait
	submitErr            error
	waitForFlushStampErr error
	waitCompletionErr    error
}

type completionWait struct {
	enableTimeout       bool
	timeoutMicroseconds int64
	taskCount           csr.TaskCount
}

func newRecordingCSR() *recordingCSR {
	ctx := oscontext.Create(nil, 42, 1,
		enginetypes.TypeUsage{Type: enginetypes.EngineRCS, Usage: enginetypes.UsageRegular},
		hwinfo.PreemptionDisabled, false)
	return &recordingCSR{osContext: ctx}
}

func (r *recordingCSR) SubmitBatchBuffer(batchBuffer csr.BatchBuffer, residency csr.ResidencyContainer) error {
	if r.submitErr != nil {
		return r.submitErr
	}
	r.flushStamp++
	r.submissions = append(r.submissions, batchBuffer)
	r.residencySizes = append(r.residencySizes, len(residency))
	return nil
}

func (r *recordingCSR) ObtainCurrentFlushStamp() csr.FlushStamp { return r.flushStamp }

func (r *recordingCSR) WaitForFlushStamp(stamp csr.FlushStamp) error {
	r.waitForFlushStamps = append(r.waitForFlushStamps, stamp)
	return r.waitForFlushStampErr
}

func (r *recordingCSR) WaitForCompletionWithTimeout(enableTimeout bool, timeoutMicroseconds int64, taskCount csr.TaskCount) error {
	r.waitCompletionCalls = append(r.waitCompletionCalls, completionWait{enableTimeout, timeoutMicroseconds, taskCount})
	return r.waitCompletionErr
}

func (r *recordingCSR) CompletedTaskCount() csr.TaskCount { return r.completedTasks }

func (r *recordingCSR) OsContext() *oscontext.OsContext { return r.osContext }

// countingMemoryManager tracks live allocations for leak assertions.
type countingMemoryManager struct {
	inner memmgr.MemoryManager

	mu        sync.Mutex
	allocated int
	freed     int
}

func newCountingMemoryManager(inner memmgr.MemoryManager) *countingMemoryManager {
	if inner == nil {
		inner = memmgr.NewOsAgnosticMemoryManager()
	}
	return &countingMemoryManager{inner: inner}
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

func newBenchDevice() (*device.Device, error) {
	env := &device.ExecutionEnvironment{
		MemoryManager: memmgr.NewOsAgnosticMemoryManager(),
		HardwareInfo: &hwinfo.HardwareInfo{
			Family:       hwinfo.ProductTGLLP,
			GtSystemInfo: hwinfo.GtSystemInfo{CCSCount: 1},
			CapabilityTable: hwinfo.CapabilityTable{
				DefaultEngineType:     enginetypes.EngineRCS,
				DefaultPreemptionMode: hwinfo.PreemptionMidThread,
			},
		},
	}
	return device.NewRootDevice(env, 0)
}

func newTestDevice(t *testing.T, flags debugflags.Flags) *device.Device {
	t.Helper()
	env := &device.ExecutionEnvironment{
		MemoryManager: memmgr.NewOsAgnosticMemoryManager(),
		HardwareInfo: &hwinfo.HardwareInfo{
			Family:       hwinfo.ProductTGLLP,
			GtSystemInfo: hwinfo.GtSystemInfo{CCSCount: 1},
			CapabilityTable: hwinfo.CapabilityTable{
				DefaultEngineType:     enginetypes.EngineRCS,
				DefaultPreemptionMode: hwinfo.PreemptionMidThread,
			},
		},
		Flags: flags,
	}
	dev, err := device.NewRootDevice(env, 0)
	require.NoError(t, err)
	t.Cleanup(dev.DecRefInternal)
	return dev
}

// newTestQueue builds an initialized queue over a recording receiver.
func newTestQueue(t *testing.T, flags debugflags.Flags, isInternal bool) (*CommandQueue, *recordingCSR) {
	t.Helper()
	dev := newTestDevice(t, flags)
	receiver := newRecordingCSR()
	queue := newCommandQueue(dev, receiver, Descriptor{Mode: ModeAsynchronous, Throttle: csr.ThrottleHigh})
	require.NoError(t, queue.initialize(false, isInternal))
	t.Cleanup(queue.Destroy)
	return queue, receiver
}

// fillAndSubmit consumes the whole active stream and submits it.
func fillAndSubmit(t *testing.T, queue *CommandQueue) {
	t.Helper()
	stream, err := queue.CommandStream()
	require.NoError(t, err)
	_, err = stream.Space(stream.AvailableSpace())
	require.NoError(t, err)
	require.NoError(t, queue.SubmitBatchBuffer(0, nil, stream.Used()))
}
