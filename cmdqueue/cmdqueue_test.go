package cmdqueue

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/debugflags"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
)

func TestCreateFailsForUnsupportedFamily(t *testing.T) {
	dev := newTestDevice(t, debugflags.Flags{})
	queue, err := Create(hwinfo.ProductUnknown, dev, newRecordingCSR(), Descriptor{}, false, false)
	require.True(t, errors.Is(err, ErrUninitializedSupport))
	require.Nil(t, queue)

	queue, err = Create(hwinfo.MaxProduct+7, dev, newRecordingCSR(), Descriptor{}, false, false)
	require.True(t, errors.Is(err, ErrUninitializedSupport))
	require.Nil(t, queue)
}

func TestCreateReturnsInitializedQueue(t *testing.T) {
	dev := newTestDevice(t, debugflags.Flags{})
	engine := dev.DefaultEngine()
	require.NotNil(t, engine)

	queue, err := Create(hwinfo.ProductTGLLP, dev, engine.CommandStreamReceiver,
		Descriptor{Mode: ModeSynchronous, Throttle: csr.ThrottleMedium}, false, false)
	require.NoError(t, err)
	defer queue.Destroy()

	require.Equal(t, ModeSynchronous, queue.SynchronousMode())
	require.Same(t, dev, queue.Device())
	require.False(t, queue.IsCopyOnly())
	require.False(t, queue.IsInternal())
	require.Equal(t, csr.TaskCount(0), queue.TaskCount())

	stream, err := queue.CommandStream()
	require.NoError(t, err)
	require.Equal(t, defaultQueueCmdBufferSize, stream.AvailableSpace())
}

func TestCreateDestroysPartialQueueOnAllocationFailure(t *testing.T) {
	dev := newTestDevice(t, debugflags.Flags{})
	counting := newCountingMemoryManager(nil)
	dev.Environment().MemoryManager = memmgr.NewFailMemoryManager(1, counting)

	queue, err := Create(hwinfo.ProductTGLLP, dev, newRecordingCSR(), Descriptor{}, false, false)
	require.True(t, errors.Is(err, memmgr.ErrOutOfDeviceMemory))
	require.Nil(t, queue)
	require.Zero(t, counting.live())
}

func TestReserveWithinCapacityKeepsBuffer(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	stream, err := queue.CommandStream()
	require.NoError(t, err)
	before := stream.GraphicsAllocation()

	require.NoError(t, queue.ReserveLinearStreamSize(defaultQueueCmdBufferSize))
	require.Same(t, before, stream.GraphicsAllocation())
	require.Empty(t, receiver.waitForFlushStamps)
}

func TestReserveSwitchesToUnusedBufferWithoutWaiting(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	stream, err := queue.CommandStream()
	require.NoError(t, err)
	first := stream.GraphicsAllocation()

	fillAndSubmit(t, queue)

	// The second buffer has never been submitted, so switching to it
	// must not touch the receiver's wait path.
	require.NoError(t, queue.ReserveLinearStreamSize(16))
	require.NotSame(t, first, stream.GraphicsAllocation())
	require.Equal(t, defaultQueueCmdBufferSize, stream.AvailableSpace())
	require.Empty(t, receiver.waitForFlushStamps)
}

func TestReserveWaitsForPreviousSubmissionOnBufferReuse(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	stream, err := queue.CommandStream()
	require.NoError(t, err)
	first := stream.GraphicsAllocation()

	fillAndSubmit(t, queue) // first buffer, flush stamp 1
	require.NoError(t, queue.ReserveLinearStreamSize(16))
	fillAndSubmit(t, queue) // second buffer, flush stamp 2

	// Coming back around to the first buffer must wait out exactly its
	// own prior submission.
	require.NoError(t, queue.ReserveLinearStreamSize(16))
	require.Same(t, first, stream.GraphicsAllocation())
	require.Equal(t, []csr.FlushStamp{1}, receiver.waitForFlushStamps)
}

func TestReserveSurfacesWaitFailure(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	fillAndSubmit(t, queue)
	require.NoError(t, queue.ReserveLinearStreamSize(16))
	fillAndSubmit(t, queue)

	receiver.waitForFlushStampErr = errors.New("gpu hang")
	err := queue.ReserveLinearStreamSize(16)
	require.ErrorContains(t, err, "gpu hang")
}

func TestSubmitBatchBufferRecordsStampAndResidency(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{CreateMultipleSubDevices: 0}, false)
	stream, err := queue.CommandStream()
	require.NoError(t, err)
	_, err = stream.Space(256)
	require.NoError(t, err)

	extra, err := queue.Device().Environment().MemoryManager.AllocateGraphicsMemoryWithProperties(
		memmgr.AllocationProperties{Size: memmgr.PageSize, Type: memmgr.AllocationBuffer})
	require.NoError(t, err)
	defer queue.Device().Environment().MemoryManager.FreeGraphicsMemory(extra)

	require.NoError(t, queue.SubmitBatchBuffer(64, csr.ResidencyContainer{extra}, 128))
	require.Equal(t, csr.TaskCount(1), queue.TaskCount())
	require.Len(t, receiver.submissions, 1)

	submitted := receiver.submissions[0]
	require.Same(t, stream.GraphicsAllocation(), submitted.CommandBufferAllocation)
	require.Equal(t, 64, submitted.StartOffset)
	require.Equal(t, 256, submitted.UsedSize)
	require.Equal(t, 128, submitted.EndingCmdOffset)
	require.Equal(t, csr.ThrottleHigh, submitted.Throttle)
	require.Equal(t, csr.DefaultSliceCount, submitted.SliceCount)
	// The command buffer itself rides along in the residency set.
	require.Equal(t, 2, receiver.residencySizes[0])
}

func TestSubmitBatchBufferSurfacesReceiverFailure(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	receiver.submitErr = errors.New("submission channel closed")

	err := queue.SubmitBatchBuffer(0, nil, 0)
	require.ErrorContains(t, err, "submission channel closed")
	require.Equal(t, csr.TaskCount(0), queue.TaskCount())
}

func TestSynchronizeNotReady(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	fillAndSubmit(t, queue)

	receiver.completedTasks = 0
	err := queue.Synchronize(1000)
	require.True(t, errors.Is(err, ErrNotReady))

	receiver.completedTasks = 1
	require.NoError(t, queue.Synchronize(1000))

	require.Len(t, receiver.waitCompletionCalls, 2)
	require.Equal(t, completionWait{true, 1000, 1}, receiver.waitCompletionCalls[0])
}

func TestSynchronizeWaitForeverDisablesTimeout(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	fillAndSubmit(t, queue)
	receiver.completedTasks = 1

	require.NoError(t, queue.Synchronize(WaitForever))
	require.Len(t, receiver.waitCompletionCalls, 1)
	call := receiver.waitCompletionCalls[0]
	require.False(t, call.enableTimeout)
	require.Equal(t, csr.TimeoutControls.MaxTimeout, call.timeoutMicroseconds)
}

type countingEmitter struct{ drains int }

func (e *countingEmitter) PrintPrintfOutput() { e.drains++ }

func TestSynchronizeDrainsPrintfEmittersOnce(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
	emitter := &countingEmitter{}
	queue.AppendPrintfEmitter(emitter)

	fillAndSubmit(t, queue)
	require.True(t, errors.Is(queue.Synchronize(10), ErrNotReady))
	require.Zero(t, emitter.drains, "a failed synchronization must not drain")

	receiver.completedTasks = 1
	require.NoError(t, queue.Synchronize(10))
	require.Equal(t, 1, emitter.drains)

	require.NoError(t, queue.Synchronize(10))
	require.Equal(t, 1, emitter.drains, "the container is cleared after draining")
}

type fakeDebugSession struct {
	attached bool
	reported []uint32
}

func (s *fakeDebugSession) IsAttached() bool { return s.attached }

func (s *fakeDebugSession) ReportTrackedAddresses(contextID uint32) {
	s.reported = append(s.reported, contextID)
}

func TestSynchronizeReportsTrackedAddresses(t *testing.T) {
	queue, receiver := newTestQueue(t, debugflags.Flags{DebuggerLogBitmask: 1}, false)
	session := &fakeDebugSession{attached: true}
	queue.Device().AttachDebugSession(session)

	fillAndSubmit(t, queue)
	receiver.completedTasks = 1
	require.NoError(t, queue.Synchronize(WaitForever))
	require.Equal(t, []uint32{receiver.osContext.ContextID()}, session.reported)
}

func TestSynchronizeDebuggerReportingGating(t *testing.T) {
	t.Run("detached session", func(t *testing.T) {
		queue, receiver := newTestQueue(t, debugflags.Flags{DebuggerLogBitmask: 1}, false)
		session := &fakeDebugSession{attached: false}
		queue.Device().AttachDebugSession(session)
		fillAndSubmit(t, queue)
		receiver.completedTasks = 1
		require.NoError(t, queue.Synchronize(WaitForever))
		require.Empty(t, session.reported)
	})

	t.Run("internal queue", func(t *testing.T) {
		queue, receiver := newTestQueue(t, debugflags.Flags{DebuggerLogBitmask: 1}, true)
		session := &fakeDebugSession{attached: true}
		queue.Device().AttachDebugSession(session)
		fillAndSubmit(t, queue)
		receiver.completedTasks = 1
		require.NoError(t, queue.Synchronize(WaitForever))
		require.True(t, queue.IsInternal())
		require.Empty(t, session.reported)
	})

	t.Run("log bitmask disabled", func(t *testing.T) {
		queue, receiver := newTestQueue(t, debugflags.Flags{}, false)
		session := &fakeDebugSession{attached: true}
		queue.Device().AttachDebugSession(session)
		fillAndSubmit(t, queue)
		receiver.completedTasks = 1
		require.NoError(t, queue.Synchronize(WaitForever))
		require.Empty(t, session.reported)
	})
}

func TestDestroyFreesBothBuffersAndIsIdempotent(t *testing.T) {
	dev := newTestDevice(t, debugflags.Flags{})
	counting := newCountingMemoryManager(nil)
	dev.Environment().MemoryManager = counting

	queue, err := Create(hwinfo.ProductTGLLP, dev, newRecordingCSR(), Descriptor{}, false, false)
	require.NoError(t, err)
	require.Equal(t, 2, counting.allocated)

	queue.Destroy()
	require.Zero(t, counting.live())
	queue.Destroy()
	require.Zero(t, counting.live())

	_, err = queue.CommandStream()
	require.True(t, errors.Is(err, errQueueDestroyed))
	require.True(t, errors.Is(queue.ReserveLinearStreamSize(1), errQueueDestroyed))
	require.True(t, errors.Is(queue.SubmitBatchBuffer(0, nil, 0), errQueueDestroyed))
	require.True(t, errors.Is(queue.Synchronize(WaitForever), errQueueDestroyed))
}

func BenchmarkReserveLinearStream(b *testing.B) {
	dev, err := newBenchDevice()
	if err != nil {
		b.Fatal(err)
	}
	defer dev.DecRefInternal()

	queue := newCommandQueue(dev, newRecordingCSR(), Descriptor{})
	if err := queue.initialize(false, false); err != nil {
		b.Fatal(err)
	}
	defer queue.Destroy()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stream, err := queue.CommandStream()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := stream.Space(stream.AvailableSpace()); err != nil {
			b.Fatal(err)
		}
		if err := queue.SubmitBatchBuffer(0, nil, 0); err != nil {
			b.Fatal(err)
		}
		if err := queue.ReserveLinearStreamSize(16); err != nil {
			b.Fatal(err)
		}
	}
}
