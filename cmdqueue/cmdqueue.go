package cmdqueue

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/device"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
)

// ErrNotReady reports that submitted work had not completed within the
// synchronization bound. It is an expected, recoverable outcome: callers
// retry, they do not tear anything down.
var ErrNotReady = errors.New("not ready")

// ErrUninitializedSupport reports that no command queue support is
// registered for the requested product family.
var ErrUninitializedSupport = errors.New("uninitialized command queue support")

// errQueueDestroyed guards use-after-destroy.
var errQueueDestroyed = errors.New("command queue already destroyed")

// WaitForever disables the synchronization timeout.
const WaitForever = uint64(math.MaxUint64)

// Mode selects synchronous or asynchronous dispatch for a queue. It is
// fixed at creation.
type Mode int

const (
	ModeDefault Mode = iota
	ModeSynchronous
	ModeAsynchronous
)

// Descriptor carries the creation-time queue configuration.
type Descriptor struct {
	Mode     Mode
	Throttle csr.QueueThrottle
}

// Command stream sizing. Each of the two buffers covers the stream plus
// the overfetch margin the command streamer reads past the batch end.
const (
	defaultQueueCmdBufferSize = 128 << 10
	cacheLineSize             = 64
	csOverfetchSize           = 1 << 10
	totalCmdBufferSize        = defaultQueueCmdBufferSize + cacheLineSize + csOverfetchSize
)

// PrintfEmitter is one pending producer of host-readable diagnostic
// output, drained when a synchronization point succeeds.
type PrintfEmitter interface {
	PrintPrintfOutput()
}

// CommandQueue drives submission against one device engine. A queue owns
// its command buffers and write cursor exclusively; independent queues may
// submit concurrently to the same device, each over its own receiver.
type CommandQueue struct {
	dev      *device.Device
	receiver csr.CommandStreamReceiver
	desc     Descriptor

	commandStream *LinearStream
	buffers       commandBufferManager

	taskCount     csr.TaskCount
	internalUsage bool
	isCopyOnly    bool

	printfContainer []PrintfEmitter
}

// CreateFn builds the product-specific queue object. Implementations run
// before initialize; they must not allocate.
type CreateFn func(dev *device.Device, receiver csr.CommandStreamReceiver, desc Descriptor) *CommandQueue

var commandQueueFactory [hwinfo.MaxProduct]CreateFn

// RegisterFactory installs the queue creation function for one product
// family. It is called from package init functions only; the table is
// read-only afterwards.
func RegisterFactory(family hwinfo.ProductFamily, fn CreateFn) {
	commandQueueFactory[family] = fn
}

// Create builds and initializes a command queue for the given product
// family. A family without registered support fails with
// ErrUninitializedSupport; an initialization failure destroys the partial
// queue and returns the cause. A queue is never returned half-built.
func Create(family hwinfo.ProductFamily, dev *device.Device, receiver csr.CommandStreamReceiver,
	desc Descriptor, isCopyOnly, isInternal bool) (*CommandQueue, error) {
	var allocator CreateFn
	if family >= 0 && family < hwinfo.MaxProduct {
		allocator = commandQueueFactory[family]
	}
	if allocator == nil {
		return nil, errors.Wrapf(ErrUninitializedSupport, "product family %s", family)
	}

	queue := allocator(dev, receiver, desc)
	if err := queue.initialize(isCopyOnly, isInternal); err != nil {
		queue.Destroy()
		return nil, errors.WithMessage(err, "initializing command queue")
	}
	return queue, nil
}

func newCommandQueue(dev *device.Device, receiver csr.CommandStreamReceiver, desc Descriptor) *CommandQueue {
	return &CommandQueue{dev: dev, receiver: receiver, desc: desc}
}

func init() {
	for _, family := range []hwinfo.ProductFamily{
		hwinfo.ProductSKL, hwinfo.ProductICLLP, hwinfo.ProductTGLLP, hwinfo.ProductDG1, hwinfo.ProductADLS,
	} {
		RegisterFactory(family, newCommandQueue)
	}
}

func (q *CommandQueue) initialize(isCopyOnly, isInternal bool) error {
	q.internalUsage = isInternal
	q.isCopyOnly = isCopyOnly
	if err := q.buffers.initialize(q.dev, totalCmdBufferSize); err != nil {
		return err
	}
	q.commandStream = NewLinearStream(q.buffers.currentBufferAllocation(), defaultQueueCmdBufferSize)
	return nil
}

// Destroy releases both command buffers and invalidates the queue. It is
// idempotent; destroying an already-destroyed queue is a no-op.
func (q *CommandQueue) Destroy() {
	if q.commandStream == nil && q.buffers.buffers[firstBuffer] == nil {
		return
	}
	q.buffers.destroy(q.dev.Environment().MemoryManager)
	q.commandStream = nil
}

// CommandStream returns the active command stream for encoders to fill.
func (q *CommandQueue) CommandStream() (*LinearStream, error) {
	if q.commandStream == nil {
		return nil, errors.WithStack(errQueueDestroyed)
	}
	return q.commandStream, nil
}

// ReserveLinearStreamSize makes sure the active buffer can take size more
// bytes. When it cannot, the buffers are switched (waiting out the new
// buffer's previous submission if it had one) and the write cursor resets
// to the start of the newly active buffer.
func (q *CommandQueue) ReserveLinearStreamSize(size int) error {
	if q.commandStream == nil {
		return errors.WithStack(errQueueDestroyed)
	}
	if q.commandStream.AvailableSpace() >= size {
		return nil
	}
	if err := q.buffers.switchBuffers(q.receiver); err != nil {
		return err
	}
	next := q.buffers.currentBufferAllocation()
	q.commandStream.ReplaceBuffer(next, defaultQueueCmdBufferSize)
	return nil
}

// SubmitBatchBuffer hands the region [offset, write cursor) of the active
// buffer to the submission channel together with the residency set, then
// records the channel's flush stamp against the active buffer and advances
// the queue's task count. endingCmdOffset locates the batch-end marker
// relative to offset.
func (q *CommandQueue) SubmitBatchBuffer(offset int, residency csr.ResidencyContainer, endingCmdOffset int) error {
	if q.commandStream == nil {
		return errors.WithStack(errQueueDestroyed)
	}
	batchBuffer := csr.BatchBuffer{
		CommandBufferAllocation: q.commandStream.GraphicsAllocation(),
		StartOffset:             offset,
		UsedSize:                q.commandStream.Used(),
		EndingCmdOffset:         endingCmdOffset,
		Throttle:                q.desc.Throttle,
		SliceCount:              csr.DefaultSliceCount,
		LowPriority:             q.receiver.OsContext().IsLowPriority(),
	}
	residency = append(residency, batchBuffer.CommandBufferAllocation)

	if err := q.receiver.SubmitBatchBuffer(batchBuffer, residency); err != nil {
		return err
	}
	q.buffers.setCurrentFlushStamp(q.receiver.ObtainCurrentFlushStamp())
	q.taskCount++
	return nil
}

// Synchronize waits until all work submitted on the queue has completed,
// bounded by timeoutMicroseconds (WaitForever disables the bound). If the
// completion counter is still behind the queue's target after the wait,
// ErrNotReady is returned and the caller retries. On success all pending
// diagnostic output is drained, and tracked device addresses are reported
// when a debug session is attached and the debugger log flag is enabled.
func (q *CommandQueue) Synchronize(timeoutMicroseconds uint64) error {
	if q.commandStream == nil {
		return errors.WithStack(errQueueDestroyed)
	}
	taskCountToWait := q.taskCount

	enableTimeout := true
	timeout := int64(timeoutMicroseconds)
	if timeoutMicroseconds == WaitForever {
		enableTimeout = false
		timeout = csr.TimeoutControls.MaxTimeout
	}

	if err := q.receiver.WaitForCompletionWithTimeout(enableTimeout, timeout, taskCountToWait); err != nil {
		return err
	}
	if q.receiver.CompletedTaskCount() < taskCountToWait {
		return errors.WithStack(ErrNotReady)
	}

	q.printPrintfOutput()

	if session := q.dev.DebugSession(); session != nil && session.IsAttached() &&
		!q.internalUsage && q.dev.Environment().Flags.DebuggerLogBitmask != 0 {
		session.ReportTrackedAddresses(q.receiver.OsContext().ContextID())
	}
	klog.V(2).Infof("Queue on context %d synchronized at task count %d",
		q.receiver.OsContext().ContextID(), taskCountToWait)
	return nil
}

// AppendPrintfEmitter queues a diagnostic output producer for the next
// successful synchronization.
func (q *CommandQueue) AppendPrintfEmitter(emitter PrintfEmitter) {
	q.printfContainer = append(q.printfContainer, emitter)
}

// printPrintfOutput drains each pending producer exactly once.
func (q *CommandQueue) printPrintfOutput() {
	for _, emitter := range q.printfContainer {
		emitter.PrintPrintfOutput()
	}
	q.printfContainer = q.printfContainer[:0]
}

// SynchronousMode returns the dispatch mode fixed at creation.
func (q *CommandQueue) SynchronousMode() Mode { return q.desc.Mode }

// TaskCount returns the number of batches submitted on the queue.
func (q *CommandQueue) TaskCount() csr.TaskCount { return q.taskCount }

// Device returns the device the queue was created against.
func (q *CommandQueue) Device() *device.Device { return q.dev }

// IsCopyOnly reports whether the queue only accepts copy engine work.
func (q *CommandQueue) IsCopyOnly() bool { return q.isCopyOnly }

// IsInternal reports whether the queue is for internal driver use.
func (q *CommandQueue) IsInternal() bool { return q.internalUsage }
