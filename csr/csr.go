// Package csr defines the command-stream-receiver contract: the per-engine
// submission channel the driver core hands filled command buffers to. The
// hardware-backed receivers live outside this module; the package ships an
// in-process software receiver for tools and tests.
package csr

import (
	"math"

	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
	"github.com/lukaszgotszaldintel/compute-runtime/oscontext"
)

// FlushStamp identifies one submission's completion point. Stamps are
// monotonically increasing per receiver; 0 means "never submitted".
type FlushStamp uint64

// TaskCount counts dispatched work units on one queue. The hardware writes
// the completed count back; comparing the two decides readiness.
type TaskCount uint32

// QueueThrottle hints how aggressively the hardware should clock up for a
// submission.
type QueueThrottle int

const (
	ThrottleLow QueueThrottle = iota
	ThrottleMedium
	ThrottleHigh
)

// DefaultSliceCount requests the hardware's full slice configuration.
const DefaultSliceCount = 0

// TimeoutControls bounds receiver-side waits.
var TimeoutControls = struct {
	// MaxTimeout is the microsecond bound used when a caller asked to wait
	// forever; receivers loop on it rather than arming a real timeout.
	MaxTimeout int64
}{MaxTimeout: math.MaxInt64}

// BatchBuffer is the transient descriptor of one submission: the region of
// a command buffer to execute plus scheduling hints.
type BatchBuffer struct {
	CommandBufferAllocation *memmgr.GraphicsAllocation
	StartOffset             int
	UsedSize                int
	// EndingCmdOffset is the offset of the batch-end marker inside the
	// buffer, relative to StartOffset.
	EndingCmdOffset int
	Throttle        QueueThrottle
	SliceCount      int
	LowPriority     bool
}

// ResidencyContainer lists the allocations the device must keep resident
// while a submission executes.
type ResidencyContainer []*memmgr.GraphicsAllocation

// CommandStreamReceiver is the submission channel for one engine.
// Implementations must keep flush stamps monotonically increasing and must
// not report a stamp complete before the device is done with every
// submission up to it.
type CommandStreamReceiver interface {
	// SubmitBatchBuffer hands a filled command-buffer region to the device.
	SubmitBatchBuffer(batchBuffer BatchBuffer, residency ResidencyContainer) error

	// ObtainCurrentFlushStamp returns the stamp of the latest submission.
	ObtainCurrentFlushStamp() FlushStamp

	// WaitForFlushStamp blocks until the submission identified by stamp has
	// completed on the device.
	WaitForFlushStamp(stamp FlushStamp) error

	// WaitForCompletionWithTimeout blocks until the completed task count
	// reaches taskCount, bounded by timeoutMicroseconds when enableTimeout
	// is set. Returning without error does not guarantee completion; the
	// caller re-checks CompletedTaskCount.
	WaitForCompletionWithTimeout(enableTimeout bool, timeoutMicroseconds int64, taskCount TaskCount) error

	// CompletedTaskCount reads the hardware completion counter.
	CompletedTaskCount() TaskCount

	// OsContext returns the execution context the receiver submits on.
	OsContext() *oscontext.OsContext
}
