package csr

import (
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/oscontext"
)

// HostCSR is a software command-stream receiver: every submission completes
// immediately on the host. It backs cmd tools and tests, and mirrors the
// role the simulator-backed receivers play in a full driver.
type HostCSR struct {
	osContext *oscontext.OsContext

	mu             sync.Mutex
	flushStamp     FlushStamp
	completedTasks TaskCount
	submissions    []BatchBuffer
}

// NewHostCSR returns a receiver submitting on osContext.
func NewHostCSR(osContext *oscontext.OsContext) *HostCSR {
	return &HostCSR{osContext: osContext}
}

// SubmitBatchBuffer implements CommandStreamReceiver. The batch is
// "executed" by advancing the completion counters immediately.
func (r *HostCSR) SubmitBatchBuffer(batchBuffer BatchBuffer, residency ResidencyContainer) error {
	if batchBuffer.CommandBufferAllocation == nil {
		return errors.New("batch buffer without command buffer allocation")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushStamp++
	r.completedTasks++
	r.submissions = append(r.submissions, batchBuffer)
	klog.V(3).Infof("HostCSR context %d: submitted %d bytes at offset %d (stamp %d, %d resident)",
		r.osContext.ContextID(), batchBuffer.UsedSize-batchBuffer.StartOffset,
		batchBuffer.StartOffset, r.flushStamp, len(residency))
	return nil
}

// ObtainCurrentFlushStamp implements CommandStreamReceiver.
func (r *HostCSR) ObtainCurrentFlushStamp() FlushStamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushStamp
}

// WaitForFlushStamp implements CommandStreamReceiver. Host submissions
// complete synchronously, so the wait always succeeds.
func (r *HostCSR) WaitForFlushStamp(stamp FlushStamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stamp > r.flushStamp {
		return errors.Errorf("flush stamp %d was never submitted (current %d)", stamp, r.flushStamp)
	}
	return nil
}

// WaitForCompletionWithTimeout implements CommandStreamReceiver.
func (r *HostCSR) WaitForCompletionWithTimeout(enableTimeout bool, timeoutMicroseconds int64, taskCount TaskCount) error {
	return nil
}

// CompletedTaskCount implements CommandStreamReceiver.
func (r *HostCSR) CompletedTaskCount() TaskCount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completedTasks
}

// OsContext implements CommandStreamReceiver.
func (r *HostCSR) OsContext() *oscontext.OsContext { return r.osContext }

// SubmissionCount returns how many batches were submitted.
func (r *HostCSR) SubmissionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submissions)
}
