// Package cmdqueue implements host-to-device command submission: a queue
// bound to one device engine, backed by a double-buffered command stream,
// with synchronize-by-task-count semantics.
package cmdqueue

import (
	"github.com/pkg/errors"

	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
)

// LinearStream is a write cursor over one command buffer allocation. The
// hardware command encoders (outside this module) fill the regions it
// hands out; the stream itself only tracks space.
type LinearStream struct {
	buffer             []byte
	used               int
	graphicsAllocation *memmgr.GraphicsAllocation
}

// NewLinearStream returns a stream over the first size bytes of allocation.
func NewLinearStream(allocation *memmgr.GraphicsAllocation, size int) *LinearStream {
	return &LinearStream{
		buffer:             allocation.UnderlyingBuffer()[:size],
		graphicsAllocation: allocation,
	}
}

// AvailableSpace returns the number of bytes not yet handed out.
func (s *LinearStream) AvailableSpace() int { return len(s.buffer) - s.used }

// Used returns the byte offset of the write cursor.
func (s *LinearStream) Used() int { return s.used }

// GraphicsAllocation returns the allocation backing the stream.
func (s *LinearStream) GraphicsAllocation() *memmgr.GraphicsAllocation {
	return s.graphicsAllocation
}

// Space hands out the next size bytes and advances the cursor. The caller
// must have ensured capacity beforehand (see CommandQueue.ReserveLinearStreamSize).
func (s *LinearStream) Space(size int) ([]byte, error) {
	if s.AvailableSpace() < size {
		return nil, errors.Errorf("linear stream overflow: %d bytes requested, %d available", size, s.AvailableSpace())
	}
	region := s.buffer[s.used : s.used+size]
	s.used += size
	return region, nil
}

// ReplaceBuffer points the stream at a different allocation and resets the
// write cursor to its start.
func (s *LinearStream) ReplaceBuffer(allocation *memmgr.GraphicsAllocation, size int) {
	s.buffer = allocation.UnderlyingBuffer()[:size]
	s.graphicsAllocation = allocation
	s.used = 0
}
