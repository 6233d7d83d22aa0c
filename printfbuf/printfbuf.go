// Package printfbuf decodes the printf surface a kernel writes into device
// memory and renders it as text. Command queues hold a container of these
// buffers and drain them when a synchronization point succeeds.
//
// The surface layout is a length-prefixed record stream:
//
//	u32 bytesUsed (including the prefix itself)
//	repeated: u32 tag, payload
//
// Tags: 1 int32, 2 int64, 3 float32 (raw bits), 4 float16 (raw bits),
// 5 string (u32 length + bytes). Tag 0 ends the stream early. All fields
// are little-endian, matching the device's layout.
package printfbuf

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
)

// Record tags written by the device.
const (
	tagEnd = iota
	tagInt32
	tagInt64
	tagFloat32
	tagFloat16
	tagString
)

// Buffer wraps one printf surface allocation and the writer its decoded
// output goes to.
type Buffer struct {
	allocation *memmgr.GraphicsAllocation
	out        io.Writer
}

// New returns a Buffer decoding allocation into out.
func New(allocation *memmgr.GraphicsAllocation, out io.Writer) *Buffer {
	return &Buffer{allocation: allocation, out: out}
}

// Allocation returns the printf surface, for residency tracking.
func (b *Buffer) Allocation() *memmgr.GraphicsAllocation { return b.allocation }

// PrintPrintfOutput decodes the surface and writes one line per record.
// Device memory is untrusted: a malformed stream stops decoding with a
// warning instead of failing the synchronization that triggered the drain.
func (b *Buffer) PrintPrintfOutput() {
	if err := b.decode(); err != nil {
		klog.Warningf("Malformed printf surface at GPU address %#x: %v", b.allocation.GPUAddress(), err)
	}
}

func (b *Buffer) decode() error {
	data := b.allocation.UnderlyingBuffer()
	if len(data) < 4 {
		return errors.Errorf("surface of %d bytes is smaller than its header", len(data))
	}
	used := binary.LittleEndian.Uint32(data)
	if used < 4 || int(used) > len(data) {
		return errors.Errorf("bytesUsed %d out of range for %d-byte surface", used, len(data))
	}

	stream := data[4:used]
	for len(stream) > 0 {
		if len(stream) < 4 {
			return errors.New("truncated record tag")
		}
		tag := binary.LittleEndian.Uint32(stream)
		stream = stream[4:]

		var text string
		switch tag {
		case tagEnd:
			return nil
		case tagInt32:
			if len(stream) < 4 {
				return errors.New("truncated int32 payload")
			}
			text = strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(stream))), 10)
			stream = stream[4:]
		case tagInt64:
			if len(stream) < 8 {
				return errors.New("truncated int64 payload")
			}
			text = strconv.FormatInt(int64(binary.LittleEndian.Uint64(stream)), 10)
			stream = stream[8:]
		case tagFloat32:
			if len(stream) < 4 {
				return errors.New("truncated float32 payload")
			}
			text = formatFloat32(math32.Float32frombits(binary.LittleEndian.Uint32(stream)))
			stream = stream[4:]
		case tagFloat16:
			if len(stream) < 2 {
				return errors.New("truncated float16 payload")
			}
			text = float16.Frombits(binary.LittleEndian.Uint16(stream)).String()
			stream = stream[2:]
		case tagString:
			if len(stream) < 4 {
				return errors.New("truncated string length")
			}
			n := binary.LittleEndian.Uint32(stream)
			stream = stream[4:]
			if int(n) > len(stream) {
				return errors.Errorf("string payload of %d bytes exceeds stream", n)
			}
			text = string(stream[:n])
			stream = stream[n:]
		default:
			return errors.Errorf("unknown record tag %d", tag)
		}
		fmt.Fprintln(b.out, text)
	}
	return nil
}

// formatFloat32 renders without the float64 round-trip, so that values keep
// their float32 precision and non-finite values match the device's view.
func formatFloat32(v float32) string {
	switch {
	case math32.IsNaN(v):
		return "nan"
	case math32.IsInf(v, 1):
		return "inf"
	case math32.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
