// Package snapshot records position/velocity frames of a simulation
// run as a length-prefixed binary stream with snappy-compressed
// payloads. The core only ever calls Append; the reader exists for
// playback tooling and tests.
package snapshot

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// magic opens every stream and versions the frame format.
var magic = [8]byte{'N', 'B', 'S', 'N', 'A', 'P', '0', '1'}

// frameHeader is the fixed-size prefix of each frame.
type frameHeader struct {
	Frame      uint64
	Time       float64
	Count      uint32 // scalars in the decoded state
	Compressed uint32 // bytes of snappy payload that follow
}

const frameHeaderSize = 8 + 8 + 4 + 4

// Writer appends frames to an underlying stream.
type Writer struct {
	w       io.Writer
	scratch []byte
	started bool
}

// NewWriter wraps w. The stream magic is written lazily on the first
// Append so an aborted run leaves no partial file header.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Append writes one frame: the frame number, the simulated time and
// the packed state vector.
func (sw *Writer) Append(frame int, t float64, y []float64) error {
	if !sw.started {
		if _, err := sw.w.Write(magic[:]); err != nil {
			return errors.Wrap(err, "snapshot: writing stream magic")
		}
		sw.started = true
	}

	raw := make([]byte, 8*len(y))
	for i, v := range y {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}
	sw.scratch = snappy.Encode(sw.scratch[:cap(sw.scratch)], raw)

	var head [frameHeaderSize]byte
	binary.LittleEndian.PutUint64(head[0:], uint64(frame))
	binary.LittleEndian.PutUint64(head[8:], math.Float64bits(t))
	binary.LittleEndian.PutUint32(head[16:], uint32(len(y)))
	binary.LittleEndian.PutUint32(head[20:], uint32(len(sw.scratch)))
	if _, err := sw.w.Write(head[:]); err != nil {
		return errors.Wrapf(err, "snapshot: writing header of frame %d", frame)
	}
	if _, err := sw.w.Write(sw.scratch); err != nil {
		return errors.Wrapf(err, "snapshot: writing payload of frame %d", frame)
	}
	return nil
}

// Reader decodes a stream produced by Writer.
type Reader struct {
	r       io.Reader
	started bool
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next frame, or io.EOF once the stream is drained.
func (sr *Reader) Next() (frame int, t float64, y []float64, err error) {
	if !sr.started {
		var m [8]byte
		if _, err = io.ReadFull(sr.r, m[:]); err != nil {
			return 0, 0, nil, errors.Wrap(err, "snapshot: reading stream magic")
		}
		if m != magic {
			return 0, 0, nil, errors.Errorf("snapshot: bad stream magic %q", m[:])
		}
		sr.started = true
	}

	var head [frameHeaderSize]byte
	if _, err = io.ReadFull(sr.r, head[:]); err != nil {
		if err == io.EOF {
			return 0, 0, nil, io.EOF
		}
		return 0, 0, nil, errors.Wrap(err, "snapshot: reading frame header")
	}
	frame = int(binary.LittleEndian.Uint64(head[0:]))
	t = math.Float64frombits(binary.LittleEndian.Uint64(head[8:]))
	count := binary.LittleEndian.Uint32(head[16:])
	compressed := binary.LittleEndian.Uint32(head[20:])

	payload := make([]byte, compressed)
	if _, err = io.ReadFull(sr.r, payload); err != nil {
		return 0, 0, nil, errors.Wrapf(err, "snapshot: reading payload of frame %d", frame)
	}
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return 0, 0, nil, errors.Wrapf(err, "snapshot: decoding frame %d", frame)
	}
	if len(raw) != 8*int(count) {
		return 0, 0, nil, errors.Errorf("snapshot: frame %d decodes to %d bytes, want %d", frame, len(raw), 8*count)
	}
	y = make([]float64, count)
	for i := range y {
		y[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return frame, t, y, nil
}
