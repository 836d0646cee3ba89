package cursor

import (
	"fmt"
	"math"

	"github.com/jpakfmt/jpak/endian"
)

// Reader scans a byte slice with a cursor position, using a fixed endian
// engine. It is not safe for concurrent use.
type Reader struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

// NewReader wraps data for sequential, positioned reads.
func NewReader(data []byte, engine endian.EndianEngine) *Reader {
	return &Reader{data: data, engine: engine}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Seek moves the cursor to an absolute position. It returns an error if
// pos is out of [0, Len()].
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("cursor: seek %d out of range [0,%d]", pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Extract returns a sub-slice [start:end) without moving the cursor. The
// returned slice aliases the underlying buffer.
func (r *Reader) Extract(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(r.data) {
		return nil, fmt.Errorf("cursor: extract [%d:%d) out of range [0,%d]", start, end, len(r.data))
	}
	return r.data[start:end], nil
}

// Trim drops the first n bytes already consumed, rebasing the cursor. The
// codec's decode paths, DecodeFile included, do not call it.
func (r *Reader) Trim(n int) error {
	if n < 0 || n > r.pos {
		return fmt.Errorf("cursor: trim %d out of range [0,%d]", n, r.pos)
	}
	r.data = r.data[n:]
	r.pos -= n
	return nil
}

// PeekByte returns the byte at the cursor without advancing it.
func (r *Reader) PeekByte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, fmt.Errorf("cursor: peek past end of buffer")
	}
	return r.data[r.pos], nil
}

// ReadByte returns the byte at the cursor and advances it by one.
func (r *Reader) ReadByte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, fmt.Errorf("cursor: read past end of buffer")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes returns the next n bytes and advances the cursor. The returned
// slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("cursor: read %d bytes past end of buffer (remaining %d)", n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) { return r.ReadByte() }

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.engine.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.engine.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.engine.Uint64(b), nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 always advances the cursor by 4 bytes.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 always advances the cursor by 8 bytes.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
