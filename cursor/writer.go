// Package cursor implements the typed little/big-endian octet cursor the
// encoder and decoder read and write through, with seek/extract/trim
// support for stream-mode compaction. It is built on top of
// endian.EndianEngine and the pooled ByteBuffer: a raw-slice-plus-engine
// access pattern that avoids a type switch on every field write.
package cursor

import (
	"math"

	"github.com/jpakfmt/jpak/endian"
	"github.com/jpakfmt/jpak/internal/pool"
)

// Writer accumulates bytes into a pooled buffer using a fixed endian
// engine. It is not safe for concurrent use.
type Writer struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewWriter creates a Writer using the default value-stream buffer pool.
func NewWriter(engine endian.EndianEngine) *Writer {
	return &Writer{buf: pool.GetBuffer(), engine: engine}
}

// Release returns the Writer's buffer to the pool. The Writer must not be
// used afterward.
func (w *Writer) Release() { pool.PutBuffer(w.buf) }

// Bytes returns the accumulated bytes. The slice is valid until the next
// write or Release.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// WriteByte appends a single raw byte (tag or fixed-width payload byte).
func (w *Writer) WriteByte(b byte) { w.buf.MustWrite([]byte{b}) }

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf.MustWrite(b) }

// WriteUint8/16/32/64 append an unsigned integer of the given width, in
// the Writer's configured byte order.
func (w *Writer) WriteUint8(v uint8) { w.WriteByte(v) }

func (w *Writer) WriteUint16(v uint16) {
	var tmp [2]byte
	w.engine.PutUint16(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var tmp [4]byte
	w.engine.PutUint32(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	w.engine.PutUint64(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteInt8/16/32/64 append a signed integer using the unsigned writers
// and a bit-preserving conversion.
func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat32 appends an IEEE-754 single-precision float.
func (w *Writer) WriteFloat32(f float32) { w.WriteUint32(math.Float32bits(f)) }

// WriteFloat64 appends an IEEE-754 double-precision float.
func (w *Writer) WriteFloat64(f float64) { w.WriteUint64(math.Float64bits(f)) }

// Reset clears the accumulated bytes but keeps the underlying allocation.
func (w *Writer) Reset() { w.buf.Reset() }
