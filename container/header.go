// Package container implements the fixed-size header that precedes every
// jpak container: magic bytes, version, flags, stream sizes, and the
// optional CRC-32 and encryption-seed trailers.
package container

import (
	"fmt"

	"github.com/jpakfmt/jpak/endian"
	"github.com/jpakfmt/jpak/errs"
	"github.com/jpakfmt/jpak/format"
)

// Header is the fixed-size preamble of a container.
type Header struct {
	// LittleEndian selects the byte order every multi-byte field in the
	// container (including this header's own fields after the magic) is
	// written in.
	LittleEndian bool

	VersionMajor uint8
	VersionMinor uint8
	Flags        uint8

	// ValueStreamSize is the byte length of the value stream before
	// compression and encryption.
	ValueStreamSize uint64
	// StringStreamSize is the byte length of the interned string/key
	// stream that follows the value stream.
	StringStreamSize uint64
	// DataSize is the total byte count of everything that follows the
	// header: the value and string streams after whichever of
	// compression/encryption are applied. A stream-mode reader uses this
	// to know exactly how many trailing bytes to pull off the wire.
	DataSize uint64

	// CRC32 is present only when FlagCRC32 is set.
	CRC32 uint32
	// EncryptionSeed is present only when FlagEncrypted is set and
	// FlagEncryptionKeyExcluded is not.
	EncryptionSeed uint32
}

// NewHeader creates a Header for a fresh encode.
func NewHeader(littleEndian bool) *Header {
	return &Header{
		LittleEndian: littleEndian,
		VersionMajor: format.VersionMajor,
		VersionMinor: format.VersionMinor,
	}
}

func (h *Header) engine() endian.EndianEngine {
	if h.LittleEndian {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// Size returns the total header size, including whichever optional
// trailers h.Flags selects.
func (h *Header) Size() int {
	n := format.FixedHeaderSize
	if h.Flags&format.FlagCRC32 != 0 {
		n += 4
	}
	if h.Flags&format.FlagEncrypted != 0 && h.Flags&format.FlagEncryptionKeyExcluded == 0 {
		n += 4
	}

	return n
}

// Bytes serializes the header, including its optional trailers.
func (h *Header) Bytes() []byte {
	b := make([]byte, h.Size())

	if h.LittleEndian {
		copy(b[0:2], format.MagicLittleEndian[:])
	} else {
		copy(b[0:2], format.MagicBigEndian[:])
	}

	b[2] = h.VersionMajor
	b[3] = h.VersionMinor
	b[4] = h.Flags
	b[5] = 0 // reserved byte

	e := h.engine()
	e.PutUint16(b[6:8], 0) // reserved
	e.PutUint64(b[8:16], h.ValueStreamSize)
	e.PutUint64(b[16:24], h.StringStreamSize)
	e.PutUint64(b[24:32], h.DataSize)

	off := format.FixedHeaderSize
	if h.Flags&format.FlagCRC32 != 0 {
		e.PutUint32(b[off:off+4], h.CRC32)
		off += 4
	}
	if h.Flags&format.FlagEncrypted != 0 && h.Flags&format.FlagEncryptionKeyExcluded == 0 {
		e.PutUint32(b[off:off+4], h.EncryptionSeed)
		off += 4
	}

	return b
}

// Parse reads a header from the start of data, returning the header and
// the number of bytes it consumed. data must contain at least
// format.FixedHeaderSize bytes; more may be required once the flags byte
// reveals which trailers are present.
func Parse(data []byte) (*Header, int, error) {
	if len(data) < format.FixedHeaderSize {
		return nil, 0, fmt.Errorf("container: %w: have %d, need at least %d", errs.ErrInvalidHeaderSize, len(data), format.FixedHeaderSize)
	}

	var h Header
	switch {
	case data[0] == format.MagicLittleEndian[0] && data[1] == format.MagicLittleEndian[1]:
		h.LittleEndian = true
	case data[0] == format.MagicBigEndian[0] && data[1] == format.MagicBigEndian[1]:
		h.LittleEndian = false
	default:
		return nil, 0, fmt.Errorf("container: %w: got 0x%02X 0x%02X", errs.ErrBadMagic, data[0], data[1])
	}

	h.VersionMajor = data[2]
	h.VersionMinor = data[3]
	h.Flags = data[4]

	if h.Flags&format.FlagReservedMask != 0 {
		return nil, 0, fmt.Errorf("container: %w: reserved bits set in 0x%02X", errs.ErrBadFlagsState, h.Flags)
	}
	if h.Flags&format.FlagEncryptionKeyExcluded != 0 && h.Flags&format.FlagEncrypted == 0 {
		return nil, 0, fmt.Errorf("container: %w: key-excluded without encrypted", errs.ErrBadFlagsState)
	}
	if h.VersionMajor != format.VersionMajor {
		return nil, 0, fmt.Errorf("container: %w: version %d.%d", errs.ErrUnsupportedVersion, h.VersionMajor, h.VersionMinor)
	}

	e := h.engine()
	h.ValueStreamSize = e.Uint64(data[8:16])
	h.StringStreamSize = e.Uint64(data[16:24])
	h.DataSize = e.Uint64(data[24:32])

	off := format.FixedHeaderSize
	need := off
	if h.Flags&format.FlagCRC32 != 0 {
		need += 4
	}
	if h.Flags&format.FlagEncrypted != 0 && h.Flags&format.FlagEncryptionKeyExcluded == 0 {
		need += 4
	}
	if len(data) < need {
		return nil, 0, fmt.Errorf("container: %w: have %d, need %d", errs.ErrInvalidHeaderSize, len(data), need)
	}

	if h.Flags&format.FlagCRC32 != 0 {
		h.CRC32 = e.Uint32(data[off : off+4])
		off += 4
	}
	if h.Flags&format.FlagEncrypted != 0 && h.Flags&format.FlagEncryptionKeyExcluded == 0 {
		h.EncryptionSeed = e.Uint32(data[off : off+4])
		off += 4
	}

	return &h, off, nil
}
