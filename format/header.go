package format

// Magic bytes select byte order for every multi-byte field in the
// container, including sizes, CRC, and the encryption seed.
var (
	MagicLittleEndian = [2]byte{0x50, 0x4A} // "PJ"
	MagicBigEndian    = [2]byte{0x4A, 0x50} // "JP"
)

// Version is the format version this implementation writes.
const (
	VersionMajor uint8 = 1
	VersionMinor uint8 = 0
)

// FixedHeaderSize is the size, in bytes, of the fixed-width prefix of the
// header (magic through TagPayloadOffset-equivalent DATA_SIZE field),
// not counting the optional CRC32 and encryption-seed trailers.
const FixedHeaderSize = 2 + 1 + 1 + 1 + 1 + 2 + 8 + 8 + 8 // = 32

// Flag bit positions within the single flag byte.
const (
	FlagLargeFile uint8 = 1 << 0
	FlagCompressed uint8 = 1 << 1
	FlagCRC32      uint8 = 1 << 2
	FlagEncrypted  uint8 = 1 << 3
	FlagEncryptionKeyExcluded uint8 = 1 << 4
	FlagKeysStripped          uint8 = 1 << 5
	// bits 6,7 reserved, must be zero.
	FlagReservedMask uint8 = 1<<6 | 1<<7
)
