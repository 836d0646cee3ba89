package format

// CompressionType identifies a buffer-level compression algorithm. It is
// distinct from the header's single Compressed flag bit: CompressionDeflate
// is the only variant that flag controls, the others are available as
// pre-compression helpers a caller can apply to a value before handing it
// to the encoder.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionDeflate
	CompressionZstd
	CompressionS2
	CompressionLZ4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionDeflate:
		return "Deflate"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
