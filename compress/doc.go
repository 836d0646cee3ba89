// Package compress provides the compression codecs usable inside a
// container's pipeline.
//
// # Header-wired compression
//
// The container header carries a single Compressed flag bit. When set, the
// value stream is framed as a sequence of chunks, each prefixed with its
// deflated length:
//
//	[u32 LE chunk length][deflated bytes]...
//
// DeflateCompressor implements this framing and is the only codec the
// decoder invokes automatically based on the header flag.
//
// # Auxiliary codecs
//
// Zstd, S2, and LZ4 are available as buffer-level pre-compression helpers:
// a caller may compress a value's raw bytes with one of these before
// wrapping it in an OpaqueBuffer extension, trading a larger extension tag
// for a smaller payload. They are not addressed by any header flag, so the
// caller is responsible for reversing them on read.
//
// NoOpCompressor is the identity codec, useful for benchmarking and as the
// default when no compression is requested.
package compress
