// Package jpak implements a self-describing binary container format for
// arbitrary value graphs: null, booleans, integers, floats, strings,
// arrays, ordered objects, and a built-in extension family (Map, Set,
// Symbol, RegExp, TypedArray, OpaqueBuffer, Timestamp), plus a
// caller-extensible tag range for user-defined extensions.
//
// A container is a fixed header (magic bytes that select byte order,
// version, flags, stream sizes, optional CRC-32 and encryption-seed
// trailers) followed by a value stream and a string stream. Strings and
// object keys are interned once and referenced by index, so a document
// with many repeated keys or values costs one copy of each distinct
// string plus small integer references everywhere else.
//
// # Basic usage
//
//	enc := jpak.NewEncoder(jpak.NewConfig(), nil)
//	res, err := enc.Encode(value.Object(
//	    value.ObjectPair("name", value.Str("jpak")),
//	    value.ObjectPair("version", value.Int(1)),
//	))
//
//	dec := jpak.NewDecoder(jpak.NewConfig(), nil)
//	root, err := dec.Decode(res.Bytes)
//
// # Package structure
//
// This file provides convenient top-level wrappers around the codec
// package, mirroring its Encoder/Decoder/Config/Option API one level up.
// For extension registration and advanced option tuning, use the codec
// and ext packages directly.
package jpak

import (
	"github.com/jpakfmt/jpak/codec"
	"github.com/jpakfmt/jpak/ext"
	"github.com/jpakfmt/jpak/value"
)

// Option configures an Encoder or Decoder; see the With* functions in
// this package and in codec for the full set.
type Option = codec.Option

// Config holds encoder/decoder settings. See codec.NewConfig.
type Config = codec.Config

// Result carries an encoded container's bytes plus any out-of-band
// material (stripped key array, encryption seed, CRC-32) the caller must
// track to decode it later.
type Result = codec.Result

// NewConfig creates a Config with jpak's defaults: little-endian,
// CRC-32 enabled, no compression, no encryption.
func NewConfig() *Config {
	return codec.NewConfig()
}

var (
	WithLittleEndian          = codec.WithLittleEndian
	WithBigEndian             = codec.WithBigEndian
	WithCompression           = codec.WithCompression
	WithCRC32                 = codec.WithCRC32
	WithEncryption            = codec.WithEncryption
	WithEncryptionKeyExcluded = codec.WithEncryptionKeyExcluded
	WithMaxDepth              = codec.WithMaxDepth
	WithStripKeys             = codec.WithStripKeys
	WithDecryptionSeed        = codec.WithDecryptionSeed
	WithKeysArray             = codec.WithKeysArray
	WithEnforceBigInt         = codec.WithEnforceBigInt
	WithMakeJSON              = codec.WithMakeJSON
	WithLogger                = codec.WithLogger
	WithLargeFileThreshold    = codec.WithLargeFileThreshold
)

// Encoder walks a value graph and produces a container.
type Encoder = codec.Encoder

// Decoder reconstructs a value graph from a container.
type Decoder = codec.Decoder

// NewEncoder creates an Encoder under cfg (a nil cfg uses NewConfig's
// defaults). With a nil registry no user-extension probes run; a
// KindUserExt value still encodes under its own tag.
func NewEncoder(cfg *Config, registry *ext.Registry) *Encoder {
	return codec.NewEncoder(cfg, registry)
}

// NewDecoder creates a Decoder under cfg (a nil cfg uses NewConfig's
// defaults). A nil registry means any user-extension tag decodes as an
// opaque value.Value of KindUserExt.
func NewDecoder(cfg *Config, registry *ext.Registry) *Decoder {
	return codec.NewDecoder(cfg, registry)
}

// Encode is a convenience wrapper for the common case: build a fresh
// Encoder under NewConfig's defaults (plus opts) and encode v in one
// call. For repeated encodes under the same configuration, construct an
// Encoder once with NewEncoder instead.
func Encode(v value.Value, opts ...Option) (*Result, error) {
	return NewEncoder(NewConfig(), nil).Encode(v, opts...)
}

// Decode is a convenience wrapper for the common case: build a fresh
// Decoder under NewConfig's defaults (plus opts) and decode data in one
// call. For repeated decodes under the same configuration, construct a
// Decoder once with NewDecoder instead.
func Decode(data []byte, opts ...Option) (value.Value, error) {
	return NewDecoder(NewConfig(), nil).Decode(data, opts...)
}

// EncodeToFile is Encoder.EncodeToFile's top-level convenience form: it builds a
// fresh Encoder under NewConfig's defaults (plus opts) and writes the
// container straight to path via the stream-mode sidecar pipeline, rather
// than returning the whole container as an in-memory buffer.
func EncodeToFile(v value.Value, path string, opts ...Option) (*Result, error) {
	return NewEncoder(NewConfig(), nil).EncodeToFile(v, path, opts...)
}

// DecodeFile is Decode's top-level convenience form: it builds a fresh
// Decoder under NewConfig's defaults (plus opts) and reads the container
// back from path, pulling only the header and the DataSize bytes that
// follow it off disk.
func DecodeFile(path string, opts ...Option) (value.Value, error) {
	return NewDecoder(NewConfig(), nil).DecodeFile(path, opts...)
}
