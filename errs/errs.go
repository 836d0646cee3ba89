// Package errs defines the sentinel error values returned across the jpak
// codec. Callers should match against these with errors.Is; call sites wrap
// them with fmt.Errorf("...: %w", errs.ErrXxx) to add context.
package errs

import "errors"

var (
	// ErrBadMagic is returned when the leading two bytes of a container do
	// not match the little- or big-endian magic sequence.
	ErrBadMagic = errors.New("jpak: bad magic number")

	// ErrUnsupportedVersion is returned by container.Parse, and ends the
	// decode, when the container's major version differs from
	// format.VersionMajor. It is not downgraded to a Warning.
	ErrUnsupportedVersion = errors.New("jpak: unsupported format version")

	// ErrBadFlagsState covers flag bytes the header parser rejects: a
	// reserved bit set, or EncryptionKeyExcluded without Encrypted. A
	// missing keys array or seed has its own error (ErrMissingKeysArray,
	// ErrMissingEncryptionSeed).
	ErrBadFlagsState = errors.New("jpak: flags require material the caller did not supply")

	// ErrUnsupportedType is returned by the encoder when a value has no
	// representation in the wire format and no extension handler claims it.
	ErrUnsupportedType = errors.New("jpak: unsupported value type")

	// ErrOverflow is returned when a container/extension payload size
	// exceeds 2^32-1, or when the value graph's open-container depth
	// exceeds the configured bound.
	ErrOverflow = errors.New("jpak: size or depth overflow")

	// ErrUnknownTag is returned by the decoder for a leading tag byte that
	// is not assigned any meaning and is not tolerated for compatibility.
	ErrUnknownTag = errors.New("jpak: unknown tag byte")

	// ErrKeyConversion is returned when a map/object key is not a
	// string, number, or symbol.
	ErrKeyConversion = errors.New("jpak: key cannot be converted to a map/object key")

	// ErrForbiddenKey is returned when the literal key "__proto__" is used
	// as an object or map key.
	ErrForbiddenKey = errors.New("jpak: \"__proto__\" is not a permitted key")

	// ErrCRCMismatch is surfaced as a warning when the stored CRC32 does not
	// match the recomputed CRC32 of the decoded payload.
	ErrCRCMismatch = errors.New("jpak: CRC32 mismatch")

	// ErrSizeMismatch is surfaced as a warning when the post-pipeline byte
	// count does not equal VALUE_SIZE+STR_SIZE from the header.
	ErrSizeMismatch = errors.New("jpak: value/string payload size mismatch")

	// ErrCipherFailure covers any failure in the cipher pipeline: bad
	// padding, short ciphertext, or a missing key/seed.
	ErrCipherFailure = errors.New("jpak: cipher failure")

	// ErrInflateFailure covers any failure inflating a deflate frame.
	ErrInflateFailure = errors.New("jpak: inflate failure")

	// ErrInvalidExtensionTag is returned by ext.Registry.Register when the
	// tag falls outside 0x00..0xCF, and by ext.DecodeBuiltin for a tag that
	// is not a built-in extension.
	ErrInvalidExtensionTag = errors.New("jpak: extension tag must be in 0x00..0xCF")

	// ErrExtensionTagConflict is returned by ext.Registry.Register
	// when a handler is already registered for the tag.
	ErrExtensionTagConflict = errors.New("jpak: extension tag already registered")

	// ErrReentrant is returned when an Encoder or Decoder is invoked while
	// already in the middle of encoding/decoding.
	ErrReentrant = errors.New("jpak: instance is already encoding or decoding")

	// ErrInvalidHeaderSize is returned when a header buffer is smaller
	// than the fixed header prefix.
	ErrInvalidHeaderSize = errors.New("jpak: invalid header size")

	// ErrMissingKeysArray is returned by the decoder when KeysStripped is
	// set but the caller supplied no keys array.
	ErrMissingKeysArray = errors.New("jpak: KeysStripped set but no keys array supplied")

	// ErrMissingEncryptionSeed is returned by the decoder when
	// EncryptionKeyExcluded is set but the caller supplied no seed.
	ErrMissingEncryptionSeed = errors.New("jpak: EncryptionKeyExcluded set but no seed supplied")

	// ErrInvalidKeyIndex / ErrInvalidStringIndex are returned when a
	// key/string index in the value stream has no matching dictionary
	// entry.
	ErrInvalidKeyIndex    = errors.New("jpak: key index out of range")
	ErrInvalidStringIndex = errors.New("jpak: string index out of range")

	// ErrStreamIO covers sidecar/file-backed failures specific to
	// EncodeToFile/DecodeFile: a sidecar create/write/rename failing, or
	// the output path being unreadable back.
	ErrStreamIO = errors.New("jpak: stream-mode file I/O failure")
)

// Warning wraps an error kind as non-fatal. No decode path returns one:
// the decoder logs a CRC mismatch or a size mismatch and continues, and a
// version mismatch is the fatal ErrUnsupportedVersion. Structural failures
// are never wrapped in Warning.
type Warning struct {
	Err error
}

func (w *Warning) Error() string { return w.Err.Error() }
func (w *Warning) Unwrap() error { return w.Err }

// NewWarning wraps err as a non-fatal Warning.
func NewWarning(err error) *Warning { return &Warning{Err: err} }
