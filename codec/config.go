package codec

import (
	"fmt"
	"log/slog"

	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/internal/options"
)

// defaultMaxDepth bounds nested container recursion so a malformed or
// hostile input cannot blow the goroutine stack.
const defaultMaxDepth = 512

// defaultLargeFileThreshold is the reconstructed-payload size above which
// Encode and EncodeToFile mark the header's LargeFile flag.
const defaultLargeFileThreshold = 8 << 20

// Config holds encoder/decoder settings, configured through functional
// options. NewConfig returns the defaults (little-endian, uncompressed,
// unencrypted, CRC-32 enabled, default recursion depth limit); the zero
// Config is big-endian with CRC-32 disabled and a depth limit of zero.
type Config struct {
	littleEndian bool
	compression  format.CompressionType
	crc32        bool
	encrypted    bool
	keyExcluded  bool
	stripKeys    bool
	seed         uint32
	maxDepth     int
	logger       *slog.Logger

	// largeFileThreshold governs the LargeFile flag set by Encode and
	// EncodeToFile; see
	// defaultLargeFileThreshold.
	largeFileThreshold int64

	// Decoder-only fields. Unused on the encode path.
	keysArray     []string
	enforceBigInt bool
	makeJSON      bool
	seedSupplied  bool
}

// NewConfig creates a Config with jpak's defaults: little-endian,
// CRC-32 enabled, no compression, no encryption.
func NewConfig() *Config {
	return &Config{
		littleEndian:       true,
		crc32:              true,
		maxDepth:           defaultMaxDepth,
		largeFileThreshold: defaultLargeFileThreshold,
	}
}

// Clone returns an independent copy of c, so an Encoder/Decoder can apply
// per-call option overrides without mutating shared configuration.
func (c *Config) Clone() *Config {
	cloned := *c
	return &cloned
}

// Option configures a Config.
type Option = options.Option[*Config]

// WithLittleEndian selects little-endian field encoding. It is the
// default.
func WithLittleEndian() Option {
	return options.NoError(func(c *Config) { c.littleEndian = true })
}

// WithBigEndian selects big-endian field encoding.
func WithBigEndian() Option {
	return options.NoError(func(c *Config) { c.littleEndian = false })
}

// WithCompression selects the header-wired compression algorithm. Only
// format.CompressionNone and format.CompressionDeflate are valid here;
// the auxiliary codecs (Zstd/S2/LZ4) are applied by the caller directly
// to a buffer before wrapping it in an OpaqueBuffer value.
func WithCompression(c format.CompressionType) Option {
	return options.New(func(cfg *Config) error {
		switch c {
		case format.CompressionNone, format.CompressionDeflate:
			cfg.compression = c
			return nil
		default:
			return fmt.Errorf("codec: %s is not a header-wired compression", c)
		}
	})
}

// WithCRC32 toggles whether the container carries a CRC-32 trailer. It
// defaults to enabled.
func WithCRC32(enabled bool) Option {
	return options.NoError(func(c *Config) { c.crc32 = enabled })
}

// WithEncryption enables CBC encryption under the cipher DeriveParams
// selects from seed, and sets the seed the container trailer stores.
func WithEncryption(seed uint32) Option {
	return options.NoError(func(c *Config) {
		c.encrypted = true
		c.seed = seed
	})
}

// WithEncryptionKeyExcluded omits the seed from the container trailer,
// for callers that distribute the seed out of band.
func WithEncryptionKeyExcluded(excluded bool) Option {
	return options.NoError(func(c *Config) { c.keyExcluded = excluded })
}

// WithMaxDepth overrides the nested-container recursion limit.
func WithMaxDepth(depth int) Option {
	return options.New(func(c *Config) error {
		if depth <= 0 {
			return fmt.Errorf("codec: max depth must be positive, got %d", depth)
		}
		c.maxDepth = depth
		return nil
	})
}

// WithStripKeys routes object keys through an out-of-band key table
// rather than the shared string table. The caller must persist the key
// array the Encoder returns and supply it back via WithKeysArray to
// decode the result.
func WithStripKeys(strip bool) Option {
	return options.NoError(func(c *Config) { c.stripKeys = strip })
}

// WithDecryptionSeed supplies the seed a Decoder needs when the container
// was encoded with the encryption seed excluded from its header.
func WithDecryptionSeed(seed uint32) Option {
	return options.NoError(func(c *Config) {
		c.seed = seed
		c.seedSupplied = true
	})
}

// WithKeysArray supplies the out-of-band key array a Decoder needs when
// the container was encoded with strip-keys enabled.
func WithKeysArray(keys []string) Option {
	return options.NoError(func(c *Config) { c.keysArray = keys })
}

// WithEnforceBigInt makes the WithMakeJSON pass render every Int/Uint as a
// decimal string, not only those outside the float64-safe range. Decoded
// integers are always full-width int64/uint64, so without WithMakeJSON
// this option has no effect.
func WithEnforceBigInt(enforce bool) Option {
	return options.NoError(func(c *Config) { c.enforceBigInt = enforce })
}

// WithMakeJSON post-processes a decoded value graph into a pure
// JSON-compatible shape: Undefined becomes the string "undefined", RegExp
// becomes {regexSrc, regexFlags}, Symbol becomes {symbolGlobal, symbolKey},
// Set becomes an array, and Map becomes an array of [key, value] pairs.
func WithMakeJSON(enabled bool) Option {
	return options.NoError(func(c *Config) { c.makeJSON = enabled })
}

// WithLogger attaches a structured logger the encoder/decoder uses for
// diagnostic (non-error-path) logging. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) { c.logger = logger })
}

// WithLargeFileThreshold overrides the reconstructed-payload size above
// which Encode and EncodeToFile set the header's LargeFile flag.
func WithLargeFileThreshold(bytes int64) Option {
	return options.New(func(c *Config) error {
		if bytes <= 0 {
			return fmt.Errorf("codec: large file threshold must be positive, got %d", bytes)
		}
		c.largeFileThreshold = bytes
		return nil
	})
}

func (c *Config) log(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
