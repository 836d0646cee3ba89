package codec

import (
	"fmt"

	"github.com/jpakfmt/jpak/cipher"
	"github.com/jpakfmt/jpak/compress"
	"github.com/jpakfmt/jpak/container"
	"github.com/jpakfmt/jpak/crc"
	"github.com/jpakfmt/jpak/cursor"
	"github.com/jpakfmt/jpak/endian"
	"github.com/jpakfmt/jpak/errs"
	"github.com/jpakfmt/jpak/ext"
	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/internal/options"
	"github.com/jpakfmt/jpak/intern"
	"github.com/jpakfmt/jpak/value"
)

// Encoder walks a value graph and produces a container. An Encoder is not
// reentrant: Encode detects a call already in flight and clones its
// Config into a fresh Encoder rather than mutating shared state.
type Encoder struct {
	cfg     *Config
	ext     *ext.Registry
	entered bool
}

// NewEncoder creates an Encoder. With a nil registry no user-extension
// probes run; a KindUserExt value still encodes under its own tag.
func NewEncoder(cfg *Config, registry *ext.Registry) *Encoder {
	if cfg == nil {
		cfg = NewConfig()
	}

	return &Encoder{cfg: cfg, ext: registry}
}

// Result carries everything an Encode call produces beyond the container
// bytes themselves: material the caller must persist out of band when
// strip-keys or strip-encryption-seed were requested.
type Result struct {
	// Bytes holds the whole encoded container. EncodeToFile leaves this
	// nil since the container was streamed to disk instead.
	Bytes []byte

	// KeysArray is populated iff strip-keys was requested; the caller
	// must supply it back to the Decoder via WithKeysArray.
	KeysArray []string

	// EncryptionSeed is the seed actually used, whether or not the
	// header carries it.
	EncryptionSeed uint32

	// CRC32 is the checksum stored in the header, zero if CRC-32 was
	// disabled.
	CRC32 uint32
}

// encodeState carries the per-call mutable state a single Encode
// invocation needs: the string/key interners and the current nesting
// depth. It implements ext.ValueCodec so the extension layer can recurse
// back into EncodeValue for Map/Set contents, writing into whichever
// writer the caller passes (the top-level value stream, or an
// extension's own isolated sub-buffer).
type encodeState struct {
	cfg    *Config
	reg    *ext.Registry
	engine endian.EndianEngine
	strs   *intern.Table
	keys   *intern.Table
	depth  int
}

var _ ext.ValueCodec = (*encodeState)(nil)

// DecodeValue exists only to satisfy ext.ValueCodec; the extension layer
// never calls it on an encodeState, since encoding never needs to decode.
func (s *encodeState) DecodeValue(r *cursor.Reader) (value.Value, error) {
	return value.Value{}, fmt.Errorf("codec: encodeState does not support DecodeValue")
}

// Encode serializes v into a container under e's configuration, optionally
// overridden by opts for this call only.
func (e *Encoder) Encode(v value.Value, opts ...Option) (*Result, error) {
	if e.entered {
		cloned := &Encoder{cfg: e.cfg.Clone(), ext: e.ext}
		return cloned.Encode(v, opts...)
	}

	e.entered = true
	defer func() { e.entered = false }()

	cfg := e.cfg.Clone()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, fmt.Errorf("codec: applying encoder option: %w", err)
	}

	st, valueBytes, strBytes, err := e.buildStreams(cfg, v)
	if err != nil {
		return nil, err
	}

	h, data, res, err := assemble(cfg, st, valueBytes, strBytes)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, h.Size()+len(data))
	out = append(out, h.Bytes()...)
	out = append(out, data...)
	res.Bytes = out

	return res, nil
}

// buildStreams walks v and produces the value-stream and string-stream
// byte sequences, in that order, per spec.md §4.3 steps 1-6. It is the
// half of Encode shared with EncodeToFile: buffer mode keeps both slices
// in memory for assemble to concatenate directly, while stream mode
// flushes each to its own sidecar file before recombining.
func (e *Encoder) buildStreams(cfg *Config, v value.Value) (*encodeState, []byte, []byte, error) {
	engine := endian.GetLittleEndianEngine()
	if !cfg.littleEndian {
		engine = endian.GetBigEndianEngine()
	}

	st := &encodeState{cfg: cfg, reg: e.ext, engine: engine}
	st.strs = intern.New()
	if cfg.stripKeys {
		st.keys = intern.New()
	}

	w := cursor.NewWriter(engine)
	defer w.Release()

	if err := st.EncodeValue(w, v); err != nil {
		return nil, nil, nil, err
	}
	w.WriteByte(format.TagFinished)

	valueBytes := append([]byte(nil), w.Bytes()...)

	strW := cursor.NewWriter(engine)
	defer strW.Release()
	writeStringArray(strW, st.strs.Values())
	strBytes := append([]byte(nil), strW.Bytes()...)

	return st, valueBytes, strBytes, nil
}

// assemble applies the fixed CRC -> compress -> encrypt pipeline (spec.md
// §4.3 step order, load-bearing per spec.md §1) to the concatenated
// value/string streams and returns the finished header plus the data that
// follows it. It does not prepend the header to the data; Encode appends
// them into one buffer, EncodeToFile streams them into a file separately.
func assemble(cfg *Config, st *encodeState, valueBytes, strBytes []byte) (*container.Header, []byte, *Result, error) {
	h := container.NewHeader(cfg.littleEndian)
	h.ValueStreamSize = uint64(len(valueBytes))
	h.StringStreamSize = uint64(len(strBytes))
	if cfg.stripKeys {
		h.Flags |= format.FlagKeysStripped
	}

	data := make([]byte, 0, len(valueBytes)+len(strBytes))
	data = append(data, valueBytes...)
	data = append(data, strBytes...)

	res := &Result{EncryptionSeed: cfg.seed}
	if cfg.stripKeys {
		res.KeysArray = st.keys.Values()
	}

	if int64(len(data)) > cfg.largeFileThreshold {
		h.Flags |= format.FlagLargeFile
	}

	if cfg.crc32 {
		h.Flags |= format.FlagCRC32
		h.CRC32 = crc.Sum32(data)
		res.CRC32 = h.CRC32
	}

	if cfg.compression == format.CompressionDeflate {
		h.Flags |= format.FlagCompressed
		compressor := compress.NewDeflateCompressor()
		compressed, err := compressor.Compress(data)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("codec: %w: deflate: %v", errs.ErrInflateFailure, err)
		}
		data = compressed
	}

	if cfg.encrypted {
		h.Flags |= format.FlagEncrypted
		if cfg.keyExcluded {
			h.Flags |= format.FlagEncryptionKeyExcluded
		} else {
			h.EncryptionSeed = cfg.seed
		}

		eng, err := cipher.New(cfg.seed)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("codec: %w: %v", errs.ErrCipherFailure, err)
		}
		data = eng.Encrypt(data)
	}

	h.DataSize = uint64(len(data))

	return h, data, res, nil
}

// EncodeValue dispatches one value into w, interning strings and keys as
// needed and recursing into container variants. It implements
// ext.ValueCodec; w is whichever writer the caller is currently
// targeting (the top-level value stream, or a built-in extension's own
// isolated sub-buffer).
func (s *encodeState) EncodeValue(w *cursor.Writer, v value.Value) error {
	if v.IsContainer() || v.Kind == value.KindMap || v.Kind == value.KindSet {
		s.depth++
		if s.depth > s.cfg.maxDepth {
			return fmt.Errorf("codec: %w: depth exceeds %d", errs.ErrOverflow, s.cfg.maxDepth)
		}
		defer func() { s.depth-- }()
	}

	switch v.Kind {
	case value.KindNull:
		w.WriteByte(format.TagNull)
	case value.KindUndefined:
		w.WriteByte(format.TagUndefined)
	case value.KindBool:
		if v.Bool {
			w.WriteByte(format.TagTrue)
		} else {
			w.WriteByte(format.TagFalse)
		}
	case value.KindInt:
		s.encodeInt(w, v.Int)
	case value.KindUint:
		s.encodeUint(w, v.Uint)
	case value.KindFloat32:
		w.WriteByte(format.TagFloat32)
		w.WriteFloat32(v.F32)
	case value.KindFloat64:
		w.WriteByte(format.TagFloat64)
		w.WriteFloat64(v.F64)
	case value.KindStr:
		s.encodeStringRef(w, v.Str)
	case value.KindArray:
		return s.encodeArray(w, v.Array)
	case value.KindObject:
		return s.encodeObject(w, v.Pairs)
	default:
		return s.encodeExt(w, v)
	}

	return nil
}

// encodeExt dispatches built-in extension kinds directly, then falls back
// to the user registry for KindUserExt (and anything a registered probe
// claims). Built-in Map/Set payloads are assembled in their own isolated
// sub-buffer so the extension frame's length prefix is always a true
// byte count, like every other extension.
func (s *encodeState) encodeExt(w *cursor.Writer, v value.Value) error {
	buf := cursor.NewWriter(s.engine)
	defer buf.Release()

	tag, ok, err := ext.EncodeBuiltin(buf, v, s)
	if err != nil {
		return err
	}
	if ok {
		writeExtFrame(w, tag, buf.Bytes())
		return nil
	}

	if s.reg != nil {
		if rtag, payload, ok := s.reg.Probe(v); ok {
			writeExtFrame(w, rtag, payload)
			return nil
		}
	}

	if v.Kind == value.KindUserExt {
		writeExtFrame(w, v.UserExt.Tag, v.UserExt.Bytes)
		return nil
	}

	return fmt.Errorf("codec: %w: %s", errs.ErrUnsupportedType, v.Kind)
}

func writeExtFrame(w *cursor.Writer, tag byte, payload []byte) {
	n := len(payload)
	switch {
	case n <= 0xFF:
		w.WriteByte(format.TagExt8)
		w.WriteUint8(uint8(n))
	case n <= 0xFFFF:
		w.WriteByte(format.TagExt16)
		w.WriteUint16(uint16(n))
	default:
		w.WriteByte(format.TagExt32)
		w.WriteUint32(uint32(n))
	}
	w.WriteByte(tag)
	w.WriteBytes(payload)
}

func (s *encodeState) encodeArray(w *cursor.Writer, items []value.Value) error {
	n := len(items)
	switch {
	case n < 16:
		w.WriteByte(format.ArrayFixMin + byte(n))
	case n <= 0xFF:
		w.WriteByte(format.TagArray8)
		w.WriteUint8(uint8(n))
	case n <= 0xFFFF:
		w.WriteByte(format.TagArray16)
		w.WriteUint16(uint16(n))
	default:
		w.WriteByte(format.TagArray32)
		w.WriteUint32(uint32(n))
	}

	for _, item := range items {
		if err := s.EncodeValue(w, item); err != nil {
			return err
		}
	}

	return nil
}

func (s *encodeState) encodeObject(w *cursor.Writer, pairs []value.Pair) error {
	n := len(pairs)
	switch {
	case n < 16:
		w.WriteByte(format.ObjectFixMin + byte(n))
	case n <= 0xFF:
		w.WriteByte(format.TagObject8)
		w.WriteUint8(uint8(n))
	case n <= 0xFFFF:
		w.WriteByte(format.TagObject16)
		w.WriteUint16(uint16(n))
	default:
		w.WriteByte(format.TagObject32)
		w.WriteUint32(uint32(n))
	}

	for _, p := range pairs {
		if p.Key.Str == "__proto__" {
			return fmt.Errorf("codec: %w", errs.ErrForbiddenKey)
		}
		s.encodeKey(w, p.Key.Str)
		if err := s.EncodeValue(w, p.Val); err != nil {
			return err
		}
	}

	return nil
}

// encodeKey emits an object key, routing through the out-of-band key
// interner when strip-keys is enabled and through the shared string
// interner otherwise.
func (s *encodeState) encodeKey(w *cursor.Writer, key string) {
	if s.keys == nil {
		s.encodeStringRef(w, key)
		return
	}

	idx := s.keys.Add(key)
	switch {
	case idx < 16:
		w.WriteByte(format.KeyFixMin + byte(idx))
	case idx <= 0xFF:
		w.WriteByte(format.TagKey8)
		w.WriteUint8(uint8(idx))
	case idx <= 0xFFFF:
		w.WriteByte(format.TagKey16)
		w.WriteUint16(uint16(idx))
	default:
		w.WriteByte(format.TagKey32)
		w.WriteUint32(uint32(idx))
	}
}

func (s *encodeState) encodeStringRef(w *cursor.Writer, str string) {
	idx := s.strs.Add(str)
	switch {
	case idx < 16:
		w.WriteByte(format.StrFixMin + byte(idx))
	case idx <= 0xFF:
		w.WriteByte(format.TagStr8)
		w.WriteUint8(uint8(idx))
	case idx <= 0xFFFF:
		w.WriteByte(format.TagStr16)
		w.WriteUint16(uint16(idx))
	default:
		w.WriteByte(format.TagStr32)
		w.WriteUint32(uint32(idx))
	}
}

// encodeInt selects the smallest signed representation: negative fixint
// for [-32,-1], positive fixint for [0,127], otherwise the narrowest
// explicit-width Int tag.
func (s *encodeState) encodeInt(w *cursor.Writer, i int64) {
	if i >= -32 && i < 0 {
		w.WriteByte(byte(0x100 + i))
		return
	}
	if i >= 0 && i <= 0x7F {
		w.WriteByte(byte(i))
		return
	}

	switch {
	case i >= -(1<<7) && i < (1<<7):
		w.WriteByte(format.TagInt8)
		w.WriteInt8(int8(i))
	case i >= -(1<<15) && i < (1<<15):
		w.WriteByte(format.TagInt16)
		w.WriteInt16(int16(i))
	case i >= -(1<<31) && i < (1<<31):
		w.WriteByte(format.TagInt32)
		w.WriteInt32(int32(i))
	default:
		w.WriteByte(format.TagInt64)
		w.WriteInt64(i)
	}
}

// encodeUint selects the narrowest unsigned width the value fits.
func (s *encodeState) encodeUint(w *cursor.Writer, u uint64) {
	switch {
	case u <= 0x7F:
		w.WriteByte(byte(u))
	case u <= 0xFF:
		w.WriteByte(format.TagUint8)
		w.WriteUint8(uint8(u))
	case u <= 0xFFFF:
		w.WriteByte(format.TagUint16)
		w.WriteUint16(uint16(u))
	case u <= 0xFFFFFFFF:
		w.WriteByte(format.TagUint32)
		w.WriteUint32(uint32(u))
	default:
		w.WriteByte(format.TagUint64)
		w.WriteUint64(u)
	}
}

// writeStringArray serializes the string table as a top-level array whose
// elements are raw, length-prefixed strings: unlike the value stream (where
// the B0-BF/STR8-32 tags mean "index into the string table"), inside the
// string stream itself those same tags mean "N bytes of UTF-8 follow",
// which is how the decoder tells the two contexts apart.
func writeStringArray(w *cursor.Writer, values []string) {
	n := len(values)
	switch {
	case n < 16:
		w.WriteByte(format.ArrayFixMin + byte(n))
	case n <= 0xFF:
		w.WriteByte(format.TagArray8)
		w.WriteUint8(uint8(n))
	case n <= 0xFFFF:
		w.WriteByte(format.TagArray16)
		w.WriteUint16(uint16(n))
	default:
		w.WriteByte(format.TagArray32)
		w.WriteUint32(uint32(n))
	}

	for _, str := range values {
		b := []byte(str)
		blen := len(b)
		switch {
		case blen < 16:
			w.WriteByte(format.StrFixMin + byte(blen))
		case blen <= 0xFF:
			w.WriteByte(format.TagStr8)
			w.WriteUint8(uint8(blen))
		case blen <= 0xFFFF:
			w.WriteByte(format.TagStr16)
			w.WriteUint16(uint16(blen))
		default:
			w.WriteByte(format.TagStr32)
			w.WriteUint32(uint32(blen))
		}
		w.WriteBytes(b)
	}

	w.WriteByte(format.TagFinished)
}
