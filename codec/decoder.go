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

// Decoder reconstructs a value graph from a container. A Decoder is not
// reentrant; see Encoder for the same clone-on-reentry strategy.
type Decoder struct {
	cfg     *Config
	ext     *ext.Registry
	entered bool
}

// NewDecoder creates a Decoder. A nil registry means any user-extension
// tag decodes as an opaque UserExt value.
func NewDecoder(cfg *Config, registry *ext.Registry) *Decoder {
	if cfg == nil {
		cfg = NewConfig()
	}

	return &Decoder{cfg: cfg, ext: registry}
}

// Decode parses a container and reconstructs its root value. CRC and
// payload-size mismatches are logged and do not fail the decode (per the
// format's warn-and-continue policy); a bad magic number, an unsupported
// major version, unresolvable string/key indices, or a corrupt cipher
// padding all abort with an error.
func (d *Decoder) Decode(data []byte, opts ...Option) (value.Value, error) {
	if d.entered {
		cloned := &Decoder{cfg: d.cfg.Clone(), ext: d.ext}
		return cloned.Decode(data, opts...)
	}

	d.entered = true
	defer func() { d.entered = false }()

	cfg := d.cfg.Clone()
	if err := options.Apply(cfg, opts...); err != nil {
		return value.Value{}, fmt.Errorf("codec: applying decoder option: %w", err)
	}

	h, headerLen, err := container.Parse(data)
	if err != nil {
		return value.Value{}, err
	}

	if len(data) < headerLen+int(h.DataSize) {
		return value.Value{}, fmt.Errorf("codec: %w: container truncated, have %d bytes need %d", errs.ErrInvalidHeaderSize, len(data), headerLen+int(h.DataSize))
	}
	payload := data[headerLen : headerLen+int(h.DataSize)]

	return d.decodePayload(h, payload, cfg)
}

// decodePayload runs the shared pipeline (decrypt, decompress, CRC check,
// value/string stream split, stack-machine decode) against an already
// isolated data payload. Both the in-memory Decode path and the
// file-backed DecodeFile path converge here once they have the header and
// the bytes it describes in hand.
func (d *Decoder) decodePayload(h *container.Header, payload []byte, cfg *Config) (value.Value, error) {
	if h.Flags&format.FlagEncrypted != 0 {
		seed := h.EncryptionSeed
		if h.Flags&format.FlagEncryptionKeyExcluded != 0 {
			if !cfg.seedSupplied {
				return value.Value{}, fmt.Errorf("codec: %w", errs.ErrMissingEncryptionSeed)
			}
			seed = cfg.seed
		}

		eng, err := cipher.New(seed)
		if err != nil {
			return value.Value{}, fmt.Errorf("codec: %w: %v", errs.ErrCipherFailure, err)
		}
		payload, err = eng.Decrypt(payload)
		if err != nil {
			return value.Value{}, fmt.Errorf("codec: %w: %v", errs.ErrCipherFailure, err)
		}
	}

	if h.Flags&format.FlagCompressed != 0 {
		out, err := compress.NewDeflateCompressor().Decompress(payload)
		if err != nil {
			return value.Value{}, fmt.Errorf("codec: %w: %v", errs.ErrInflateFailure, err)
		}
		payload = out
	}

	if h.Flags&format.FlagCRC32 != 0 {
		if got := crc.Sum32(payload); got != h.CRC32 {
			cfg.log("crc32 mismatch", "stored", h.CRC32, "computed", got)
		}
	}

	if uint64(len(payload)) != h.ValueStreamSize+h.StringStreamSize {
		cfg.log("value/string payload size mismatch", "header", h.ValueStreamSize+h.StringStreamSize, "actual", len(payload))
	}

	if h.Flags&format.FlagKeysStripped != 0 && len(cfg.keysArray) == 0 {
		return value.Value{}, fmt.Errorf("codec: %w", errs.ErrMissingKeysArray)
	}

	valEnd := int(h.ValueStreamSize)
	if valEnd > len(payload) {
		valEnd = len(payload)
	}
	valueBytes := payload[:valEnd]
	stringBytes := payload[valEnd:]

	engine := endian.GetLittleEndianEngine()
	if !h.LittleEndian {
		engine = endian.GetBigEndianEngine()
	}

	strs, err := readStringArray(cursor.NewReader(stringBytes, engine))
	if err != nil {
		return value.Value{}, fmt.Errorf("codec: string section: %w", err)
	}

	st := &decodeState{cfg: cfg, reg: d.ext, engine: engine, strs: intern.FromSlice(strs)}
	if h.Flags&format.FlagKeysStripped != 0 {
		st.keys = intern.FromSlice(cfg.keysArray)
	}

	r := cursor.NewReader(valueBytes, engine)
	root, err := st.DecodeValue(r)
	if err != nil {
		return value.Value{}, err
	}

	tag, err := r.ReadByte()
	if err != nil {
		return value.Value{}, fmt.Errorf("codec: value stream: %w", err)
	}
	if tag != format.TagFinished {
		return value.Value{}, fmt.Errorf("codec: value stream: %w: expected FINISHED, got 0x%02X", errs.ErrUnknownTag, tag)
	}

	if cfg.makeJSON {
		root = toJSONShape(root, cfg.enforceBigInt)
	}

	return root, nil
}

// decodeState carries the per-call state a single Decode invocation needs:
// the resolved string/key tables and the engine for sub-readers it spins
// up for extension payloads. It implements ext.ValueCodec so the
// extension layer can recurse back into DecodeValue for Map/Set contents.
type decodeState struct {
	cfg    *Config
	reg    *ext.Registry
	engine endian.EndianEngine
	strs   *intern.Table
	keys   *intern.Table
}

var _ ext.ValueCodec = (*decodeState)(nil)

// EncodeValue exists only to satisfy ext.ValueCodec; the extension layer
// never calls it on a decodeState, since decoding never needs to encode.
func (s *decodeState) EncodeValue(w *cursor.Writer, v value.Value) error {
	return fmt.Errorf("codec: decodeState does not support EncodeValue")
}

// frameKind discriminates the two container shapes the iterative stack
// machine opens; Map and Set (also containers) are handled instead by
// bounded recursion through the extension layer, since their wire form is
// a self-contained, count-prefixed payload rather than an open-ended
// stream position.
type frameKind int

const (
	frameArray frameKind = iota
	frameObject
)

type frame struct {
	kind       frameKind
	remaining  int
	items      []value.Value
	pairs      []value.Pair
	pendingKey *value.Value
}

// DecodeValue reads exactly one value starting at r's current position,
// iteratively unwinding nested Array/Object frames on a heap-allocated
// stack rather than recursing per nesting level. At most the configured
// maximum depth of Array/Object frames may be open at once; a Map or Set
// payload is decoded by a nested call that starts its own count. It
// implements ext.ValueCodec.
func (s *decodeState) DecodeValue(r *cursor.Reader) (value.Value, error) {
	var stack []*frame
	var root value.Value
	haveRoot := false

	for {
		tag, err := r.ReadByte()
		if err != nil {
			return value.Value{}, err
		}

		if tag == format.TagListEnd || tag == format.TagReserved {
			if len(stack) == 0 {
				return value.Value{}, fmt.Errorf("codec: LIST-END with no open container")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closed := closeFrame(top)

			if root, haveRoot, err = s.fold(stack, root, haveRoot, closed, &stack); err != nil {
				return value.Value{}, err
			}
			if len(stack) == 0 && haveRoot {
				return root, nil
			}
			continue
		}

		if tag == format.TagFinished {
			return value.Value{}, fmt.Errorf("codec: unexpected FINISHED tag mid-value")
		}

		v, opened, err := s.decodeTag(tag, r)
		if err != nil {
			return value.Value{}, err
		}
		if opened != nil {
			if len(stack) >= s.cfg.maxDepth {
				return value.Value{}, fmt.Errorf("codec: %w: depth exceeds %d", errs.ErrOverflow, s.cfg.maxDepth)
			}
			stack = append(stack, opened)
			continue
		}

		if root, haveRoot, err = s.fold(stack, root, haveRoot, v, &stack); err != nil {
			return value.Value{}, err
		}
		if len(stack) == 0 && haveRoot {
			return root, nil
		}
	}
}

// fold walks v up through any frames it completes, returning the final
// root once the outermost frame (or no frame at all) is satisfied.
// stackPtr lets a completed frame pop itself before folding its container
// value into whatever frame (if any) now sits on top.
func (s *decodeState) fold(stack []*frame, root value.Value, haveRoot bool, v value.Value, stackPtr *[]*frame) (value.Value, bool, error) {
	for {
		st := *stackPtr
		if len(st) == 0 {
			if haveRoot {
				return value.Value{}, false, fmt.Errorf("codec: multiple top-level values in one value stream")
			}
			return v, true, nil
		}

		top := st[len(st)-1]
		done, completed, err := foldInto(top, v)
		if err != nil {
			return value.Value{}, false, err
		}
		if !done {
			return root, haveRoot, nil
		}

		*stackPtr = st[:len(st)-1]
		v = completed
	}
}

func foldInto(f *frame, v value.Value) (done bool, completed value.Value, err error) {
	switch f.kind {
	case frameArray:
		f.items = append(f.items, v)
		f.remaining--
		if f.remaining == 0 {
			return true, value.Array(f.items...), nil
		}
		return false, value.Value{}, nil

	case frameObject:
		if f.pendingKey == nil {
			if err := validateKey(v); err != nil {
				return false, value.Value{}, err
			}
			if v.Str == "__proto__" {
				return false, value.Value{}, fmt.Errorf("codec: %w", errs.ErrForbiddenKey)
			}
			kv := v
			f.pendingKey = &kv
			return false, value.Value{}, nil
		}

		f.pairs = append(f.pairs, value.Pair{Key: *f.pendingKey, Val: v})
		f.pendingKey = nil
		f.remaining--
		if f.remaining == 0 {
			return true, value.Object(f.pairs...), nil
		}
		return false, value.Value{}, nil

	default:
		return false, value.Value{}, fmt.Errorf("codec: unknown frame kind")
	}
}

func closeFrame(f *frame) value.Value {
	switch f.kind {
	case frameArray:
		return value.Array(f.items...)
	case frameObject:
		return value.Object(f.pairs...)
	default:
		return value.Null
	}
}

// validateKey enforces the KeyConversion rule: only strings, numbers, and
// symbols may serve as an object/map key.
func validateKey(v value.Value) error {
	switch v.Kind {
	case value.KindStr, value.KindKeyRef, value.KindInt, value.KindUint,
		value.KindFloat32, value.KindFloat64, value.KindSymbol:
		return nil
	default:
		return fmt.Errorf("codec: %w: %s", errs.ErrKeyConversion, v.Kind)
	}
}

// decodeTag produces the value (or opens a new frame) for one just-read
// tag byte. Exactly one of the return value or the opened frame is
// meaningful.
func (s *decodeState) decodeTag(tag byte, r *cursor.Reader) (value.Value, *frame, error) {
	switch {
	case tag <= format.PosFixintMax:
		return value.Int(int64(tag)), nil, nil

	case tag >= format.NegFixintMin:
		return value.Int(int64(int8(tag))), nil, nil

	case tag >= format.ObjectFixMin && tag <= format.ObjectFixMax:
		return s.openObject(int(tag - format.ObjectFixMin))

	case tag >= format.ArrayFixMin && tag <= format.ArrayFixMax:
		return s.openArray(int(tag - format.ArrayFixMin))

	case tag >= format.KeyFixMin && tag <= format.KeyFixMax:
		v, err := s.resolveKey(int(tag - format.KeyFixMin))
		return v, nil, err

	case tag >= format.StrFixMin && tag <= format.StrFixMax:
		v, err := s.resolveStr(int(tag - format.StrFixMin))
		return v, nil, err
	}

	switch tag {
	case format.TagNull:
		return value.Null, nil, nil
	case format.TagUndefined:
		return value.Undefined, nil, nil
	case format.TagFalse:
		return value.Bool(false), nil, nil
	case format.TagTrue:
		return value.Bool(true), nil, nil

	case format.TagObject8, format.TagObject16, format.TagObject32:
		n, err := readSize(r, tag, format.TagObject8, format.TagObject16)
		if err != nil {
			return value.Value{}, nil, err
		}
		return s.openObject(n)

	case format.TagArray8, format.TagArray16, format.TagArray32:
		n, err := readSize(r, tag, format.TagArray8, format.TagArray16)
		if err != nil {
			return value.Value{}, nil, err
		}
		return s.openArray(n)

	case format.TagFloat32:
		f, err := r.ReadFloat32()
		return value.Float32(f), nil, err
	case format.TagFloat64:
		f, err := r.ReadFloat64()
		return value.Float64(f), nil, err

	case format.TagUint8:
		v, err := r.ReadUint8()
		return value.Uint(uint64(v)), nil, err
	case format.TagUint16:
		v, err := r.ReadUint16()
		return value.Uint(uint64(v)), nil, err
	case format.TagUint32:
		v, err := r.ReadUint32()
		return value.Uint(uint64(v)), nil, err
	case format.TagUint64:
		v, err := r.ReadUint64()
		return value.Uint(v), nil, err

	case format.TagInt8:
		v, err := r.ReadInt8()
		return value.Int(int64(v)), nil, err
	case format.TagInt16:
		v, err := r.ReadInt16()
		return value.Int(int64(v)), nil, err
	case format.TagInt32:
		v, err := r.ReadInt32()
		return value.Int(int64(v)), nil, err
	case format.TagInt64:
		v, err := r.ReadInt64()
		return value.Int(v), nil, err

	case format.TagKey8, format.TagKey16, format.TagKey32:
		idx, err := readSize(r, tag, format.TagKey8, format.TagKey16)
		if err != nil {
			return value.Value{}, nil, err
		}
		v, err := s.resolveKey(idx)
		return v, nil, err

	case format.TagStr8, format.TagStr16, format.TagStr32:
		idx, err := readSize(r, tag, format.TagStr8, format.TagStr16)
		if err != nil {
			return value.Value{}, nil, err
		}
		v, err := s.resolveStr(idx)
		return v, nil, err

	case format.TagExt8, format.TagExt16, format.TagExt32:
		return s.decodeExt(tag, r)

	default:
		return value.Value{}, nil, fmt.Errorf("codec: %w: 0x%02X", errs.ErrUnknownTag, tag)
	}
}

func (s *decodeState) openObject(n int) (value.Value, *frame, error) {
	if n == 0 {
		return value.Object(), nil, nil
	}
	return value.Value{}, &frame{kind: frameObject, remaining: n, pairs: make([]value.Pair, 0, n)}, nil
}

func (s *decodeState) openArray(n int) (value.Value, *frame, error) {
	if n == 0 {
		return value.Array(), nil, nil
	}
	return value.Value{}, &frame{kind: frameArray, remaining: n, items: make([]value.Value, 0, n)}, nil
}

func (s *decodeState) resolveKey(idx int) (value.Value, error) {
	if s.keys == nil {
		return value.Value{}, fmt.Errorf("codec: %w", errs.ErrMissingKeysArray)
	}
	name, ok := s.keys.At(idx)
	if !ok {
		return value.Value{}, fmt.Errorf("codec: %w: %d", errs.ErrInvalidKeyIndex, idx)
	}
	return value.Value{Kind: value.KindKeyRef, Index: idx, Str: name}, nil
}

func (s *decodeState) resolveStr(idx int) (value.Value, error) {
	str, ok := s.strs.At(idx)
	if !ok {
		return value.Value{}, fmt.Errorf("codec: %w: %d", errs.ErrInvalidStringIndex, idx)
	}
	return value.Value{Kind: value.KindStr, Index: idx, Str: str}, nil
}

// decodeExt reads an Ext8/16/32 frame: [length][ext-tag byte][length
// bytes], dispatching the payload to the built-in handlers, then the user
// registry, falling back to an opaque UserExt value for an unregistered
// tag (ExtensionHandlerMissing, per the format's non-fatal policy for
// this case).
func (s *decodeState) decodeExt(tag byte, r *cursor.Reader) (value.Value, *frame, error) {
	n, err := readSize(r, tag, format.TagExt8, format.TagExt16)
	if err != nil {
		return value.Value{}, nil, err
	}

	extTag, err := r.ReadByte()
	if err != nil {
		return value.Value{}, nil, err
	}

	payload, err := r.ReadBytes(n)
	if err != nil {
		return value.Value{}, nil, err
	}
	payloadCopy := append([]byte(nil), payload...)

	if extTag >= format.ExtMap {
		v, err := ext.DecodeBuiltin(extTag, cursor.NewReader(payloadCopy, s.engine), len(payloadCopy), s)
		return v, nil, err
	}

	if s.reg != nil {
		if v, err := s.reg.Decode(extTag, payloadCopy); err == nil {
			return v, nil, nil
		}
	}

	return value.NewUserExt(extTag, payloadCopy), nil, nil
}

// readSize reads the width implied by tag (u8/u16/u32, in that order
// across the three tag constants supplied) and returns it as an int.
func readSize(r *cursor.Reader, tag, tag8, tag16 byte) (int, error) {
	switch tag {
	case tag8:
		v, err := r.ReadUint8()
		return int(v), err
	case tag16:
		v, err := r.ReadUint16()
		return int(v), err
	default:
		v, err := r.ReadUint32()
		return int(v), err
	}
}

// readStringArray reads the string stream's sole top-level array, whose
// elements are raw length-prefixed UTF-8 strings (not index references),
// terminated by FINISHED.
func readStringArray(r *cursor.Reader) ([]string, error) {
	if r.Len() == 0 {
		return nil, nil
	}

	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	var n int
	switch {
	case tag >= format.ArrayFixMin && tag <= format.ArrayFixMax:
		n = int(tag - format.ArrayFixMin)
	case tag == format.TagArray8, tag == format.TagArray16, tag == format.TagArray32:
		n, err = readSize(r, tag, format.TagArray8, format.TagArray16)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("codec: %w: string stream must open with an array, got 0x%02X", errs.ErrUnknownTag, tag)
	}

	values := make([]string, 0, n)
	for i := 0; i < n; i++ {
		strTag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}

		var blen int
		switch {
		case strTag >= format.StrFixMin && strTag <= format.StrFixMax:
			blen = int(strTag - format.StrFixMin)
		case strTag == format.TagStr8, strTag == format.TagStr16, strTag == format.TagStr32:
			blen, err = readSize(r, strTag, format.TagStr8, format.TagStr16)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("codec: %w: string stream element must be a string, got 0x%02X", errs.ErrUnknownTag, strTag)
		}

		b, err := r.ReadBytes(blen)
		if err != nil {
			return nil, err
		}
		values = append(values, string(b))
	}

	end, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if end != format.TagFinished {
		return nil, fmt.Errorf("codec: %w: string stream missing FINISHED terminator", errs.ErrUnknownTag)
	}

	return values, nil
}
