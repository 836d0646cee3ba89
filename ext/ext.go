// Package ext implements the built-in extension types (Map, Set, Symbol,
// RegExp, TypedArray, OpaqueBuffer, Timestamp) and the caller-extensible
// registry for user-defined extension tags (0x00-0xCF).
package ext

import (
	"fmt"

	"github.com/jpakfmt/jpak/cursor"
	"github.com/jpakfmt/jpak/errs"
	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/value"
)

// ValueCodec is the subset of the container codec the extension layer
// needs to recurse into nested values (Map entries, Set elements). It is
// implemented by the codec package's internal encode and decode state
// types and passed in rather than imported, so this package does not
// depend on codec.
type ValueCodec interface {
	EncodeValue(w *cursor.Writer, v value.Value) error
	DecodeValue(r *cursor.Reader) (value.Value, error)
}

// EncodeBuiltin writes the extension payload (not including the leading
// tag byte or length prefix, which the caller's container framing owns)
// for any built-in extension Kind. ok is false if v.Kind is not a
// built-in extension.
func EncodeBuiltin(w *cursor.Writer, v value.Value, vc ValueCodec) (tag byte, ok bool, err error) {
	switch v.Kind {
	case value.KindMap:
		w.WriteUint32(uint32(len(v.Pairs)))
		for _, p := range v.Pairs {
			if err := vc.EncodeValue(w, p.Key); err != nil {
				return 0, true, err
			}
			if err := vc.EncodeValue(w, p.Val); err != nil {
				return 0, true, err
			}
		}
		return format.ExtMap, true, nil

	case value.KindSet:
		w.WriteUint32(uint32(len(v.Array)))
		for _, item := range v.Array {
			if err := vc.EncodeValue(w, item); err != nil {
				return 0, true, err
			}
		}
		return format.ExtSet, true, nil

	case value.KindSymbol:
		if v.Symbol.Global {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
		writeString(w, v.Symbol.Description)
		return format.ExtSymbol, true, nil

	case value.KindRegExp:
		writeString(w, v.RegExp.Pattern)
		writeString(w, v.RegExp.Flags)
		return format.ExtRegExp, true, nil

	case value.KindTypedArray:
		w.WriteByte(byte(v.TypedArray.Variant))
		w.WriteUint32(uint32(len(v.TypedArray.Raw)))
		w.WriteBytes(v.TypedArray.Raw)
		return format.ExtTypedArray, true, nil

	case value.KindOpaqueBuffer:
		w.WriteUint32(uint32(len(v.Buffer)))
		w.WriteBytes(v.Buffer)
		return format.ExtBuffer, true, nil

	case value.KindTimestamp:
		return encodeTimestamp(w, v.Timestamp), true, nil

	default:
		return 0, false, nil
	}
}

// DecodeBuiltin reads the payload of a built-in extension tag from r.
// payloadLen is the number of bytes the container framing reserved for
// this extension; r must be positioned at the start of the payload and
// ends exactly payloadLen bytes later.
func DecodeBuiltin(tag byte, r *cursor.Reader, payloadLen int, vc ValueCodec) (value.Value, error) {
	end := r.Pos() + payloadLen

	switch tag {
	case format.ExtMap:
		n, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		pairs := make([]value.Pair, 0, n)
		for i := uint32(0); i < n; i++ {
			k, err := vc.DecodeValue(r)
			if err != nil {
				return value.Value{}, err
			}
			if err := validateMapKey(k); err != nil {
				return value.Value{}, err
			}
			v, err := vc.DecodeValue(r)
			if err != nil {
				return value.Value{}, err
			}
			pairs = append(pairs, value.Pair{Key: k, Val: v})
		}
		return value.Map(pairs...), checkConsumed(r, end)

	case format.ExtSet:
		n, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		items := make([]value.Value, 0, n)
		for i := uint32(0); i < n; i++ {
			v, err := vc.DecodeValue(r)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.Set(items...), checkConsumed(r, end)

	case format.ExtSymbol:
		globalByte, err := r.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		desc, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewSymbol(globalByte != 0, desc), checkConsumed(r, end)

	case format.ExtRegExp:
		pattern, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		flags, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewRegExp(pattern, flags), checkConsumed(r, end)

	case format.ExtTypedArray:
		variantByte, err := r.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		n, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		raw, err := r.ReadBytes(int(n))
		if err != nil {
			return value.Value{}, err
		}
		rawCopy := append([]byte(nil), raw...)
		return value.NewTypedArray(format.TypedArrayVariant(variantByte), rawCopy), checkConsumed(r, end)

	case format.ExtBuffer:
		n, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		buf, err := r.ReadBytes(int(n))
		if err != nil {
			return value.Value{}, err
		}
		return value.NewOpaqueBuffer(append([]byte(nil), buf...)), checkConsumed(r, end)

	case format.ExtTimestamp32, format.ExtTimestamp64, format.ExtTimestamp96:
		v, err := decodeTimestamp(tag, r)
		if err != nil {
			return value.Value{}, err
		}
		return v, checkConsumed(r, end)

	default:
		return value.Value{}, fmt.Errorf("ext: %w: 0x%02X", errs.ErrInvalidExtensionTag, tag)
	}
}

// validateMapKey enforces the same KeyConversion rule Object keys follow:
// only strings, numbers, and symbols may serve as a Map key, and the
// literal key "__proto__" is forbidden.
func validateMapKey(k value.Value) error {
	switch k.Kind {
	case value.KindStr, value.KindKeyRef, value.KindInt, value.KindUint,
		value.KindFloat32, value.KindFloat64, value.KindSymbol:
	default:
		return fmt.Errorf("ext: %w: %s", errs.ErrKeyConversion, k.Kind)
	}
	if (k.Kind == value.KindStr || k.Kind == value.KindKeyRef) && k.Str == "__proto__" {
		return fmt.Errorf("ext: %w", errs.ErrForbiddenKey)
	}
	return nil
}

func checkConsumed(r *cursor.Reader, expectedEnd int) error {
	if r.Pos() != expectedEnd {
		return fmt.Errorf("ext: %w: expected to end at %d, ended at %d", errs.ErrSizeMismatch, expectedEnd, r.Pos())
	}

	return nil
}

func writeString(w *cursor.Writer, s string) {
	w.WriteUint32(uint32(len(s)))
	w.WriteBytes([]byte(s))
}

func readString(r *cursor.Reader) (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// encodeTimestamp picks the narrowest of the three built-in widths that
// losslessly represents the timestamp: 32-bit seconds-only, 64-bit
// seconds, or 96-bit seconds+nanoseconds.
func encodeTimestamp(w *cursor.Writer, ts value.Timestamp) byte {
	switch {
	case ts.Nsec == 0 && ts.Sec >= 0 && ts.Sec <= int64(^uint32(0)):
		w.WriteUint32(uint32(ts.Sec))
		return format.ExtTimestamp32
	case ts.Nsec == 0:
		w.WriteUint64(uint64(ts.Sec))
		return format.ExtTimestamp64
	default:
		w.WriteUint64(uint64(ts.Sec))
		w.WriteUint32(ts.Nsec)
		return format.ExtTimestamp96
	}
}

func decodeTimestamp(tag byte, r *cursor.Reader) (value.Value, error) {
	switch tag {
	case format.ExtTimestamp32:
		v, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTimestamp(int64(v), 0), nil

	case format.ExtTimestamp64:
		v, err := r.ReadUint64()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTimestamp(int64(v), 0), nil

	case format.ExtTimestamp96:
		sec, err := r.ReadUint64()
		if err != nil {
			return value.Value{}, err
		}
		nsec, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTimestamp(int64(sec), nsec), nil

	default:
		return value.Value{}, fmt.Errorf("ext: %w: 0x%02X", errs.ErrInvalidExtensionTag, tag)
	}
}
