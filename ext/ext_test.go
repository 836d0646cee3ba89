package ext

import (
	"testing"

	"github.com/jpakfmt/jpak/cursor"
	"github.com/jpakfmt/jpak/endian"
	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatValueCodec handles only scalar leaf values, enough to exercise
// Map/Set recursion in tests without pulling in the full container codec.
type flatValueCodec struct{}

func (flatValueCodec) EncodeValue(w *cursor.Writer, v value.Value) error {
	switch v.Kind {
	case value.KindInt:
		w.WriteByte(1)
		w.WriteInt64(v.Int)
	case value.KindStr:
		w.WriteByte(2)
		writeString(w, v.Str)
	default:
		panic("unsupported kind in test codec")
	}
	return nil
}

func (flatValueCodec) DecodeValue(r *cursor.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case 1:
		v, err := r.ReadInt64()
		return value.Int(v), err
	case 2:
		s, err := readString(r)
		return value.Str(s), err
	default:
		panic("unsupported tag in test codec")
	}
}

func roundTrip(t *testing.T, v value.Value) (byte, value.Value) {
	t.Helper()
	w := cursor.NewWriter(endian.GetLittleEndianEngine())
	defer w.Release()

	tag, ok, err := EncodeBuiltin(w, v, flatValueCodec{})
	require.NoError(t, err)
	require.True(t, ok)

	r := cursor.NewReader(w.Bytes(), endian.GetLittleEndianEngine())
	out, err := DecodeBuiltin(tag, r, r.Len(), flatValueCodec{})
	require.NoError(t, err)

	return tag, out
}

func TestMapRoundTrip(t *testing.T) {
	v := value.Map(value.ObjectPair("a", value.Int(1)), value.ObjectPair("b", value.Int(2)))
	tag, out := roundTrip(t, v)

	assert.Equal(t, format.ExtMap, tag)
	require.Equal(t, value.KindMap, out.Kind)
	require.Len(t, out.Pairs, 2)
	assert.Equal(t, "a", out.Pairs[0].Key.Str)
	assert.Equal(t, int64(1), out.Pairs[0].Val.Int)
}

func TestSetRoundTrip(t *testing.T) {
	v := value.Set(value.Int(1), value.Int(2), value.Int(3))
	tag, out := roundTrip(t, v)

	assert.Equal(t, format.ExtSet, tag)
	require.Len(t, out.Array, 3)
	assert.Equal(t, int64(3), out.Array[2].Int)
}

func TestSymbolRoundTrip(t *testing.T) {
	v := value.NewSymbol(true, "well-known")
	_, out := roundTrip(t, v)
	assert.Equal(t, v.Symbol, out.Symbol)
}

func TestRegExpRoundTrip(t *testing.T) {
	v := value.NewRegExp("a+b*", "gi")
	_, out := roundTrip(t, v)
	assert.Equal(t, v.RegExp, out.RegExp)
}

func TestTypedArrayRoundTrip(t *testing.T) {
	v := value.NewTypedArray(format.TypedArrayFloat64, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	_, out := roundTrip(t, v)
	assert.Equal(t, v.TypedArray, out.TypedArray)
}

func TestOpaqueBufferRoundTrip(t *testing.T) {
	v := value.NewOpaqueBuffer([]byte("raw bytes"))
	_, out := roundTrip(t, v)
	assert.Equal(t, v.Buffer, out.Buffer)
}

func TestTimestampWidthSelection(t *testing.T) {
	cases := []struct {
		ts      value.Timestamp
		wantTag byte
	}{
		{value.Timestamp{Sec: 100, Nsec: 0}, format.ExtTimestamp32},
		{value.Timestamp{Sec: int64(^uint32(0)) + 1, Nsec: 0}, format.ExtTimestamp64},
		{value.Timestamp{Sec: 100, Nsec: 500}, format.ExtTimestamp96},
	}

	for _, c := range cases {
		v := value.Value{Kind: value.KindTimestamp, Timestamp: c.ts}
		tag, out := roundTrip(t, v)
		assert.Equal(t, c.wantTag, tag)
		assert.Equal(t, c.ts, out.Timestamp)
	}
}

func TestRegistryProbeAndDecode(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(0x01,
		func(v value.Value) ([]byte, bool) {
			if v.Kind == value.KindUserExt && v.UserExt.Tag == 0x01 {
				return v.UserExt.Bytes, true
			}
			return nil, false
		},
		func(tag byte, payload []byte) (value.Value, error) {
			return value.NewUserExt(tag, payload), nil
		},
	)
	require.NoError(t, err)

	v := value.NewUserExt(0x01, []byte("payload"))
	tag, payload, ok := reg.Probe(v)
	require.True(t, ok)
	assert.Equal(t, byte(0x01), tag)

	out, err := reg.Decode(tag, payload)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(out.UserExt.Bytes))
}

func TestRegistryRejectsOutOfRangeTag(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(format.ExtMap, nil, nil)
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicateTag(t *testing.T) {
	reg := NewRegistry()
	probe := func(v value.Value) ([]byte, bool) { return nil, false }
	decoder := func(tag byte, payload []byte) (value.Value, error) { return value.Value{}, nil }

	require.NoError(t, reg.Register(0x05, probe, decoder))
	assert.Error(t, reg.Register(0x05, probe, decoder))
}
