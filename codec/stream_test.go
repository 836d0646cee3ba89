package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeToFileDecodeFileRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		opts []Option
	}{
		{"plain object", value.Object(
			value.ObjectPair("name", value.Str("jpak")),
			value.ObjectPair("version", value.Int(1)),
		), nil},
		{"compressed", value.Array(value.Str("a"), value.Str("b"), value.Int(3)),
			[]Option{WithCompression(format.CompressionDeflate)}},
		{"encrypted", value.Str("secret payload"),
			[]Option{WithEncryption(0xC0FFEE)}},
		{"compressed and encrypted", value.Object(value.ObjectPair("x", value.Int(7))),
			[]Option{WithCompression(format.CompressionDeflate), WithEncryption(42)}},
		{"strip keys", value.Object(
			value.ObjectPair("a", value.Int(1)),
			value.ObjectPair("b", value.Int(2)),
		), []Option{WithStripKeys(true)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out.jpak")

			enc := NewEncoder(NewConfig(), nil)
			res, err := enc.EncodeToFile(tc.v, path, tc.opts...)
			require.NoError(t, err)
			assert.Nil(t, res.Bytes)

			for _, sidecar := range []string{".values", ".strings", ".comp", ".header"} {
				_, statErr := os.Stat(path + sidecar)
				assert.Truef(t, os.IsNotExist(statErr), "sidecar %s should be cleaned up", sidecar)
			}

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())

			decOpts := append([]Option(nil), tc.opts...)
			if res.KeysArray != nil {
				decOpts = append(decOpts, WithKeysArray(res.KeysArray))
			}

			dec := NewDecoder(NewConfig(), nil)
			got, err := dec.DecodeFile(path, decOpts...)
			require.NoError(t, err)

			want, err := NewEncoder(NewConfig(), nil).Encode(tc.v, tc.opts...)
			require.NoError(t, err)
			bufGot, err := NewDecoder(NewConfig(), nil).Decode(want.Bytes, decOpts...)
			require.NoError(t, err)
			assert.Equal(t, bufGot, got)
		})
	}
}

func TestEncodeToFileSetsLargeFileFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.jpak")

	items := make([]value.Value, 0, 4096)
	for i := 0; i < 4096; i++ {
		items = append(items, value.Str("a moderately long repeated padding string"))
	}

	enc := NewEncoder(NewConfig(), nil)
	_, err := enc.EncodeToFile(value.Array(items...), path, WithLargeFileThreshold(64))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotZero(t, raw[4]&format.FlagLargeFile)
}

func TestDecodeFileMissingFile(t *testing.T) {
	dec := NewDecoder(NewConfig(), nil)
	_, err := dec.DecodeFile(filepath.Join(t.TempDir(), "missing.jpak"))
	assert.Error(t, err)
}

func TestEncodeToFileCleansUpSidecarsOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent-subdir", "bad.jpak")

	enc := NewEncoder(NewConfig(), nil)
	_, err := enc.EncodeToFile(value.Str("x"), path)
	require.Error(t, err)

	for _, sidecar := range []string{".values", ".strings", ".comp", ".header"} {
		_, statErr := os.Stat(path + sidecar)
		assert.True(t, os.IsNotExist(statErr))
	}
}
