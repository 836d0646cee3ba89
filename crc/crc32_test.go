package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum32KnownValue(t *testing.T) {
	assert.Equal(t, uint32(0), Sum32(nil))
	assert.Equal(t, uint32(0xCBF43926), Sum32([]byte("123456789")))
}

func TestContinueMatchesWholeSum(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	whole := Sum32(data)

	split := len(data) / 2
	partial := Sum32(data[:split])
	resumed := Continue(partial, data[split:])

	assert.Equal(t, whole, resumed)
}

func TestWriterAccumulates(t *testing.T) {
	w := NewWriter()
	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("def"))

	assert.Equal(t, Sum32([]byte("abcdef")), w.Sum32())

	w.Reset()
	assert.Equal(t, uint32(0), w.Sum32())
}
