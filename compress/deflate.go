package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateChunkSize is the maximum number of plaintext bytes deflated into a
// single framed chunk.
const deflateChunkSize = 512 * 1024

// DeflateCompressor implements the framing the container header's
// Compressed flag addresses: the value stream is split into chunks of at
// most deflateChunkSize plaintext bytes, each written as
//
//	[u32 LE deflated length][deflated bytes]
//
// so a decoder can process the stream without inflating it in one shot.
type DeflateCompressor struct{}

var _ Codec = (*DeflateCompressor)(nil)

// NewDeflateCompressor creates a DeflateCompressor.
func NewDeflateCompressor() DeflateCompressor {
	return DeflateCompressor{}
}

// Compress deflates data in deflateChunkSize-sized chunks and frames each
// with its length prefix.
func (c DeflateCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var out bytes.Buffer
	var lenBuf [4]byte

	for off := 0; off < len(data); off += deflateChunkSize {
		end := off + deflateChunkSize
		if end > len(data) {
			end = len(data)
		}

		var chunk bytes.Buffer
		fw, err := flate.NewWriter(&chunk, flate.DefaultCompression)
		if err != nil {
			return nil, fmt.Errorf("compress: deflate writer: %w", err)
		}
		if _, err := fw.Write(data[off:end]); err != nil {
			return nil, fmt.Errorf("compress: deflate write: %w", err)
		}
		if err := fw.Close(); err != nil {
			return nil, fmt.Errorf("compress: deflate close: %w", err)
		}

		binary.LittleEndian.PutUint32(lenBuf[:], uint32(chunk.Len()))
		out.Write(lenBuf[:])
		out.Write(chunk.Bytes())
	}

	return out.Bytes(), nil
}

// Decompress reads and inflates each framed chunk in sequence.
func (c DeflateCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var out bytes.Buffer
	r := bytes.NewReader(data)

	for r.Len() > 0 {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("compress: chunk length: %w", err)
		}
		chunkLen := binary.LittleEndian.Uint32(lenBuf[:])

		chunk := make([]byte, chunkLen)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("compress: chunk body: %w", err)
		}

		fr := flate.NewReader(bytes.NewReader(chunk))
		if _, err := io.Copy(&out, fr); err != nil {
			fr.Close()
			return nil, fmt.Errorf("compress: inflate: %w", err)
		}
		fr.Close()
	}

	return out.Bytes(), nil
}
