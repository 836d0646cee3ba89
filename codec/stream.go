package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/jpakfmt/jpak/container"
	"github.com/jpakfmt/jpak/errs"
	"github.com/jpakfmt/jpak/format"
	"github.com/jpakfmt/jpak/internal/options"
	"github.com/jpakfmt/jpak/value"
)

// sidecarSet names the temporary files stream mode creates alongside the
// destination path: ".values" and ".strings" receive the two streams the
// encoder produces, ".comp" receives the data after the CRC/compress/encrypt
// pipeline has run over the two streams in memory, and ".header" holds the
// finished preamble just before it is streamed into place ahead of that
// data. Every file here is removed on every exit path, success or failure.
type sidecarSet struct {
	values  string
	strings string
	comp    string
	header  string
}

func newSidecarSet(path string) sidecarSet {
	return sidecarSet{
		values:  path + ".values",
		strings: path + ".strings",
		comp:    path + ".comp",
		header:  path + ".header",
	}
}

func (s sidecarSet) cleanup() {
	for _, p := range []string{s.values, s.strings, s.comp, s.header} {
		_ = os.Remove(p)
	}
}

func writeSidecar(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("codec: %w: writing %s: %v", errs.ErrStreamIO, path, err)
	}

	return nil
}

func streamConcat(dst *os.File, srcPaths ...string) error {
	for _, p := range srcPaths {
		src, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("codec: %w: opening %s: %v", errs.ErrStreamIO, p, err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("codec: %w: copying %s: %v", errs.ErrStreamIO, p, err)
		}
	}

	return nil
}

// EncodeToFile is Encode's file-backed counterpart. Stream mode is always
// selected here, since supplying an output path is itself the mode-select
// condition (spec.md §5's rule (a)): the value and string streams are
// flushed to their own sidecar files, the CRC -> compress -> encrypt
// pipeline runs over their in-memory concatenation and its output is
// written to a data sidecar, and the header is finally streamed into the
// destination path ahead of that data file's bytes. The sidecars are removed before EncodeToFile
// returns, on both the success and the error path.
//
// Result.Bytes is left nil; the container lives at path, not in memory.
func (e *Encoder) EncodeToFile(v value.Value, path string, opts ...Option) (*Result, error) {
	if e.entered {
		cloned := &Encoder{cfg: e.cfg.Clone(), ext: e.ext}
		return cloned.EncodeToFile(v, path, opts...)
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

	sc := newSidecarSet(path)
	defer sc.cleanup()

	if err := writeSidecar(sc.values, valueBytes); err != nil {
		return nil, err
	}
	if err := writeSidecar(sc.strings, strBytes); err != nil {
		return nil, err
	}

	h, data, res, err := assemble(cfg, st, valueBytes, strBytes)
	if err != nil {
		return nil, err
	}
	if err := writeSidecar(sc.comp, data); err != nil {
		return nil, err
	}
	if err := writeSidecar(sc.header, h.Bytes()); err != nil {
		return nil, err
	}

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("codec: %w: creating %s: %v", errs.ErrStreamIO, path, err)
	}
	defer out.Close()

	if err := streamConcat(out, sc.header, sc.comp); err != nil {
		return nil, err
	}

	return res, nil
}

// DecodeFile is Decode's file-backed counterpart. Stream mode is always
// selected here for the same reason EncodeToFile always selects it: the
// caller supplied a path rather than a buffer. Only the fixed header
// prefix is read up front; DataSize (spec.md's "a stream-mode reader uses
// this to know exactly how many trailing bytes to pull off the wire")
// then tells DecodeFile exactly how much of the file to read before
// handing the result to the same decrypt/decompress/decode pipeline
// Decode uses.
func (d *Decoder) DecodeFile(path string, opts ...Option) (value.Value, error) {
	if d.entered {
		cloned := &Decoder{cfg: d.cfg.Clone(), ext: d.ext}
		return cloned.DecodeFile(path, opts...)
	}

	d.entered = true
	defer func() { d.entered = false }()

	cfg := d.cfg.Clone()
	if err := options.Apply(cfg, opts...); err != nil {
		return value.Value{}, fmt.Errorf("codec: applying decoder option: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return value.Value{}, fmt.Errorf("codec: %w: opening %s: %v", errs.ErrStreamIO, path, err)
	}
	defer f.Close()

	maxHeaderSize := format.FixedHeaderSize + 4 + 4
	headerBuf := make([]byte, maxHeaderSize)
	n, err := io.ReadFull(f, headerBuf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return value.Value{}, fmt.Errorf("codec: %w: reading header from %s: %v", errs.ErrStreamIO, path, err)
	}
	headerBuf = headerBuf[:n]

	h, headerLen, err := container.Parse(headerBuf)
	if err != nil {
		return value.Value{}, err
	}

	if _, err := f.Seek(int64(headerLen), io.SeekStart); err != nil {
		return value.Value{}, fmt.Errorf("codec: %w: seeking past header in %s: %v", errs.ErrStreamIO, path, err)
	}

	payload := make([]byte, h.DataSize)
	if _, err := io.ReadFull(f, payload); err != nil {
		return value.Value{}, fmt.Errorf("codec: %w: container truncated reading %s: %v", errs.ErrStreamIO, path, err)
	}

	return d.decodePayload(h, payload, cfg)
}
