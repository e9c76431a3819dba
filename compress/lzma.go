package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaCompressor wraps ulikunitz/xz/lzma. Does not support dictionaries (the
// package's preset dictionary knob is a different concept from this
// catalog's shared, retrainable dictionary).
type lzmaCompressor struct{}

func (lzmaCompressor) ID() string { return "lzma" }

func (lzmaCompressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lzmaCompressor) Decompress(p []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

type lzmaFactory struct{}

func (lzmaFactory) ID() string { return "lzma" }

func (lzmaFactory) New(opts Options) (Compressor, error) {
	if len(opts.Dictionary) > 0 {
		return nil, ErrUnsupportedOperation
	}
	return lzmaCompressor{}, nil
}

func init() {
	Default.Register(lzmaFactory{})
}
