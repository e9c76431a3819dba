package compress

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// brotliCompressor wraps andybalholm/brotli. Does not support dictionaries.
type brotliCompressor struct{}

func (brotliCompressor) ID() string { return "brotli" }

func (brotliCompressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (brotliCompressor) Decompress(p []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(p))
	return io.ReadAll(r)
}

type brotliFactory struct{}

func (brotliFactory) ID() string { return "brotli" }

func (brotliFactory) New(opts Options) (Compressor, error) {
	if len(opts.Dictionary) > 0 {
		return nil, ErrUnsupportedOperation
	}
	return brotliCompressor{}, nil
}

func init() {
	Default.Register(brotliFactory{})
}
