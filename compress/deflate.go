package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateCompressor wraps klauspost/compress/flate, a drop-in faster
// implementation of the standard DEFLATE algorithm. Does not support
// dictionaries.
type deflateCompressor struct{}

func (deflateCompressor) ID() string { return "deflate" }

func (deflateCompressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
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

func (deflateCompressor) Decompress(p []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(p))
	defer r.Close()
	return io.ReadAll(r)
}

type deflateFactory struct{}

func (deflateFactory) ID() string { return "deflate" }

func (deflateFactory) New(opts Options) (Compressor, error) {
	if len(opts.Dictionary) > 0 {
		return nil, ErrUnsupportedOperation
	}
	return deflateCompressor{}, nil
}

func init() {
	Default.Register(deflateFactory{})
}
