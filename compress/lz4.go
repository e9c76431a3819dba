package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Compressor wraps pierrec/lz4/v4, an LZ4 frame implementation. Does not
// support dictionaries.
type lz4Compressor struct{}

func (lz4Compressor) ID() string { return "lz4" }

func (lz4Compressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Compressor) Decompress(p []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(p))
	return io.ReadAll(r)
}

type lz4Factory struct{}

func (lz4Factory) ID() string { return "lz4" }

func (lz4Factory) New(opts Options) (Compressor, error) {
	if len(opts.Dictionary) > 0 {
		return nil, ErrUnsupportedOperation
	}
	return lz4Compressor{}, nil
}

func init() {
	Default.Register(lz4Factory{})
}
