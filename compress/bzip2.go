package compress

import (
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// bzip2Compressor wraps dsnet/compress/bzip2, a pure-Go bzip2 codec (grounded
// on the pack's vendored dsnet/compress bzip2 writer). Does not support
// dictionaries.
type bzip2Compressor struct{}

func (bzip2Compressor) ID() string { return "bzip2" }

func (bzip2Compressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
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

func (bzip2Compressor) Decompress(p []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(p), nil)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type bzip2Factory struct{}

func (bzip2Factory) ID() string { return "bzip2" }

func (bzip2Factory) New(opts Options) (Compressor, error) {
	if len(opts.Dictionary) > 0 {
		return nil, ErrUnsupportedOperation
	}
	return bzip2Compressor{}, nil
}

func init() {
	Default.Register(bzip2Factory{})
}
