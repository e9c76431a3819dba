package compress

import (
	"github.com/golang/snappy"
)

// snappyCompressor wraps golang/snappy's block API. Grounded on the pack's
// dgraph restore map reader/writer, which streams snappy frames over backup
// chunks; this module only ever compresses one value at a time, so the
// simpler block Encode/Decode pair is enough. Does not support dictionaries.
type snappyCompressor struct{}

func (snappyCompressor) ID() string { return "snappy" }

func (snappyCompressor) Compress(p []byte) ([]byte, error) {
	return snappy.Encode(nil, p), nil
}

func (snappyCompressor) Decompress(p []byte) ([]byte, error) {
	return snappy.Decode(nil, p)
}

type snappyFactory struct{}

func (snappyFactory) ID() string { return "snappy" }

func (snappyFactory) New(opts Options) (Compressor, error) {
	if len(opts.Dictionary) > 0 {
		return nil, ErrUnsupportedOperation
	}
	return snappyCompressor{}, nil
}

func init() {
	Default.Register(snappyFactory{})
}
