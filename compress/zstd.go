package compress

import (
	"bytes"

	"github.com/klauspost/compress/zstd"
)

// zstdCompressor wraps a klauspost/compress/zstd encoder/decoder pair, the
// only dictionary-capable compressor in this catalog.
type zstdCompressor struct {
	dict []byte
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

func (z *zstdCompressor) ID() string { return "zstd" }

func (z *zstdCompressor) Compress(p []byte) ([]byte, error) {
	return z.enc.EncodeAll(p, nil), nil
}

func (z *zstdCompressor) Decompress(p []byte) ([]byte, error) {
	return z.dec.DecodeAll(p, nil)
}

// TrainDictionary builds a dictionary of at most size bytes from samples.
// klauspost/compress/zstd has no built-in dictionary trainer (unlike the C
// zstd library's ZDICT_trainFromBuffer), so this concatenates the samples in
// the order given until size bytes are collected and truncates the result
// there; sample content is not ranked or deduplicated. The output is a raw
// content dictionary (no entropy tables), which zstdFactory loads in the
// zstd format's raw-content dictionary mode.
func (z *zstdCompressor) TrainDictionary(samples [][]byte, size int) ([]byte, error) {
	var buf bytes.Buffer
	for _, s := range samples {
		if buf.Len() >= size {
			break
		}
		buf.Write(s)
	}
	out := buf.Bytes()
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

type zstdFactory struct{}

func (zstdFactory) ID() string { return "zstd" }

func (zstdFactory) New(opts Options) (Compressor, error) {
	var encOpts []zstd.EOption
	var decOpts []zstd.DOption
	if len(opts.Dictionary) > 0 {
		// Dictionaries from TrainDictionary are raw content without the zstd
		// dictionary magic header, so they are loaded as raw dictionaries.
		const rawDictID = 1
		encOpts = append(encOpts, zstd.WithEncoderDictRaw(rawDictID, opts.Dictionary))
		decOpts = append(decOpts, zstd.WithDecoderDictRaw(rawDictID, opts.Dictionary))
	}
	enc, err := zstd.NewWriter(nil, encOpts...)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, decOpts...)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &zstdCompressor{dict: opts.Dictionary, enc: enc, dec: dec}, nil
}

func init() {
	Default.Register(zstdFactory{})
}
