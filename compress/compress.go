// Package compress implements the compressor abstraction: a factory
// producing named compressor instances (optionally dictionary-trained) that
// sit between the codec stack and the backend's raw bytes column.
package compress

import "errors"

// ErrUnsupportedOperation is returned when a capability is invoked on a
// compressor that does not support it, e.g. building a "deflate" or "lz4"
// compressor with a non-empty Options.Dictionary.
var ErrUnsupportedOperation = errors.New("compress: unsupported operation")

// Compressor is a reversible byte<->byte transform, optionally built with a
// shared dictionary. Entries compressed with dictionary D can only be
// decompressed by a Compressor built from that same D.
type Compressor interface {
	ID() string
	Compress(p []byte) ([]byte, error)
	Decompress(p []byte) ([]byte, error)
}

// DictTrainer is implemented by compressors capable of training a shared
// dictionary from sample values. Only zstd implements it in this module;
// asserting a Compressor against this interface is how callers discover
// dictionary support instead of a boolean capability flag.
type DictTrainer interface {
	// TrainDictionary builds a dictionary of approximately size bytes from
	// samples, suitable for passing back to a Factory's Options.Dictionary.
	TrainDictionary(samples [][]byte, size int) ([]byte, error)
}

// Options parameterizes a Factory's New call. Dictionary is nil for a fresh,
// dictionary-less compressor.
type Options struct {
	Dictionary []byte
}

// Factory builds Compressor instances for one compression id.
type Factory interface {
	ID() string
	New(opts Options) (Compressor, error)
}
