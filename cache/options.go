package cache

import (
	"github.com/erigontech/blobcache/codec"
	"github.com/erigontech/blobcache/compress"
	"github.com/erigontech/blobcache/kv"
)

// config collects the resolved construction arguments for New, built up by
// applying each Option in order. Mirrors the source's constructor keyword
// arguments (compressor_factory, commit_every_n_ops, key_type), rendered as
// Go's idiomatic functional-options pattern instead of a kwargs dict.
type config struct {
	flavor          codec.Flavor
	compressorID    string
	commitEveryNOps int
	keyType         kv.KeyType
	catalog         *codec.Registry
	compressors     *compress.Catalog
}

func defaultConfig() config {
	return config{
		flavor:          codec.BlobFlavor,
		compressorID:    "",
		commitEveryNOps: 1,
		keyType:         kv.NativeKeyType(kv.Str),
		catalog:         codec.Default,
		compressors:     compress.Default,
	}
}

// Option configures a Cache at construction time.
type Option func(*config)

// WithFlavor selects the codec stack and default compressor a new cache
// uses, e.g. codec.JSONFlavor.
func WithFlavor(f codec.Flavor) Option {
	return func(c *config) {
		c.flavor = f
		if c.compressorID == "" {
			c.compressorID = f.DefaultCompressor
		}
	}
}

// WithCompressor selects the compressor factory id ("none", "zstd", "lzma",
// "deflate", "lz4", "brotli", "bzip2", or the "best" sentinel). Overrides
// the flavor's default compressor.
func WithCompressor(id string) Option {
	return func(c *config) { c.compressorID = id }
}

// WithCommitEveryNOps sets the batch size: every Nth mutating op triggers an
// automatic commit. Default 1 (commit after every op).
func WithCommitEveryNOps(n int) Option {
	return func(c *config) { c.commitEveryNOps = n }
}

// WithKeyType declares the physical key type the data table stores. Default
// is string. kv.AnyKeyType routes keys through the codec stack like values.
func WithKeyType(t kv.KeyType) Option {
	return func(c *config) { c.keyType = t }
}

// WithCodecCatalog records a codec registry other than codec.Default in the
// cache's configuration (spec.md DESIGN NOTES: global registries). The cache
// does not look codecs up in it: the codec stack comes from the flavor.
func WithCodecCatalog(r *codec.Registry) Option {
	return func(c *config) { c.catalog = r }
}

// WithCompressorCatalog injects a compressor catalog other than
// compress.Default.
func WithCompressorCatalog(cat *compress.Catalog) Option {
	return func(c *config) { c.compressors = cat }
}
