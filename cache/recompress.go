package cache

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/erigontech/blobcache/kv"
)

// Recompress opens a fresh cache at targetPath with compressorID (or this
// cache's own compressor if empty), populates it from this cache's items,
// vacuums it, and — if rename is true — renames it over this cache's file.
// Declared non-production-grade in spec.md §4.6: a bench tool, not part of
// the steady-state API.
func (c *Cache) Recompress(ctx context.Context, targetPath string, compressorID string, rename bool, progress kv.ProgressReporter) error {
	if compressorID == "" {
		compressorID = c.compressor.ID()
	}
	opts := []Option{WithFlavor(c.cfg.flavor), WithCompressor(compressorID), WithKeyType(c.cfg.keyType)}
	fresh, err := New(targetPath, opts...)
	if err != nil {
		return errors.Wrap(err, "cache: recompress: construct target")
	}
	if err := fresh.Open(ctx); err != nil {
		return errors.Wrap(err, "cache: recompress: open target")
	}
	defer fresh.Close()

	items, err := c.Items()
	if err != nil {
		return errors.Wrap(err, "cache: recompress: read source")
	}
	if err := fresh.Populate(items, progress); err != nil {
		return errors.Wrap(err, "cache: recompress: populate target")
	}
	if err := fresh.backend.Vacuum(); err != nil {
		return errors.Wrap(err, "cache: recompress: vacuum target")
	}

	if rename {
		fresh.Close()
		if path, ok := currentPath(c); ok {
			if err := os.Rename(targetPath, path); err != nil {
				return errors.Wrap(err, "cache: recompress: rename over current file")
			}
		}
	}
	return nil
}

// currentPath reports the source path this cache was opened against, if
// base was a path rather than a pre-opened handle.
func currentPath(c *Cache) (string, bool) {
	type pathed interface{ Path() string }
	if p, ok := c.backend.(pathed); ok {
		return p.Path(), true
	}
	return "", false
}
