package cache

import (
	"github.com/pkg/errors"

	"github.com/erigontech/blobcache/compress"
	"github.com/erigontech/blobcache/internal/sizeutil"
	"github.com/erigontech/blobcache/kv"
)

// defaultDictMinSize is the minimum automatic dict size: the clamp applied
// when a backend's size stat yields a tiny estimate, and the size used when
// the backend reports no size stat at all.
const defaultDictMinSize = 1024

// OptimizeCompression trains a fresh shared dictionary from the cache's
// current contents and applies it, per spec.md §4.6. dictSize of 0 requests
// the automatic sizing: one tenth of (total - wasted) bytes from the
// backend's size stat, clamped to defaultDictMinSize (or defaultDictMinSize
// itself when the size stat is unknown).
func (c *Cache) OptimizeCompression(dictSize int, progress kv.ProgressReporter) error {
	trainer, ok := c.compressor.(compress.DictTrainer)
	if !ok {
		return ErrUnsupportedOperation
	}
	if err := c.commit(); err != nil {
		return err
	}

	if dictSize <= 0 {
		stat, err := c.backend.DataSize()
		if err == nil && stat.Known {
			// AbsoluteDifference rather than a bare subtraction: a backend's
			// page accounting can report Wasted > Total transiently right
			// after a bulk delete, and this still has to produce a usable
			// size rather than a negative one.
			usable := sizeutil.AbsoluteDifference(uint64(stat.Total), uint64(stat.Wasted))
			dictSize = sizeutil.CeilDiv(int(usable), 10)
		}
		if dictSize < defaultDictMinSize {
			dictSize = defaultDictMinSize
		}
	}

	cur := c.data.Values()
	defer cur.Close()
	var samples [][]byte
	for cur.Next() {
		plain, err := c.compressor.Decompress(cur.Value())
		if err != nil {
			return err
		}
		samples = append(samples, plain)
	}
	if err := cur.Err(); err != nil {
		return err
	}

	dict, err := trainer.TrainDictionary(samples, dictSize)
	if err != nil {
		return errors.Wrap(err, "cache: train dictionary")
	}
	return c.ApplyCompressionDictionary(dict, progress)
}

// ApplyCompressionDictionary atomically re-encodes every stored value under
// new dictionary newDict, then makes it the active dictionary. A no-op (no
// writes issued, P9) if newDict already matches the persisted dictionary.
func (c *Cache) ApplyCompressionDictionary(newDict []byte, progress kv.ProgressReporter) error {
	if progress == nil {
		progress = kv.NoopProgress{}
	}
	current, _, err := c.meta.Get([]byte(kv.MetaDict))
	if err != nil {
		return err
	}
	if bytesEqual(current, newDict) {
		return nil
	}

	factory, err := c.cfg.compressors.Get(c.compressor.ID())
	if err != nil {
		return err
	}
	newComp, err := factory.New(compress.Options{Dictionary: newDict})
	if err != nil {
		return errors.Wrap(err, "cache: build new-dictionary compressor")
	}

	if err := c.backend.BeginTx(); err != nil {
		return err
	}
	c.newCompressor = newComp
	defer func() { c.newCompressor = nil }()

	applyErr := c.applyRecompress(progress)
	if applyErr != nil {
		return applyErr
	}

	c.compressor = newComp
	if err := c.meta.Put([]byte(kv.MetaDict), newDict); err != nil {
		return err
	}
	return c.backend.Commit()
}

// applyRecompress drives the backend's bulk value rewrite: through the
// registered named function where the backend supports it, or directly
// through kv.DirectApplier where it doesn't (see sqlitekv.Table.ApplyFunc).
func (c *Cache) applyRecompress(progress kv.ProgressReporter) error {
	if applier, ok := c.data.(kv.DirectApplier); ok {
		return applier.ApplyFunc(c.recompressOne, progress)
	}
	return c.data.ApplyToValues(kv.RecompressFunction, progress)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
