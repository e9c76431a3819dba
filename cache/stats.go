package cache

import "github.com/erigontech/blobcache/kv"

// Stats is a point-in-time snapshot of a cache's size and configuration,
// supplementing spec.md's core contract (not present in the original
// source, which only exposes getDataSize on the backend): a small
// convenience surface for callers that want to report on a cache without
// reaching into its backend directly.
type Stats struct {
	Entries      int64
	Flavor       string
	Compressor   string
	HasDictionary bool
	DataSize     kv.SizeStat
}

// Stats collects a Stats snapshot. DataSize.Known is false when the backend
// cannot compute a size stat (the memory-mapped backend never can, see
// kv/mdbxkv.Backend.DataSize).
func (c *Cache) Stats() (Stats, error) {
	n, err := c.data.Len()
	if err != nil {
		return Stats{}, err
	}
	size, err := c.backend.DataSize()
	if err != nil && err != kv.ErrSizeUnknown {
		return Stats{}, err
	}
	dict, hasDict, err := c.meta.Get([]byte(kv.MetaDict))
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Entries:       n,
		Flavor:        c.cfg.flavor.Name,
		Compressor:    c.compressor.ID(),
		HasDictionary: hasDict && len(dict) > 0,
		DataSize:      size,
	}, nil
}
