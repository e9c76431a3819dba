// Package cache implements the cache facade: the entity application code
// interacts with directly. It owns a kv.Backend, a codec.Stack, an optional
// compress.Compressor, commit-batch accounting, and the two reserved tables
// (data, metadata) every cache maintains. Grounded on Cache/__init__1.py's
// BlobCache (the root of the source's cache class hierarchy).
package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/blobcache/codec"
	"github.com/erigontech/blobcache/compress"
	"github.com/erigontech/blobcache/kv"
	"github.com/erigontech/blobcache/kv/mdbxkv"
	"github.com/erigontech/blobcache/kv/sqlitekv"
)

// Cache is a durable key-value mapping over a pluggable backend, with
// pluggable value encoding and optional shared-dictionary compression. Not
// safe for concurrent use: the scheduling model is single-threaded
// cooperative within one instance (see spec.md §5).
type Cache struct {
	cfg config

	backend kv.Backend
	data    kv.Table
	meta    kv.Table

	compressor    compress.Compressor
	newCompressor compress.Compressor // non-nil only during a dictionary swap

	mu        sync.Mutex
	opsPending int
}

// New constructs a Cache against base, without opening it. base is either a
// path string (backend chosen by extension: ".sqlite" -> SQLite, ".mdb" ->
// memory-mapped) or a pre-built kv.Backend (type-registry equivalent).
// Anything else fails with ErrBadBase.
func New(base any, opts ...Option) (*Cache, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	backend, err := resolveBackend(base)
	if err != nil {
		return nil, err
	}
	return &Cache{cfg: cfg, backend: backend}, nil
}

func resolveBackend(base any) (kv.Backend, error) {
	switch b := base.(type) {
	case kv.Backend:
		return b, nil
	case string:
		switch strings.ToLower(filepath.Ext(b)) {
		case ".sqlite":
			return sqlitekv.New(b), nil
		case ".mdb":
			return mdbxkv.New(b), nil
		default:
			return nil, errors.Wrapf(ErrBadBase, "unrecognised file extension %q", filepath.Ext(b))
		}
	default:
		return nil, errors.Wrapf(ErrBadBase, "unsupported base type %T", base)
	}
}

// Open enters the backend's scope, maps the two reserved tables, and either
// initializes a fresh cache or attaches to an existing one, per spec.md
// §4.6. Callers must pair a successful Open with Close (e.g. via defer).
func (c *Cache) Open(ctx context.Context) error {
	if err := c.backend.Open(ctx); err != nil {
		return errors.Wrap(err, "cache: open backend")
	}
	tables := c.backend.Tables()
	data, err := c.backend.MapTable(kv.LogicalData, tables[kv.LogicalData])
	if err != nil {
		return errors.Wrap(err, "cache: map data table")
	}
	meta, err := c.backend.MapTable(kv.LogicalMetadata, tables[kv.LogicalMetadata])
	if err != nil {
		return errors.Wrap(err, "cache: map metadata table")
	}
	c.data, c.meta = data, meta

	exists, err := meta.Exists()
	if err != nil {
		return errors.Wrap(err, "cache: check metadata")
	}
	if !exists {
		if err := c.initialize(); err != nil {
			return err
		}
	} else {
		if err := c.attach(); err != nil {
			return err
		}
	}

	if err := c.backend.CreateFunction(kv.RecompressFunction, c.recompressOne); err != nil && err != kv.ErrNoSuchFunction {
		return errors.Wrap(err, "cache: register recompress function")
	}
	return nil
}

func (c *Cache) initialize() error {
	if err := c.meta.Create(kv.Str, kv.Bytes); err != nil {
		return errors.Wrap(err, "cache: create metadata table")
	}

	compressorID := c.cfg.compressorID
	if compressorID == "" {
		compressorID = "none"
	}
	factory, err := c.cfg.compressors.Get(compressorID)
	if err != nil {
		return errors.Wrap(err, "cache: resolve compressor")
	}
	comp, err := factory.New(compress.Options{})
	if err != nil {
		return errors.Wrap(err, "cache: build compressor")
	}
	c.compressor = comp

	if err := c.meta.Put([]byte(kv.MetaCompression), []byte(comp.ID())); err != nil {
		return err
	}
	idsJSON, err := json.Marshal(c.cfg.flavor.Stack.ID())
	if err != nil {
		return err
	}
	if err := c.meta.Put([]byte(kv.MetaSerializers), idsJSON); err != nil {
		return err
	}

	if err := c.data.Create(c.physicalKeyType(), kv.Bytes); err != nil {
		return errors.Wrap(err, "cache: create data table")
	}
	return c.backend.Commit()
}

func (c *Cache) attach() error {
	compBytes, ok, err := c.meta.Get([]byte(kv.MetaCompression))
	if err != nil {
		return err
	}
	compID := "none"
	if ok && len(compBytes) > 0 {
		compID = string(compBytes)
	}

	serBytes, ok, err := c.meta.Get([]byte(kv.MetaSerializers))
	if err != nil {
		return err
	}
	var ids []string
	if ok {
		if err := json.Unmarshal(serBytes, &ids); err != nil {
			return errors.Wrap(err, "cache: decode persisted serializers")
		}
	}
	if !c.cfg.flavor.Stack.Equal(ids) {
		return ErrIncompatibleCodecs
	}

	stored := kv.NativeKeyType(c.data.KeyType())
	if !c.cfg.keyType.Equal(stored) {
		return ErrIncompatibleKeyType
	}

	var copts compress.Options
	if dict, ok, err := c.meta.Get([]byte(kv.MetaDict)); err != nil {
		return err
	} else if ok && len(dict) > 0 {
		copts.Dictionary = dict
	}
	factory, err := c.cfg.compressors.Get(compID)
	if err != nil {
		return errors.Wrap(err, "cache: resolve persisted compressor")
	}
	comp, err := factory.New(copts)
	if err != nil {
		return errors.Wrap(err, "cache: build persisted compressor")
	}
	c.compressor = comp
	return nil
}

// Close delegates to the backend's close, guaranteeing any pending ops are
// committed first. Mirrors the source's best-effort close discipline: a
// failure while closing is logged rather than returned, so it never shadows
// whatever error the caller was already unwinding from.
func (c *Cache) Close() {
	if err := c.commit(); err != nil {
		log.Warn("cache: commit on close failed", "err", err)
	}
	if err := c.backend.Close(); err != nil {
		log.Warn("cache: backend close failed", "err", err)
	}
}

func (c *Cache) commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.backend.Commit()
	c.opsPending = 0
	return err
}

func (c *Cache) noteOp() error {
	c.mu.Lock()
	c.opsPending++
	trigger := c.opsPending >= c.cfg.commitEveryNOps
	c.mu.Unlock()
	if trigger {
		return c.commit()
	}
	return nil
}

func (c *Cache) physicalKeyType() kv.Type {
	if c.cfg.keyType.Any {
		return kv.Bytes
	}
	return c.cfg.keyType.Native
}

// encodeKey converts a user-facing key to its physical byte representation:
// through the codec stack when the declared key type is "any", or a direct
// native encoding otherwise.
func (c *Cache) encodeKey(key any) ([]byte, error) {
	if c.cfg.keyType.Any {
		return c.cfg.flavor.Stack.Forward(key)
	}
	switch c.cfg.keyType.Native {
	case kv.Str:
		s, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("cache: key %v is not a string", key)
		}
		return []byte(s), nil
	case kv.Int:
		i, ok := key.(int64)
		if !ok {
			if ii, ok2 := key.(int); ok2 {
				i, ok = int64(ii), true
			}
		}
		if !ok {
			return nil, fmt.Errorf("cache: key %v is not an int", key)
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(i))
		return buf, nil
	default: // kv.Bytes
		b, ok := key.([]byte)
		if !ok {
			return nil, fmt.Errorf("cache: key %v is not []byte", key)
		}
		return b, nil
	}
}

// decodeKey is encodeKey's inverse, used by iteration.
func (c *Cache) decodeKey(raw []byte) (any, error) {
	if c.cfg.keyType.Any {
		return c.cfg.flavor.Stack.Reverse(raw)
	}
	switch c.cfg.keyType.Native {
	case kv.Str:
		return string(raw), nil
	case kv.Int:
		return int64(binary.BigEndian.Uint64(raw)), nil
	default:
		return raw, nil
	}
}

func (c *Cache) decodeValue(raw []byte) (any, error) {
	plain, err := c.compressor.Decompress(raw)
	if err != nil {
		return nil, err
	}
	return c.cfg.flavor.Stack.Reverse(plain)
}

func (c *Cache) encodeValue(v any) ([]byte, error) {
	encoded, err := c.cfg.flavor.Stack.Forward(v)
	if err != nil {
		return nil, err
	}
	return c.compressor.Compress(encoded)
}

// Get looks up key. ok is false when the key is absent — and, reproducing
// the source's `if not val: return None` check on the raw stored bytes
// (BlobCache.__getitem__), also false when the stored raw value happens to
// be zero-length (see DESIGN.md: preserved, not fixed).
func (c *Cache) Get(key any) (any, bool, error) {
	rawKey, err := c.encodeKey(key)
	if err != nil {
		return nil, false, err
	}
	raw, found, err := c.data.Get(rawKey)
	if err != nil {
		return nil, false, err
	}
	if !found || len(raw) == 0 {
		return nil, false, nil
	}
	val, err := c.decodeValue(raw)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Contains is defined as Get(key) being present — inheriting the same
// empty-value quirk Get does.
func (c *Cache) Contains(key any) (bool, error) {
	_, ok, err := c.Get(key)
	return ok, err
}

// Put stores value under key. A nil value deletes key instead.
func (c *Cache) Put(key, value any) error {
	if value == nil {
		return c.Delete(key)
	}
	rawKey, err := c.encodeKey(key)
	if err != nil {
		return err
	}
	raw, err := c.encodeValue(value)
	if err != nil {
		return err
	}
	if err := c.data.Put(rawKey, raw); err != nil {
		return err
	}
	return c.noteOp()
}

// Delete removes key. Idempotent: deleting an absent key is not an error.
func (c *Cache) Delete(key any) error {
	rawKey, err := c.encodeKey(key)
	if err != nil {
		return err
	}
	if err := c.data.Delete(rawKey); err != nil {
		return err
	}
	return c.noteOp()
}

// Len reports the number of rows in the data table.
func (c *Cache) Len() (int64, error) {
	return c.data.Len()
}

// Keys iterates over all keys, decoded through the codec stack when the
// declared key type is "any".
func (c *Cache) Keys() ([]any, error) {
	cur := c.data.Keys()
	defer cur.Close()
	var out []any
	for cur.Next() {
		k, err := c.decodeKey(cur.Key())
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, cur.Err()
}

// Values iterates over all values, decompressed and decoded.
func (c *Cache) Values() ([]any, error) {
	cur := c.data.Values()
	defer cur.Close()
	var out []any
	for cur.Next() {
		v, err := c.decodeValue(cur.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

// Item is one decoded key/value pair, returned by Items.
type Item struct {
	Key   any
	Value any
}

// Items iterates over all key/value pairs.
func (c *Cache) Items() ([]Item, error) {
	cur := c.data.Items()
	defer cur.Close()
	var out []Item
	for cur.Next() {
		k, err := c.decodeKey(cur.Key())
		if err != nil {
			return nil, err
		}
		v, err := c.decodeValue(cur.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, Item{Key: k, Value: v})
	}
	return out, cur.Err()
}

// Populate bulk-ingests pairs, reporting progress per pair.
func (c *Cache) Populate(pairs []Item, progress kv.ProgressReporter) error {
	if progress == nil {
		progress = kv.NoopProgress{}
	}
	total := int64(len(pairs))
	var n int64
	for _, p := range pairs {
		if err := c.Put(p.Key, p.Value); err != nil {
			return err
		}
		n++
		progress.Report(fmt.Sprint(p.Key), &n, &total, "populate")
	}
	return nil
}

// Empty drops and recreates the data table, preserving metadata.
func (c *Cache) Empty() error {
	if err := c.data.Drop(); err != nil {
		return err
	}
	if err := c.data.Create(c.physicalKeyType(), kv.Bytes); err != nil {
		return err
	}
	return c.commit()
}

// recompressOne is the registered "recompress" function: decompress with the
// old compressor, recompress with the new one. Only meaningful mid-swap;
// invoking it otherwise is a programming error this module cannot express
// through kv.Backend.CreateFunction's func([]byte)[]byte signature, so it
// panics with ErrInternalInvariant instead of returning one (spec.md §7:
// InternalInvariant — the in-database recompress function invoked outside a
// dictionary swap).
func (c *Cache) recompressOne(v []byte) []byte {
	if c.newCompressor == nil {
		panic(ErrInternalInvariant)
	}
	plain, err := c.compressor.Decompress(v)
	if err != nil {
		panic(errors.Wrap(err, "cache: recompress: decompress"))
	}
	recompressed, err := c.newCompressor.Compress(plain)
	if err != nil {
		panic(errors.Wrap(err, "cache: recompress: compress"))
	}
	return recompressed
}
