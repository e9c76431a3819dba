package compress

import "fmt"

// Catalog indexes compressor factories by id, with a "best" sentinel
// resolving to an implementation-defined highest-ratio choice. Modeled as an
// explicitly initialized singleton per cache construction (spec.md DESIGN
// NOTES: global registries) rather than a package-level map, so tests can
// inject a fresh catalog.
type Catalog struct {
	factories map[string]Factory
	best      string
}

// NewCatalog builds an empty catalog. best names the factory id "best"
// resolves to.
func NewCatalog(best string) *Catalog {
	return &Catalog{factories: map[string]Factory{}, best: best}
}

// Register adds a factory to the catalog, replacing any previous entry under
// the same id.
func (c *Catalog) Register(f Factory) {
	c.factories[f.ID()] = f
}

// Get looks up a factory by id. The sentinel "best" resolves to the
// catalog's configured highest-ratio factory.
func (c *Catalog) Get(id string) (Factory, error) {
	if id == "best" {
		id = c.best
	}
	f, ok := c.factories[id]
	if !ok {
		return nil, fmt.Errorf("compress: unknown compressor id %q", id)
	}
	return f, nil
}

// Default is the process-wide compressor catalog, pre-populated by this
// package's init with the factories it ships. "best" resolves to "zstd":
// the only dictionary-capable, generally-best-ratio codec in the catalog.
var Default = NewCatalog("zstd")
