package meshcache

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robograph/urdf_browser/mesh"
	"github.com/robograph/urdf_browser/vfs"
)

// MeshLoadFailedError reports a fetch or decode failure for one
// location. Other locations in flight are unaffected.
type MeshLoadFailedError struct {
	Location string
	Cause    error
}

func (e *MeshLoadFailedError) Error() string {
	return fmt.Sprintf("Mesh load failed for '%s': %v", e.Location, e.Cause)
}

func (e *MeshLoadFailedError) Unwrap() error { return e.Cause }

type entry struct {
	ready    chan struct{}
	template *mesh.Mesh
	err      error
}

// Cache deduplicates mesh loads by resolved location: the first caller
// for a location performs the fetch+decode, everyone else waits on the
// same entry. Successful callers each get an independent Clone of the
// decoded template. The cache is owned by one loaded document/scene,
// there is no process-global state.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	fetcher vfs.Fetcher
}

func NewCache(fetcher vfs.Fetcher) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		fetcher: fetcher,
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load returns a fresh instance of the mesh at location. At most one
// underlying fetch happens per distinct location, even under concurrent
// callers. A failed load is cached as failed for the cache's lifetime;
// the entry is always completed, cancellation cannot leave it pending.
func (c *Cache) Load(ctx context.Context, location string) (*mesh.Mesh, error) {
	c.mu.Lock()
	e, found := c.entries[location]
	if !found {
		e = &entry{ready: make(chan struct{})}
		c.entries[location] = e
		c.mu.Unlock()

		e.template, e.err = c.fill(ctx, location)
		close(e.ready)
	} else {
		c.mu.Unlock()

		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if e.err != nil {
		return nil, &MeshLoadFailedError{Location: location, Cause: e.err}
	}
	return e.template.Clone(), nil
}

func (c *Cache) fill(ctx context.Context, location string) (*mesh.Mesh, error) {
	data, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	m, err := mesh.Decode(location, data)
	if err != nil {
		return nil, err
	}

	log.Printf("[meshcache] loaded '%s': %d triangles", location, m.TriangleCount())
	return m, nil
}
