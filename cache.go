package globemesh

import (
	"container/list"
	"context"
	"encoding/binary"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
	"golang.org/x/sync/singleflight"
)

// CacheKey identifies one build product: the feature's coordinate content
// plus every configuration value that changes the resulting mesh. The
// pipeline version is part of the key so a code change invalidates naturally.
type CacheKey uint64

func cacheKey(f *Feature, cfg *Config) CacheKey {
	h := xxhash.New()

	writeString := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}

	var buf [8]byte
	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}

	writeRing := func(ring orb.Ring) {
		for _, p := range ring {
			writeFloat(p.Lon())
			writeFloat(p.Lat())
		}
		_, _ = h.Write([]byte{0xff})
	}

	writeString(cfg.PipelineVersion)
	writeString(f.ID)

	writeRing(f.Outer)
	for _, hole := range f.Holes {
		writeRing(hole)
	}

	flags := byte(cfg.Projection)
	if cfg.Extrude {
		flags |= 0x80
	}
	_, _ = h.Write([]byte{flags})

	return CacheKey(h.Sum64())
}

type cacheEntry struct {
	key      CacheKey
	mesh     *Mesh
	report   *Report
	vertices int
	storedAt time.Time
}

// EvictFunc is notified whenever a mesh leaves the cache, so the rendering
// collaborator can release GPU resources tied to it. Called without the
// cache lock held.
type EvictFunc func(mesh *Mesh)

type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Vertices  int
}

// MeshCache memoizes feature build products under a total vertex budget with
// least recently used eviction. Concurrent requests for the same key share a
// single in-flight build. This is the only mutable shared state of the
// pipeline.
type MeshCache struct {
	mu       sync.Mutex
	budget   int
	vertices int
	entries  map[CacheKey]*list.Element
	lru      list.List // front is most recently used
	stats    CacheStats

	onEvict EvictFunc
	group   singleflight.Group
}

// NewMeshCache creates a cache bounded by vertexBudget total mesh vertices.
// A budget of zero disables eviction. onEvict may be nil.
func NewMeshCache(vertexBudget int, onEvict EvictFunc) *MeshCache {
	return &MeshCache{
		budget:  vertexBudget,
		entries: map[CacheKey]*list.Element{},
		onEvict: onEvict,
	}
}

// Get returns the cached mesh for the key, marking it as recently used.
func (c *MeshCache) Get(key CacheKey) (*Mesh, *Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, nil, false
	}

	c.lru.MoveToFront(elem)
	c.stats.Hits++

	entry := elem.Value.(*cacheEntry)
	return entry.mesh, entry.report, true
}

// BuildFunc runs the full pipeline for one feature. It must not leave any
// shared state behind when it fails; a failed build caches nothing.
type BuildFunc func(ctx context.Context) (*Mesh, *Report, error)

// GetOrBuild is the read-through path: a hit returns the shared cached mesh,
// a miss runs build exactly once even under concurrent requests for the same
// key and stores the verified result.
func (c *MeshCache) GetOrBuild(ctx context.Context, key CacheKey, build BuildFunc) (*Mesh, *Report, error) {
	if mesh, report, ok := c.Get(key); ok {
		return mesh, report, nil
	}

	type result struct {
		mesh   *Mesh
		report *Report
	}

	v, err, _ := c.group.Do(strconv.FormatUint(uint64(key), 16), func() (any, error) {
		// the build may have finished while this caller was queued
		if mesh, report, ok := c.lookup(key); ok {
			return result{mesh, report}, nil
		}

		mesh, report, err := build(ctx)
		if err != nil {
			return nil, err
		}

		c.insert(key, mesh, report)
		return result{mesh, report}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	r := v.(result)
	return r.mesh, r.report, nil
}

// lookup is Get without stats counting, used to re-check after winning the
// singleflight slot.
func (c *MeshCache) lookup(key CacheKey) (*Mesh, *Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}

	entry := elem.Value.(*cacheEntry)
	return entry.mesh, entry.report, true
}

func (c *MeshCache) insert(key CacheKey, mesh *Mesh, report *Report) {
	var evicted []*cacheEntry

	c.mu.Lock()

	if _, exists := c.entries[key]; !exists {
		entry := &cacheEntry{
			key:      key,
			mesh:     mesh,
			report:   report,
			vertices: mesh.VertexCount(),
			storedAt: time.Now(),
		}

		c.entries[key] = c.lru.PushFront(entry)
		c.vertices += entry.vertices

		// evict least recently used entries until the budget holds again,
		// but never the entry that was just inserted
		for c.budget > 0 && c.vertices > c.budget && c.lru.Len() > 1 {
			evicted = append(evicted, c.removeLocked(c.lru.Back()))
		}
	}

	c.stats.Entries = c.lru.Len()
	c.stats.Vertices = c.vertices
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, entry := range evicted {
			c.onEvict(entry.mesh)
		}
	}
}

func (c *MeshCache) removeLocked(elem *list.Element) *cacheEntry {
	entry := c.lru.Remove(elem).(*cacheEntry)
	delete(c.entries, entry.key)
	c.vertices -= entry.vertices
	c.stats.Evictions++
	return entry
}

// Purge drops every entry, notifying onEvict for each.
func (c *MeshCache) Purge() {
	var evicted []*cacheEntry

	c.mu.Lock()
	for c.lru.Len() > 0 {
		evicted = append(evicted, c.removeLocked(c.lru.Back()))
	}
	c.stats.Entries = 0
	c.stats.Vertices = 0
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, entry := range evicted {
			c.onEvict(entry.mesh)
		}
	}
}

func (c *MeshCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

func (c *MeshCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = c.lru.Len()
	stats.Vertices = c.vertices
	return stats
}
