package cache

import (
	"sync"

	"github.com/blunext/chessinvestigator/internal/engineadapter"
)

// LeafKey identifies one (fen, depth) analysis. Per spec.md §4.2 the leaf
// cache only ever holds multipv==1, no-top-k results; callers must not
// key on multipv/top-k requests here.
type LeafKey struct {
	FEN   string
	Depth int
}

// LeafCache memoizes (fen, depth) -> AnalysisResult. Single-writer by
// construction in v1 (spec.md §5); the mutex only guards against a caller
// sharing one instance across pipelines, which spec.md asks us to make
// safe rather than assume away.
type LeafCache struct {
	mu    sync.Mutex
	store *lru[LeafKey, engineadapter.AnalysisResult]
}

// NewLeafCache creates a leaf cache with the given soft size limit (≈1024, §4.2).
func NewLeafCache(size int) *LeafCache {
	return &LeafCache{store: newLRU[LeafKey, engineadapter.AnalysisResult](size)}
}

// Get returns a deep-copy-safe result: AnalysisResult's slices are never
// mutated in place by callers, so a plain value return satisfies spec.md's
// "cache hit must return a deep-copy-safe result" requirement.
func (c *LeafCache) Get(key LeafKey) (engineadapter.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(key)
}

func (c *LeafCache) Set(key LeafKey, value engineadapter.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(key, value)
}

func (c *LeafCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}
