package cache

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ResultKey identifies one investigation per spec.md §4.2: variant encodes
// (depth_deep, depth_shallow, evidence_plies_base, evidence_plies_max) so
// a shallow alt-move investigation can never collide with a deep primary
// one that happens to share a FEN and move.
type ResultKey struct {
	FEN       string
	MoveSAN   string // "" when investigating the position itself
	Kind      string // "primary", "alt_move", "target"
	VariantTag string
}

// VariantTag encodes the depth/ply configuration that distinguishes two
// investigations of the same (fen, move) pair.
func VariantTag(depthDeep, depthShallow, evidencePliesBase, evidencePliesMax int) string {
	return fmt.Sprintf("d%d-s%d-eb%d-em%d", depthDeep, depthShallow, evidencePliesBase, evidencePliesMax)
}

// ResultCache memoizes (fen, move?, kind, variant) -> V, V typically being
// the orchestrator's InvestigationResult. It is generic so this package
// has no dependency on the orchestrator package (which depends on cache).
type ResultCache[V any] struct {
	mu     sync.Mutex
	memory *lru[ResultKey, V]
	disk   *BadgerStore // nil when persistence is disabled
}

// NewResultCache creates a result cache with the given soft size limit
// (≈512, §4.2) and an optional badger-backed disk tier.
func NewResultCache[V any](size int, disk *BadgerStore) *ResultCache[V] {
	return &ResultCache[V]{
		memory: newLRU[ResultKey, V](size),
		disk:   disk,
	}
}

func diskKey(key ResultKey) string {
	return key.FEN + "|" + key.MoveSAN + "|" + key.Kind + "|" + key.VariantTag
}

// Get returns a deep-copy-safe value: memory hits return the stored value
// by Go value semantics (or the caller's own deep-copy responsibility for
// reference fields), and disk hits are freshly unmarshaled.
func (c *ResultCache[V]) Get(key ResultKey) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.memory.Get(key); ok {
		return v, true
	}
	if c.disk != nil {
		if raw, ok := c.disk.Get(diskKey(key)); ok {
			var v V
			if err := json.Unmarshal(raw, &v); err == nil {
				c.memory.Set(key, v)
				return v, true
			}
		}
	}
	var zero V
	return zero, false
}

func (c *ResultCache[V]) Set(key ResultKey, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory.Set(key, value)
	if c.disk != nil {
		if raw, err := json.Marshal(value); err == nil {
			_ = c.disk.Set(diskKey(key), raw)
		}
	}
}

func (c *ResultCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Len()
}
