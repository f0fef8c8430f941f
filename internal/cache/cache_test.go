package cache

import (
	"testing"

	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/stretchr/testify/assert"
)

func TestLeafCache_SetGet(t *testing.T) {
	c := NewLeafCache(2)
	key := LeafKey{FEN: "fen1", Depth: 16}
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, engineadapter.AnalysisResult{BestMoveUCI: "e2e4"})
	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "e2e4", got.BestMoveUCI)
}

func TestLeafCache_EvictsOldest(t *testing.T) {
	c := NewLeafCache(2)
	c.Set(LeafKey{FEN: "a", Depth: 1}, engineadapter.AnalysisResult{})
	c.Set(LeafKey{FEN: "b", Depth: 1}, engineadapter.AnalysisResult{})
	c.Set(LeafKey{FEN: "c", Depth: 1}, engineadapter.AnalysisResult{})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(LeafKey{FEN: "a", Depth: 1})
	assert.False(t, ok, "oldest entry should have been evicted")
}

type fakeResult struct {
	BestMove string
}

func TestResultCache_MemoryOnly(t *testing.T) {
	c := NewResultCache[fakeResult](8, nil)
	key := ResultKey{FEN: "fen", Kind: "primary", VariantTag: VariantTag(16, 2, 4, 8)}
	c.Set(key, fakeResult{BestMove: "Nf3"})

	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "Nf3", got.BestMove)
}

func TestResultCache_VariantTagDistinguishesEntries(t *testing.T) {
	c := NewResultCache[fakeResult](8, nil)
	primary := ResultKey{FEN: "fen", Kind: "primary", VariantTag: VariantTag(16, 2, 4, 8)}
	altShallow := ResultKey{FEN: "fen", MoveSAN: "e4", Kind: "alt_move", VariantTag: VariantTag(4, 2, 4, 8)}

	c.Set(primary, fakeResult{BestMove: "Nf3"})
	c.Set(altShallow, fakeResult{BestMove: "e5"})

	got, ok := c.Get(primary)
	assert.True(t, ok)
	assert.Equal(t, "Nf3", got.BestMove)
}
