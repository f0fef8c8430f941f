package cache

import (
	"context"

	"github.com/blunext/chessinvestigator/internal/engineadapter"
)

// CachingEngine wraps an engineadapter.Engine with the leaf cache from
// spec.md §4.2: only multipv==1 calls are memoized (a multi-PV or top-k
// request is never stored in the leaf cache, per its doc comment).
type CachingEngine struct {
	Engine engineadapter.Engine
	Leaf   *LeafCache
}

func (c *CachingEngine) Analyze(ctx context.Context, fen string, depth, multiPV int) (engineadapter.AnalysisResult, error) {
	if multiPV != 1 {
		return c.Engine.Analyze(ctx, fen, depth, multiPV)
	}
	key := LeafKey{FEN: fen, Depth: depth}
	if cached, ok := c.Leaf.Get(key); ok {
		return cached, nil
	}
	result, err := c.Engine.Analyze(ctx, fen, depth, multiPV)
	if err != nil {
		return result, err
	}
	c.Leaf.Set(key, result)
	return result, nil
}

func (c *CachingEngine) Close() error {
	return c.Engine.Close()
}
