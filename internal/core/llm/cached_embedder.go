package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
)

var _ core.EmbeddingProvider = (*CachedEmbedder)(nil)

// CachedEmbedder memoizes embeddings by exact text in an expiring LRU. It is
// meant for search queries, which repeat; ingestion embeds through the inner
// provider directly.
type CachedEmbedder struct {
	inner core.EmbeddingProvider
	cache *expirable.LRU[string, []float32]
	log   *logger.Logger
}

func NewCachedEmbedder(inner core.EmbeddingProvider, size int, ttl time.Duration, log *logger.Logger) *CachedEmbedder {
	if size <= 0 {
		size = 256
	}
	return &CachedEmbedder{
		inner: inner,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
		log:   log.With("component", "embed-cache"),
	}
}

func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		c.log.Debug("embed cache hit", "count", len(texts))
		return out, nil
	}

	vecs, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embed cache: got %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, v := range vecs {
		out[missIdx[j]] = v
		c.cache.Add(missTexts[j], v)
	}
	c.log.Debug("embed cache fill", "hits", len(texts)-len(missTexts), "misses", len(missTexts))
	return out, nil
}
