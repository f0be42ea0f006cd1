package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/infrastructure/database/redis"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
)

// CachedEmbedder wraps an Embedder with a Redis cache. Gazette corpora
// re-embed the same search texts on every analysis, so the hit rate is
// high and the upstream service is the slowest dependency in the path.
type CachedEmbedder struct {
	inner  similarity.Embedder
	cache  redis.Cache
	model  string
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedEmbedder builds a caching wrapper. A zero ttl uses the cache
// default.
func NewCachedEmbedder(inner similarity.Embedder, cache redis.Cache, model string, ttl time.Duration, log logging.Logger) *CachedEmbedder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		model:  model,
		ttl:    ttl,
		logger: log.Named("embedding_cache"),
	}
}

// cacheKey hashes model and text together so a model change never
// serves stale vectors.
func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	var cached []float32
	if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if setErr := c.cache.Set(ctx, key, vec, c.ttl); setErr != nil {
		// Cache failures never fail the embedding itself.
		c.logger.Warn("failed to cache embedding", logging.Err(setErr))
	}
	return vec, nil
}
