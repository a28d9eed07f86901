package oracle

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/tmseg/tmseg-go/internal/protein"
	"github.com/tmseg/tmseg-go/internal/topology"
)

// fingerprinter is implemented by profiles with a stable content identity.
type fingerprinter interface {
	Fingerprint() uuid.UUID
}

// CachedSegmentScorer memoizes segment probabilities. Split and Adjust
// re-score the same windows many times per protein; entries are keyed on
// the profile fingerprint so identical profiles share results. Profiles
// without a fingerprint bypass the cache.
type CachedSegmentScorer struct {
	next   topology.SegmentScorer
	cache  *cache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedSegmentScorer wraps next with a cache whose entries live for ttl.
func NewCachedSegmentScorer(next topology.SegmentScorer, ttl, cleanup time.Duration) *CachedSegmentScorer {
	return &CachedSegmentScorer{
		next:  next,
		cache: cache.New(ttl, cleanup),
	}
}

// ScoreSegment implements topology.SegmentScorer.
func (c *CachedSegmentScorer) ScoreSegment(ctx context.Context, p protein.Profile, start, end int) (float64, error) {
	fp, ok := p.(fingerprinter)
	if !ok {
		return c.next.ScoreSegment(ctx, p, start, end)
	}

	key := fmt.Sprintf("%s:%d:%d", fp.Fingerprint(), start, end)
	if cached, found := c.cache.Get(key); found {
		c.hits.Add(1)
		return cached.(float64), nil
	}

	prob, err := c.next.ScoreSegment(ctx, p, start, end)
	if err != nil {
		return 0, err
	}
	c.misses.Add(1)
	c.cache.Set(key, prob, cache.DefaultExpiration)
	return prob, nil
}

// Stats returns the cache hit and miss counts.
func (c *CachedSegmentScorer) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached entries.
func (c *CachedSegmentScorer) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached entry.
func (c *CachedSegmentScorer) Flush() {
	c.cache.Flush()
}
