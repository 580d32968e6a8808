package weather

import (
	"context"
	"fmt"
	"log"
)

// TimelineProvider abstracts the upstream forecast source (e.g. Tomorrow.io).
type TimelineProvider interface {
	FetchTimeline(ctx context.Context, loc LocationRef, w Window) (IntervalSet, error)
}

// Gateway serves forecast data cache-first, delegating misses to the provider
// and writing successful payloads back through the cache.
type Gateway struct {
	cache    *Cache
	provider TimelineProvider
}

// NewGateway creates a Gateway. The cache is injected so tests and callers
// control its scope and TTL.
func NewGateway(cache *Cache, provider TimelineProvider) *Gateway {
	return &Gateway{
		cache:    cache,
		provider: provider,
	}
}

// Fetch returns interval data for the location/window. A valid cache entry is
// served without any network call. Provider failures and empty timelines both
// surface as ErrUnavailable.
func (g *Gateway) Fetch(ctx context.Context, loc LocationRef, w Window) (IntervalSet, error) {
	key := loc.Key()

	if cached, ok := g.cache.Get(key); ok {
		log.Printf("weather: cache hit for %q", key)
		return cached, nil
	}

	set, err := g.provider.FetchTimeline(ctx, loc, w)
	if err != nil {
		return IntervalSet{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// A response without intervals is a failure, not zero-data success.
	if len(set.Intervals) == 0 {
		return IntervalSet{}, fmt.Errorf("%w: provider returned no intervals for %q", ErrUnavailable, key)
	}

	set.Location = loc
	g.cache.Set(key, set)
	return set, nil
}
