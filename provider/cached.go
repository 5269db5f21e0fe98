/*
cached.go - Cache-backed provider decorator

PURPOSE:
  Wraps a remote SeriesProvider with a local observation cache. A
  successful remote fetch refreshes the cache; a failed one falls back to
  whatever was cached. Only raw observations are cached, never computed
  adjustments.

FAILURE SEMANTICS:
  - Remote ok, cache write fails:  series is still returned (cache is
    best-effort on the write path)
  - Remote fails, cache has data:  cached series is returned
  - Remote fails, cache empty:     the remote error is returned

SEE ALSO:
  - store/sqlite: The ObservationCache implementation
  - provider/indec: The remote side
*/
package provider

import (
	"context"
	"fmt"

	"github.com/warp/adjustment-engine/series"
)

// Cached decorates a remote provider with an observation cache.
type Cached struct {
	Remote   SeriesProvider
	Cache    ObservationCache
	SeriesID string
}

// NewCached wires a remote provider to a cache under the given series id.
func NewCached(remote SeriesProvider, cache ObservationCache, seriesID string) *Cached {
	return &Cached{Remote: remote, Cache: cache, SeriesID: seriesID}
}

// FetchSeries fetches from the remote provider, refreshing the cache on
// success and falling back to it on failure.
func (c *Cached) FetchSeries(ctx context.Context) (series.Series, error) {
	s, err := c.Remote.FetchSeries(ctx)
	if err == nil {
		// Best-effort refresh; a failed write must not fail the fetch.
		_ = c.Cache.SaveObservations(ctx, c.SeriesID, s)
		return s, nil
	}

	cached, cacheErr := c.Cache.LoadObservations(ctx, c.SeriesID)
	if cacheErr != nil || len(cached) == 0 {
		return nil, fmt.Errorf("remote fetch failed and no cached series: %w", err)
	}
	return series.New(cached), nil
}
