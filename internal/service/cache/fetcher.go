package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"MacroTilt/internal/domain/models"
	drepo "MacroTilt/internal/domain/repository"
	"MacroTilt/pkg/logger"
	"MacroTilt/pkg/metrics"
)

const DefaultTTL = 6 * time.Hour

// CachedFetcher serves indicator data from a BytesCache and falls through to the wrapped
// fetcher on a miss. Only successful fetches are stored.
type CachedFetcher struct {
	next    drepo.IndicatorFetcher
	cache   BytesCache
	ttl     time.Duration
	prefix  string
	metrics drepo.Metrics
	log     *logger.Logger
}

type FetcherOption func(*CachedFetcher)

func WithTTL(ttl time.Duration) FetcherOption {
	return func(f *CachedFetcher) {
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

func WithKeyPrefix(p string) FetcherOption {
	return func(f *CachedFetcher) { f.prefix = p }
}

func WithMetrics(m drepo.Metrics) FetcherOption {
	return func(f *CachedFetcher) {
		if m != nil {
			f.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) FetcherOption {
	return func(f *CachedFetcher) {
		if l != nil {
			f.log = l
		}
	}
}

func NewCachedFetcher(next drepo.IndicatorFetcher, c BytesCache, opts ...FetcherOption) *CachedFetcher {
	f := &CachedFetcher{
		next:    next,
		cache:   c,
		ttl:     DefaultTTL,
		prefix:  "macrotilt:indicator:",
		metrics: metrics.Nop{},
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *CachedFetcher) key(ind models.Indicator) string { return f.prefix + string(ind) }

// Fetch implements repository.IndicatorFetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, ind models.Indicator) (models.IndicatorData, error) {
	b, ok, err := f.cache.GetBytes(ctx, f.key(ind))
	if err != nil {
		f.log.Warn("cache read failed", logger.String("indicator", string(ind)), logger.Error(err))
	}
	if ok {
		var d models.IndicatorData
		if err := msgpack.Unmarshal(b, &d); err == nil {
			f.metrics.RecordCache(true)
			return d, nil
		}
		f.log.Warn("discarding undecodable cache entry", logger.String("indicator", string(ind)))
	}
	f.metrics.RecordCache(false)
	return f.Refresh(ctx, ind)
}

// Refresh bypasses the cache, fetches ind and stores a successful result.
func (f *CachedFetcher) Refresh(ctx context.Context, ind models.Indicator) (models.IndicatorData, error) {
	d, err := f.next.Fetch(ctx, ind)
	if err != nil {
		return d, err
	}
	if !d.Reading.OK {
		return d, nil
	}
	b, err := msgpack.Marshal(&d)
	if err != nil {
		f.log.Warn("cache encode failed", logger.String("indicator", string(ind)), logger.Error(err))
		return d, nil
	}
	if err := f.cache.SetBytes(ctx, f.key(ind), b, f.ttl); err != nil {
		f.log.Warn("cache write failed", logger.String("indicator", string(ind)), logger.Error(err))
	}
	return d, nil
}
