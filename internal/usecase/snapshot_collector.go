package usecase

import (
	"context"
	"sync"
	"time"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	"MacroTilt/pkg/logger"
)

const DefaultCollectTimeout = 15 * time.Second

// SnapshotCollector fetches every indicator concurrently and degrades failures into
// unavailable readings. It implements repository.SnapshotSource.
type SnapshotCollector struct {
	fetcher    domrepo.IndicatorFetcher
	indicators []models.Indicator
	timeout    time.Duration
	metrics    domrepo.Metrics
	log        *logger.Logger
}

func NewSnapshotCollector(fetcher domrepo.IndicatorFetcher, metrics domrepo.Metrics, log *logger.Logger, timeout time.Duration) *SnapshotCollector {
	if timeout <= 0 {
		timeout = DefaultCollectTimeout
	}
	return &SnapshotCollector{
		fetcher:    fetcher,
		indicators: models.AllIndicators,
		timeout:    timeout,
		metrics:    metrics,
		log:        log,
	}
}

// Snapshot always returns an entry for every indicator.
func (c *SnapshotCollector) Snapshot(ctx context.Context) models.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type item struct {
		ind  models.Indicator
		data models.IndicatorData
		err  error
		took time.Duration
	}
	ch := make(chan item, len(c.indicators))
	var wg sync.WaitGroup

	for _, ind := range c.indicators {
		wg.Add(1)
		go func(ind models.Indicator) {
			defer wg.Done()
			start := time.Now()
			d, err := c.fetcher.Fetch(ctx, ind)
			ch <- item{ind: ind, data: d, err: err, took: time.Since(start)}
		}(ind)
	}

	go func() { wg.Wait(); close(ch) }()

	snap := make(models.Snapshot, len(c.indicators))
	for _, ind := range c.indicators {
		snap[ind] = models.IndicatorData{Indicator: ind}
	}

	for {
		select {
		case it, ok := <-ch:
			if !ok {
				return snap
			}
			okRead := it.err == nil && it.data.Reading.OK
			c.metrics.RecordFetch(string(it.ind), okRead, it.took.Seconds())
			if it.err != nil {
				c.metrics.RecordError("fetch")
				c.log.Warn("indicator unavailable",
					logger.String("indicator", string(it.ind)),
					logger.Error(it.err))
				continue
			}
			it.data.Indicator = it.ind
			snap[it.ind] = it.data
		case <-ctx.Done():
			c.log.Warn("snapshot deadline reached, missing indicators default to no data",
				logger.Error(ctx.Err()))
			return snap
		}
	}
}

// Health reports per-indicator availability.
func (c *SnapshotCollector) Health(ctx context.Context) []models.IndicatorStatus {
	return IndicatorHealth(c.Snapshot(ctx))
}

// IndicatorHealth projects a snapshot into status rows in indicator order.
func IndicatorHealth(snap models.Snapshot) []models.IndicatorStatus {
	out := make([]models.IndicatorStatus, 0, len(models.AllIndicators))
	for _, ind := range models.AllIndicators {
		d := snap.Get(ind)
		st := models.IndicatorStatus{Indicator: ind, OK: d.Reading.OK, Points: len(d.History)}
		if d.Reading.OK && !d.Reading.AsOf.IsZero() {
			asOf := d.Reading.AsOf
			st.AsOf = &asOf
		}
		out = append(out, st)
	}
	return out
}

var _ domrepo.SnapshotSource = (*SnapshotCollector)(nil)
