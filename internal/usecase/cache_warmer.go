package usecase

import (
	"context"
	"time"

	"MacroTilt/internal/domain/models"
	"MacroTilt/pkg/logger"
)

// WarmLockKey is the lock replicas contend for before warming the shared cache.
const WarmLockKey = "macrotilt:lock:warm"

// Refresher re-fetches one indicator and stores it in the cache.
type Refresher interface {
	Refresh(ctx context.Context, ind models.Indicator) (models.IndicatorData, error)
}

// Locker lets one replica warm a shared cache while the others skip the tick.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// CacheWarmer refreshes every indicator so request paths hit a warm cache.
type CacheWarmer struct {
	r       Refresher
	lock    Locker
	timeout time.Duration
	log     *logger.Logger
}

// NewCacheWarmer builds a warmer. lock may be nil when the cache is process-local.
func NewCacheWarmer(r Refresher, lock Locker, timeout time.Duration, log *logger.Logger) *CacheWarmer {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CacheWarmer{r: r, lock: lock, timeout: timeout, log: log}
}

func (w *CacheWarmer) Name() string { return "warm_indicator_cache" }

// Run refreshes indicators sequentially and returns how many succeeded. It returns 0 without
// fetching when another replica holds the warm lock.
func (w *CacheWarmer) Run(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if w.lock != nil {
		ok, err := w.lock.TryLock(ctx, WarmLockKey, w.timeout)
		if err != nil {
			w.log.Warn("cache warm lock failed", logger.Error(err))
			return 0
		}
		if !ok {
			w.log.Debug("cache warm skipped, lock held elsewhere")
			return 0
		}
		defer func() {
			if err := w.lock.Unlock(context.Background(), WarmLockKey); err != nil {
				w.log.Warn("cache warm unlock failed", logger.Error(err))
			}
		}()
	}

	ok := 0
	for _, ind := range models.AllIndicators {
		if _, err := w.r.Refresh(ctx, ind); err != nil {
			w.log.Warn("cache warm failed", logger.String("indicator", string(ind)), logger.Error(err))
			continue
		}
		ok++
	}
	w.log.Info("indicator cache warmed", logger.Int("ok", ok), logger.Int("total", len(models.AllIndicators)))
	return ok
}
