package di

import (
    "context"
    "fmt"
    "io"
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"

    "MacroTilt/internal/domain/models"
    "MacroTilt/internal/domain/repository"
    "MacroTilt/internal/handler/api"
    "MacroTilt/internal/handler/ws"
    internalrepo "MacroTilt/internal/repository"
    icache "MacroTilt/internal/service/cache"
    "MacroTilt/internal/service/fred"
    "MacroTilt/internal/service/ratelimit"
    "MacroTilt/internal/services/engine"
    "MacroTilt/internal/usecase"
    pkgch "MacroTilt/pkg/clickhouse"
    "MacroTilt/pkg/config"
    xhttp "MacroTilt/pkg/http"
    "MacroTilt/pkg/http/middleware"
    pkgkafka "MacroTilt/pkg/kafka"
    applogger "MacroTilt/pkg/logger"
    "MacroTilt/pkg/metrics"
    "MacroTilt/pkg/scheduler"
    "MacroTilt/pkg/server"
)

// CacheBackend bundles the indicator cache with its lock and the resource to close.
type CacheBackend struct {
    Cache  icache.BytesCache
    Locker icache.Locker
    Closer io.Closer
}

// Stores bundles the settings and asset stores chosen by store.backend.
type Stores struct {
    Settings repository.SettingsStore
    Assets   repository.AssetStore
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
    l, err := applogger.New(&applogger.Config{
        Level:  cfg.Logging.Level,
        Format: cfg.Logging.Format,
        Output: cfg.Logging.Output,
    })
    if err != nil {
        return nil, fmt.Errorf("logger: %w", err)
    }
    return l, nil
}

var (
    recorderOnce sync.Once
    recorder     repository.Metrics
)

// ProvideMetrics returns the Prometheus metrics recorder on the default registry.
// Collectors are registered once per process, so repeated injections share them.
func ProvideMetrics() repository.Metrics {
    recorderOnce.Do(func() {
        recorder = metrics.New(prometheus.DefaultRegisterer)
    })
    return recorder
}

// FREDSeries maps configured series onto indicators. Unknown names are rejected by config validation.
func FREDSeries(cfg *config.Config) map[models.Indicator]fred.Series {
    out := make(map[models.Indicator]fred.Series, len(cfg.FRED.Series))
    for name, s := range cfg.FRED.Series {
        out[models.Indicator(name)] = fred.Series{ID: s.ID, Units: s.Units, History: s.History}
    }
    return out
}

// ProvideFREDClient creates the FRED acquisition client.
func ProvideFREDClient(cfg *config.Config, l *applogger.Logger) *fred.Client {
    if cfg.FRED.APIKey == "" {
        l.Warn("fred api key is empty, every indicator will report no data")
    }
    return fred.NewClient(cfg.FRED.APIKey, FREDSeries(cfg),
        fred.WithBaseURL(cfg.FRED.BaseURL),
        fred.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.FRED.Timeout))),
        fred.WithRateLimit(cfg.FRED.RateLimit),
        fred.WithRetry(cfg.FRED.Attempts, cfg.FRED.Backoff),
        fred.WithLogger(l),
    )
}

// ProvideCacheBackend uses Redis when enabled and reachable, otherwise an in-process cache.
func ProvideCacheBackend(cfg *config.Config, l *applogger.Logger) *CacheBackend {
    if cfg.Cache.Redis.Enabled {
        rc := icache.NewRedisCache(icache.RedisConfig{
            Addr:     cfg.Cache.Redis.Addr,
            Password: cfg.Cache.Redis.Password,
            DB:       cfg.Cache.Redis.DB,
        })
        ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
        defer cancel()
        err := rc.Ping(ctx)
        if err == nil {
            return &CacheBackend{Cache: rc, Locker: rc, Closer: rc}
        }
        l.Warn("redis unavailable, falling back to in-process cache",
            applogger.String("addr", cfg.Cache.Redis.Addr),
            applogger.Error(err))
        _ = rc.Close()
    }
    return &CacheBackend{Cache: icache.NewTTLCache()}
}

// ProvideCachedFetcher wraps the FRED client with the indicator cache.
func ProvideCachedFetcher(
    client *fred.Client,
    cb *CacheBackend,
    m repository.Metrics,
    l *applogger.Logger,
    cfg *config.Config,
) *icache.CachedFetcher {
    return icache.NewCachedFetcher(client, cb.Cache,
        icache.WithTTL(cfg.Cache.TTL),
        icache.WithMetrics(m),
        icache.WithLogger(l),
    )
}

// ProvideSnapshotCollector creates the concurrent snapshot collector.
func ProvideSnapshotCollector(
    f *icache.CachedFetcher,
    m repository.Metrics,
    l *applogger.Logger,
    cfg *config.Config,
) *usecase.SnapshotCollector {
    return usecase.NewSnapshotCollector(f, m, l, cfg.FRED.CollectTimeout)
}

// ProvideClickHouseClient connects and initializes the schema when the clickhouse store is selected.
// It returns nil for the yaml store.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
    if cfg.Store.Backend != config.StoreClickHouse {
        return nil, nil
    }
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    client, err := pkgch.NewClient(ctx,
        pkgch.WithHost(cfg.ClickHouse.Host),
        pkgch.WithPort(cfg.ClickHouse.Port),
        pkgch.WithDatabase(cfg.ClickHouse.Database),
        pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
        pkgch.WithMaxConnections(5, 2),
        pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
        pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
    )
    if err != nil {
        return nil, fmt.Errorf("clickhouse client: %w", err)
    }

    if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("clickhouse schema: %w", err)
    }
    return client, nil
}

// ProvideStores picks the settings and asset stores for store.backend.
func ProvideStores(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (*Stores, error) {
    if cfg.Store.Backend == config.StoreClickHouse && ch != nil {
        db := cfg.ClickHouse.Database
        return &Stores{
            Settings: internalrepo.NewCHSettingsStore(ch.DB(), db+"."+internalrepo.SettingsTable, cfg.Engine, l),
            Assets:   internalrepo.NewCHAssetStore(ch.DB(), db+"."+internalrepo.AssetsTable),
        }, nil
    }
    assets, err := internalrepo.NewStaticAssetStore(cfg.Portfolio.Assets)
    if err != nil {
        return nil, fmt.Errorf("portfolio assets: %w", err)
    }
    return &Stores{
        Settings: internalrepo.NewStaticSettingsStore(cfg.Engine),
        Assets:   assets,
    }, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
    if !cfg.Kafka.Enabled {
        return nil, nil
    }
    producer, err := pkgkafka.NewProducer(
        pkgkafka.WithBrokers(cfg.Kafka.Brokers),
        pkgkafka.WithCompression(cfg.Kafka.Compression),
        pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
        pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
        pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
        pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
    )
    if err != nil {
        return nil, fmt.Errorf("kafka producer: %w", err)
    }
    return producer, nil
}

// ProvidePublisher publishes recommendations to the signal topic. Without a producer it returns
// a nil interface so the use case skips publishing.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.RecommendationPublisher {
    if producer == nil {
        return nil
    }
    return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalTopic)
}

// ProvideEngine creates the stateless rebalancing engine.
func ProvideEngine() *engine.Engine {
    return engine.New()
}

// ProvideRebalanceUseCase assembles the use case shared by every surface.
func ProvideRebalanceUseCase(
    eng *engine.Engine,
    snapshots *usecase.SnapshotCollector,
    stores *Stores,
    pub repository.RecommendationPublisher,
    m repository.Metrics,
    l *applogger.Logger,
) *usecase.RebalanceUseCase {
    return usecase.NewRebalanceUseCase(eng, snapshots, stores.Settings, stores.Assets, pub, m, l)
}

// ProvideKafkaConsumer creates the request consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
    if !cfg.Kafka.Enabled {
        return nil, nil
    }
    consumer, err := pkgkafka.NewConsumer(l,
        pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
        pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
        pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
        pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
        pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
    )
    if err != nil {
        return nil, fmt.Errorf("kafka consumer: %w", err)
    }
    return consumer, nil
}

// ProvideKafkaRequestsHandler answers rebalance requests from the request topic.
func ProvideKafkaRequestsHandler(
    cfg *config.Config,
    uc *usecase.RebalanceUseCase,
    m repository.Metrics,
    l *applogger.Logger,
) *usecase.KafkaRequestsHandler {
    return usecase.NewKafkaRequestsHandler(cfg.Kafka.RequestTopic, uc, m, l)
}

// ProvideFeedHandler creates the live signal feed.
func ProvideFeedHandler(cfg *config.Config, uc *usecase.RebalanceUseCase, l *applogger.Logger) *ws.FeedHandler {
    return ws.NewFeedHandler(uc, l, ws.WithInterval(cfg.Feed.Interval))
}

// ProvideCacheWarmer creates the cache warming job.
func ProvideCacheWarmer(
    f *icache.CachedFetcher,
    cb *CacheBackend,
    cfg *config.Config,
    l *applogger.Logger,
) *usecase.CacheWarmer {
    var lock usecase.Locker
    if cb.Locker != nil {
        lock = cb.Locker
    }
    return usecase.NewCacheWarmer(f, lock, cfg.FRED.CollectTimeout*2, l)
}

// ProvideScheduler registers the cache warmer, or returns nil when scheduling is disabled.
func ProvideScheduler(cfg *config.Config, warmer *usecase.CacheWarmer, l *applogger.Logger) (*scheduler.Scheduler, error) {
    if !cfg.Scheduler.Enabled {
        return nil, nil
    }
    s := scheduler.New(l)
    job := scheduler.NewJob(warmer.Name(), func(ctx context.Context) error {
        if warmer.Run(ctx) == 0 && ctx.Err() != nil {
            return ctx.Err()
        }
        return nil
    })
    if err := s.AddJob(cfg.Scheduler.WarmCache, job); err != nil {
        return nil, err
    }
    return s, nil
}

// ProvideHTTPServer registers the API, health and feed routes behind the per-client rate limit.
func ProvideHTTPServer(
    cfg *config.Config,
    l *applogger.Logger,
    uc *usecase.RebalanceUseCase,
    feed *ws.FeedHandler,
    ch *pkgch.Client,
) *xhttp.Server {
    checks := map[string]api.Check{}
    if ch != nil {
        checks["clickhouse"] = ch.Health
    }
    metricsPath := ""
    if cfg.Metrics.Enabled {
        metricsPath = cfg.Metrics.Path
    }
    limiter := ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)

    return xhttp.NewServer(
        []xhttp.Handler{
            api.NewRebalanceHandler(l, uc),
            api.NewHealthHandler(checks),
            feed,
        },
        xhttp.WithPort(cfg.Server.Port),
        xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
        xhttp.WithLogger(l),
        xhttp.WithMetricsPath(metricsPath),
        xhttp.WithMiddleware(middleware.RateLimit(limiter)),
    )
}

// ProvideApp creates the application server.
func ProvideApp(
    cfg *config.Config,
    l *applogger.Logger,
    srv *xhttp.Server,
    feed *ws.FeedHandler,
    consumer *pkgkafka.Consumer,
    kh *usecase.KafkaRequestsHandler,
    sched *scheduler.Scheduler,
    producer *pkgkafka.Producer,
    ch *pkgch.Client,
    cb *CacheBackend,
) *server.App {
    opts := []server.Option{server.WithDrainer(feed)}
    if consumer != nil {
        opts = append(opts, server.WithConsumer(consumer, kh))
    }
    if sched != nil {
        opts = append(opts, server.WithScheduler(sched))
    }
    if ch != nil {
        opts = append(opts, server.WithCloser("clickhouse", ch))
    }
    if cb.Closer != nil {
        opts = append(opts, server.WithCloser("redis", cb.Closer))
    }
    if producer != nil {
        opts = append(opts, server.WithCloser("kafka producer", producer))
    }
    return server.New(cfg, l, srv, opts...)
}
