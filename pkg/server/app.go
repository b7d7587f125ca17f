package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MacroTilt/pkg/config"
	xhttp "MacroTilt/pkg/http"
	pkgkafka "MacroTilt/pkg/kafka"
	applogger "MacroTilt/pkg/logger"
	"MacroTilt/pkg/scheduler"
)

// Drainer is a long-lived surface that must finish its open sessions on shutdown.
type Drainer interface {
	Close(ctx context.Context) error
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Option configures App.
type Option func(*App)

// WithConsumer runs a Kafka consumer with handler registered.
func WithConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.kh = h
	}
}

// WithScheduler runs background jobs.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(a *App) { a.sched = s }
}

// WithDrainer drains d before the HTTP server stops.
func WithDrainer(d Drainer) Option {
	return func(a *App) { a.drainers = append(a.drainers, d) }
}

// WithCloser closes c after every surface has stopped. Closers run in reverse registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, namedCloser{name: name, c: c})
		}
	}
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	sched      *scheduler.Scheduler
	drainers   []Drainer
	closers    []namedCloser
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	a := &App{cfg: cfg, log: log, httpServer: httpServer}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every surface and blocks until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.sched != nil {
		a.sched.Start()
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(runCtx); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("macrotilt started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("store", a.cfg.Store.Backend),
		applogger.Int("port", a.cfg.Server.Port))

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.sched != nil {
		if err := a.sched.Stop(ctx); err != nil {
			a.log.Warn("scheduler stop error", applogger.Error(err))
		}
	}

	for _, d := range a.drainers {
		if err := d.Close(ctx); err != nil {
			a.log.Warn("drain error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
