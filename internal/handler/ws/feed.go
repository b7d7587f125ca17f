package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"MacroTilt/internal/domain/models"
	"MacroTilt/internal/service/metrics"
	xhttp "MacroTilt/pkg/http"
	xlogger "MacroTilt/pkg/logger"
	"MacroTilt/pkg/util"
)

const (
	DefaultInterval   = time.Minute
	DefaultMaxTickers = 32
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
)

// SignalSource prices several tickers against one shared evaluation.
type SignalSource interface {
	SignalMany(ctx context.Context, tickers []string) (map[string]models.Recommendation, map[string]error, error)
}

// Option configures FeedHandler.
type Option func(*FeedHandler)

// WithInterval sets how often subscribed tickers are re-evaluated.
func WithInterval(d time.Duration) Option {
	return func(h *FeedHandler) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithMaxTickers caps the tickers one connection may subscribe to.
func WithMaxTickers(n int) Option {
	return func(h *FeedHandler) {
		if n > 0 {
			h.maxTickers = n
		}
	}
}

// FeedHandler serves GET /ws/signals?tickers=SPY,TLT. Each connection re-evaluates on an interval
// and pushes a ticker's recommendation only when its directive changed since the last push.
type FeedHandler struct {
	src        SignalSource
	log        *xlogger.Logger
	interval   time.Duration
	maxTickers int
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	closing chan struct{}
	wg      sync.WaitGroup
}

func NewFeedHandler(src SignalSource, log *xlogger.Logger, opts ...Option) *FeedHandler {
	metrics.Register()
	h := &FeedHandler{
		src:        src,
		log:        log,
		interval:   DefaultInterval,
		maxTickers: DefaultMaxTickers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		closing: make(chan struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *FeedHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/signals", h.Serve)
}

func (h *FeedHandler) Serve(c echo.Context) error {
	tickers := util.SplitList(c.QueryParam("tickers"))
	if len(tickers) == 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "tickers", Message: "tickers is required",
		}})
	}
	if len(tickers) > h.maxTickers {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_MAX", Field: "tickers", Message: "too many tickers",
			Params: map[string]interface{}{"max": h.maxTickers},
		}})
	}
	for _, t := range tickers {
		if !xhttp.ValidTicker(t) {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code: "ERR_TICKER", Field: "tickers", Message: "invalid ticker " + t,
			}})
		}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		metrics.FeedErrors.WithLabelValues("upgrade").Inc()
		h.log.Warn("feed upgrade failed", xlogger.Error(err))
		return nil
	}

	h.wg.Add(1)
	defer h.wg.Done()
	metrics.FeedClients.Inc()
	defer metrics.FeedClients.Dec()

	h.log.Info("feed client connected",
		xlogger.String("remote", c.RealIP()),
		xlogger.Strings("tickers", tickers))
	h.stream(c.Request().Context(), conn, tickers)
	h.log.Info("feed client disconnected", xlogger.String("remote", c.RealIP()))
	return nil
}

// Close asks every open stream to finish and waits for them.
func (h *FeedHandler) Close(ctx context.Context) error {
	h.mu.Lock()
	select {
	case <-h.closing:
	default:
		close(h.closing)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *FeedHandler) stream(ctx context.Context, conn *websocket.Conn, tickers []string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	// read loop: clients only send control frames; any read error ends the stream
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	last := make(map[string]string, len(tickers))
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pongWait * 9 / 10)
	defer ping.Stop()

	for {
		if err := h.push(ctx, conn, tickers, last); err != nil {
			metrics.FeedErrors.WithLabelValues("write").Inc()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-h.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ticker.C:
		}
	}
}

// push evaluates once and writes every ticker whose directive or error changed.
func (h *FeedHandler) push(ctx context.Context, conn *websocket.Conn, tickers []string, last map[string]string) error {
	recs, errs, err := h.src.SignalMany(ctx, tickers)
	if err != nil {
		if ctx.Err() == nil {
			metrics.FeedErrors.WithLabelValues("evaluate").Inc()
			h.log.Warn("feed evaluation failed", xlogger.Error(err))
		}
		return nil
	}
	for _, t := range tickers {
		var msg models.FeedMessage
		var state string
		if rec, ok := recs[t]; ok {
			rec := rec
			msg = models.FeedMessage{Type: models.FeedTypeSignal, Ticker: t, Recommendation: &rec}
			state = rec.Directive
		} else if e, ok := errs[t]; ok {
			msg = models.FeedMessage{Type: models.FeedTypeError, Ticker: t, Error: e.Error()}
			state = "error: " + e.Error()
		} else {
			continue
		}
		if prev, seen := last[t]; seen && prev == state {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			return err
		}
		last[t] = state
		metrics.FeedPushes.WithLabelValues(t).Inc()
	}
	return nil
}
