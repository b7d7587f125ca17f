package fred

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"MacroTilt/internal/domain/models"
	xhttp "MacroTilt/pkg/http"
	"MacroTilt/pkg/logger"
	"MacroTilt/pkg/util"
)

const (
	DefaultBaseURL   = "https://api.stlouisfed.org/fred"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2.0
	DefaultHistory   = 6
	DefaultAttempts  = 3

	missingValue = "."
)

var (
	// ErrNoSeries is returned for an indicator without a configured series.
	ErrNoSeries = errors.New("fred: no series configured")
	// ErrNoObservations is returned when a series has no usable observations.
	ErrNoObservations = errors.New("fred: no observations")
)

// Series describes how one indicator maps onto a FRED series.
type Series struct {
	ID      string
	Units   string
	History int
}

// Client fetches indicator observations from the FRED REST API.
type Client struct {
	apiKey   string
	baseURL  string
	series   map[models.Indicator]Series
	http     *xhttp.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	attempts int
	backoff  time.Duration
	log      *logger.Logger
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

func WithHTTPClient(h *xhttp.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetry sets the number of attempts and the linear backoff step between them.
func WithRetry(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a FRED client for the given indicator series.
func NewClient(apiKey string, series map[models.Indicator]Series, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		series:   series,
		http:     xhttp.NewClient(xhttp.WithTimeout(DefaultTimeout)),
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		attempts: DefaultAttempts,
		backoff:  250 * time.Millisecond,
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "fred",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return c
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

// Fetch returns the newest observation of ind's series as the reading and up to History
// observations, oldest to newest, as the series.
func (c *Client) Fetch(ctx context.Context, ind models.Indicator) (models.IndicatorData, error) {
	s, ok := c.series[ind]
	if !ok || s.ID == "" {
		return models.IndicatorData{}, fmt.Errorf("%w: %s", ErrNoSeries, ind)
	}
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.observations(ctx, s)
	})
	if err != nil {
		return models.IndicatorData{}, fmt.Errorf("fetch %s (%s): %w", ind, s.ID, err)
	}
	obs := res.([]observation)
	return decode(ind, obs)
}

func (c *Client) observations(ctx context.Context, s Series) ([]observation, error) {
	history := s.History
	if history <= 0 {
		history = DefaultHistory
	}
	q := map[string][]string{
		"series_id":  {s.ID},
		"api_key":    {c.apiKey},
		"file_type":  {"json"},
		"sort_order": {"desc"},
		// headroom for "." gaps
		"limit": {strconv.Itoa(history * 2)},
	}
	if s.Units != "" {
		q["units"] = []string{s.Units}
	}
	req := &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/series/observations",
		QueryParams: q,
	}

	var (
		out     observationsResponse
		lastErr error
	)
	for i := 1; i <= c.attempts; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		lastErr = c.http.SendAndParse(ctx, req, &out)
		if lastErr == nil {
			break
		}
		c.log.Debug("fred request failed",
			logger.String("series", s.ID),
			logger.Int("attempt", i),
			logger.Error(lastErr))
		if i == c.attempts || !xhttp.IsRetryable(lastErr) {
			return nil, lastErr
		}
		select {
		case <-time.After(time.Duration(i) * c.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	valid := make([]observation, 0, history)
	for _, o := range out.Observations {
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		valid = append(valid, o)
		if len(valid) == history {
			break
		}
	}
	return valid, nil
}

// decode turns newest-first observations into a reading plus an oldest-first series.
func decode(ind models.Indicator, obs []observation) (models.IndicatorData, error) {
	hist := make(models.Series, 0, len(obs))
	var asOf time.Time
	for i := len(obs) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(obs[i].Value, 64)
		if err != nil {
			continue
		}
		hist = append(hist, v)
		if t, ok := util.ParseTime(obs[i].Date); ok {
			asOf = t
		}
	}
	if len(hist) == 0 {
		return models.IndicatorData{}, fmt.Errorf("%w: %s", ErrNoObservations, ind)
	}
	r := models.NewReading(hist[len(hist)-1], asOf)
	if ind == models.IndicatorGDP {
		r.Text = gdpDirection(r.Value)
	}
	return models.IndicatorData{Indicator: ind, Reading: r, History: hist}, nil
}

func gdpDirection(growth float64) string {
	switch {
	case growth > 0:
		return "growth"
	case growth < 0:
		return "decline"
	default:
		return "flat"
	}
}
