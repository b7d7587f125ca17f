package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	applogger "MacroTilt/pkg/logger"
)

type budget struct{ left map[string]int }

func (b *budget) Allow(key string) bool {
	if b.left[key] <= 0 {
		return false
	}
	b.left[key]--
	return true
}

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway, "upstream") })
	return e
}

func do(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	e := newEcho(RateLimit(&budget{left: map[string]int{"10.0.0.1": 2}}))

	assert.Equal(t, http.StatusOK, do(e, "/ok").Code)
	assert.Equal(t, http.StatusOK, do(e, "/ok").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, "/ok").Code)
}

func TestRecover(t *testing.T) {
	e := newEcho(Recover(applogger.Nop()))

	rec := do(e, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestLoggingAndMetricsWriteErrors(t *testing.T) {
	e := newEcho(RequestLogging(applogger.Nop()), Metrics(applogger.Nop(), time.Nanosecond))

	assert.Equal(t, http.StatusOK, do(e, "/ok").Code)
	assert.Equal(t, http.StatusBadGateway, do(e, "/fail").Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(429))
	assert.Equal(t, "5xx", statusClass(503))
}
