package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/internal/domain/models"
	xhttp "MacroTilt/pkg/http"
	xlogger "MacroTilt/pkg/logger"
)

type fakeService struct {
	recs   map[string]models.Recommendation
	errs   map[string]error
	evErr  error
	health []models.IndicatorStatus
}

func (f *fakeService) Evaluate(context.Context) (*models.Evaluation, error) {
	if f.evErr != nil {
		return nil, f.evErr
	}
	return &models.Evaluation{NetBefore: 0.01, SumProposed: 1}, nil
}

func (f *fakeService) Signal(_ context.Context, ticker string) (*models.Recommendation, error) {
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	rec, ok := f.recs[ticker]
	if !ok {
		return nil, fmt.Errorf("recommend %s: %w", ticker, models.ErrUnknownTicker)
	}
	return &rec, nil
}

func (f *fakeService) Health(context.Context) []models.IndicatorStatus { return f.health }

func newTestEcho(svc RebalanceService, checks map[string]Check) *echo.Echo {
	e := echo.New()
	NewRebalanceHandler(xlogger.Nop(), svc).RegisterRoutes(e)
	NewHealthHandler(checks).RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data []xhttp.AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	return body.Data[0].Code
}

func TestSignalEndpoint(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := &fakeService{
		recs: map[string]models.Recommendation{
			"SPY": {Ticker: "SPY", Directive: "Increase 4.17%", FinalDelta: 0.0417, OldAllocation: 0.6, NewAllocation: 0.625, EvaluatedAt: now},
		},
		errs: map[string]error{
			"CASH": fmt.Errorf("recommend CASH: %w", models.ErrInvalidAllocation),
			"BOOM": errors.New("load assets: clickhouse down"),
			"SLOW": fmt.Errorf("evaluate: %w", context.DeadlineExceeded),
		},
	}
	e := newTestEcho(svc, nil)

	rec := get(e, "/api/signal?ticker=SPY")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))
	var ok struct {
		Data models.Recommendation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, "Increase 4.17%", ok.Data.Directive)
	assert.InDelta(t, 0.625, ok.Data.NewAllocation, 1e-12)

	rec = get(e, "/api/signal?ticker=XYZ")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ERR_UNKNOWN_TICKER", errorCode(t, rec))

	rec = get(e, "/api/signal?ticker=CASH")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ERR_INVALID_ALLOCATION", errorCode(t, rec))

	rec = get(e, "/api/signal?ticker=BOOM")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "ERR_INTERNAL", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "clickhouse")

	rec = get(e, "/api/signal?ticker=SLOW")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSignalEndpointValidation(t *testing.T) {
	e := newTestEcho(&fakeService{}, nil)

	rec := get(e, "/api/signal")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Data []xhttp.ValidationError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ERR_REQUIRED", body.Data[0].Code)
	assert.Equal(t, "ticker", body.Data[0].Field)

	rec = get(e, "/api/signal?ticker=ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluationEndpoint(t *testing.T) {
	e := newTestEcho(&fakeService{}, nil)
	rec := get(e, "/api/evaluation")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data models.Evaluation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 0.01, body.Data.NetBefore, 1e-12)

	e = newTestEcho(&fakeService{evErr: errors.New("load assets: down")}, nil)
	assert.Equal(t, http.StatusInternalServerError, get(e, "/api/evaluation").Code)
}

func TestIndicatorHealthEndpoint(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := &fakeService{health: []models.IndicatorStatus{
		{Indicator: models.IndicatorUnemployment, OK: true, AsOf: &now, Points: 6},
		{Indicator: models.IndicatorGDP, OK: false},
	}}
	rec := get(newTestEcho(svc, nil), "/api/indicators/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data IndicatorHealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Available)
	assert.Equal(t, 2, body.Data.Total)
	assert.Equal(t, models.IndicatorGDP, body.Data.Indicators[1].Indicator)
}

func TestHealthz(t *testing.T) {
	rec := get(newTestEcho(&fakeService{}, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	checks := map[string]Check{
		"clickhouse": func(context.Context) error { return nil },
		"redis":      func(context.Context) error { return errors.New("connection refused") },
	}
	rec = get(newTestEcho(&fakeService{}, checks), "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), `"clickhouse":"ok"`)
}
