package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"MacroTilt/internal/domain/models"
	xhttp "MacroTilt/pkg/http"
	xlogger "MacroTilt/pkg/logger"
)

// RebalanceService is the use case surface the HTTP API needs.
type RebalanceService interface {
	Evaluate(ctx context.Context) (*models.Evaluation, error)
	Signal(ctx context.Context, ticker string) (*models.Recommendation, error)
	Health(ctx context.Context) []models.IndicatorStatus
}

// SignalRequest is the query of GET /api/signal.
type SignalRequest struct {
	Ticker string `query:"ticker" validate:"required,ticker"`
}

// IndicatorHealthResponse is the body of GET /api/indicators/health.
type IndicatorHealthResponse struct {
	Available  int                      `json:"available"`
	Total      int                      `json:"total"`
	Indicators []models.IndicatorStatus `json:"indicators"`
}

// RebalanceHandler serves recommendations, evaluations and indicator health over Echo.
type RebalanceHandler struct {
	logger *xlogger.Logger
	svc    RebalanceService
}

func NewRebalanceHandler(logger *xlogger.Logger, svc RebalanceService) *RebalanceHandler {
	return &RebalanceHandler{logger: logger, svc: svc}
}

func (h *RebalanceHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/evaluation", h.Evaluation)
	g.GET("/indicators/health", h.IndicatorHealth)
}

func (h *RebalanceHandler) Signal(c echo.Context) error {
	req := &SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.svc.Signal(c.Request().Context(), req.Ticker)
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= 500 {
			h.logger.Error("signal usecase error", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, rec)
}

func (h *RebalanceHandler) Evaluation(c echo.Context) error {
	ev, err := h.svc.Evaluate(c.Request().Context())
	if err != nil {
		h.logger.Error("evaluation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, ev)
}

func (h *RebalanceHandler) IndicatorHealth(c echo.Context) error {
	statuses := h.svc.Health(c.Request().Context())
	res := IndicatorHealthResponse{Total: len(statuses), Indicators: statuses}
	for _, s := range statuses {
		if s.OK {
			res.Available++
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// toAppError classifies domain errors for the HTTP surface.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrUnknownTicker):
		return xhttp.NotFoundCodeError("ERR_UNKNOWN_TICKER", "ticker", err.Error())
	case errors.Is(err, models.ErrInvalidAllocation):
		return xhttp.UnprocessableError("ERR_INVALID_ALLOCATION", err.Error())
	case errors.Is(err, models.ErrDegenerateAllocation):
		return xhttp.UnprocessableError("ERR_DEGENERATE_ALLOCATION", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("evaluation timed out").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
