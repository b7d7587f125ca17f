package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	pkgkafka "MacroTilt/pkg/kafka"
	"MacroTilt/pkg/logger"
)

// RebalanceRequest is the payload consumed from the request topic.
type RebalanceRequest struct {
	Ticker string `json:"ticker"`
}

// KafkaRequestsHandler answers rebalance requests; the use case publishes the result.
type KafkaRequestsHandler struct {
	topic   string
	uc      *RebalanceUseCase
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewKafkaRequestsHandler(topic string, uc *RebalanceUseCase, metrics domrepo.Metrics, log *logger.Logger) *KafkaRequestsHandler {
	return &KafkaRequestsHandler{topic: topic, uc: uc, metrics: metrics, log: log}
}

func (h *KafkaRequestsHandler) Topic() string { return h.topic }

// Handle processes one request. Requests for unknown tickers or invalid allocations are
// dropped rather than retried, since retrying cannot fix them.
func (h *KafkaRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req RebalanceRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		h.log.Warn("dropping malformed rebalance request", logger.Error(err))
		return nil
	}
	if NormalizeTicker(req.Ticker) == "" {
		h.metrics.RecordError("consumer_validate")
		return nil
	}
	rec, err := h.uc.Signal(ctx, req.Ticker)
	switch {
	case errors.Is(err, models.ErrUnknownTicker), errors.Is(err, models.ErrInvalidAllocation),
		errors.Is(err, models.ErrDegenerateAllocation):
		h.log.Warn("rejecting rebalance request", logger.String("ticker", req.Ticker), logger.Error(err))
		return nil
	case err != nil:
		return fmt.Errorf("signal %s: %w", req.Ticker, err)
	}
	h.log.Debug("rebalance request answered",
		logger.String("ticker", rec.Ticker),
		logger.String("directive", rec.Directive))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRequestsHandler)(nil)
