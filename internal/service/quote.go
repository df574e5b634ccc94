package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
)

type QuoteService interface {
	Create(ctx context.Context, req models.QuoteRequest, locale string) (*models.Quote, error)
}

type quoteService struct {
	log     *slog.Logger
	backend Backend
}

func NewQuoteService(log *slog.Logger, backend Backend) QuoteService {
	return &quoteService{log: log, backend: backend}
}

// Create запрашивает цену. Без модели запрос не отправляется.
func (s *quoteService) Create(ctx context.Context, req models.QuoteRequest, locale string) (*models.Quote, error) {
	const op = "service.QuoteService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("modelID", req.ModelID))

	if req.ModelID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingModel)
	}
	if err := validate.Struct(req); err != nil {
		logger.Warn("invalid quote request", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidQuote, err)
	}

	var quote models.Quote
	if err := s.backend.Post(ctx, api.WithLocale(api.PathQuotes, locale), req, &quote); err != nil {
		logger.Error("quote request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("quote created", slog.Int64("quoteID", quote.ID), slog.String("price", models.FormatMoney(quote.PriceEUR)))
	return &quote, nil
}
