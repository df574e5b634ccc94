package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
)

type OrderService interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	Jobs(ctx context.Context, orderID int64) ([]models.PrintJob, error)
}

type orderService struct {
	log     *slog.Logger
	backend Backend
}

func NewOrderService(log *slog.Logger, backend Backend) OrderService {
	return &orderService{log: log, backend: backend}
}

func (s *orderService) List(ctx context.Context) ([]models.Order, error) {
	const op = "service.OrderService.List"

	var orders []models.Order
	if err := s.backend.Get(ctx, api.PathOrders, &orders); err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.Get"

	var order models.Order
	if err := s.backend.Get(ctx, api.Order(id), &order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// Jobs возвращает задачи заказа по возрастанию id
func (s *orderService) Jobs(ctx context.Context, orderID int64) ([]models.PrintJob, error) {
	const op = "service.OrderService.Jobs"

	var jobs []models.PrintJob
	if err := s.backend.Get(ctx, api.OrderJobs(orderID), &jobs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.SortJobs(jobs), nil
}
