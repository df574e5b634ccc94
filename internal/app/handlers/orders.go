package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/poller"
	"github.com/linemk/printshop/internal/service"
)

// StatusWatcher - реестр поллеров заказов
type StatusWatcher interface {
	Watch(orderID int64) (poller.State, error)
}

// OrderStatusResponse - состояние страницы статуса заказа
type OrderStatusResponse struct {
	Loading bool              `json:"loading"`
	Active  bool              `json:"active"`
	Order   *models.Order     `json:"order,omitempty"`
	Jobs    []models.PrintJob `json:"jobs"`
	Error   string            `json:"error,omitempty"`
}

// OrdersHandler обрабатывает запрос GET /api/orders
func OrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersHandler"
		logger := log.With(slog.String("op", op))

		list, err := orders.List(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(w, "load orders", err)
			return
		}
		if list == nil {
			list = []models.Order{}
		}

		writeJSON(w, logger, list)
	}
}

// OrderStatusHandler обрабатывает запрос GET /api/orders/{id}/status.
// Данные отдаются из поллера, сам запрос к бэкенду не ходит.
func OrderStatusHandler(log *slog.Logger, watcher StatusWatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderStatusHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			logger.Warn("invalid order id", slog.String("id", chi.URLParam(r, "id")))
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		state, err := watcher.Watch(id)
		if err != nil {
			writeError(w, "track order", err)
			return
		}

		resp := OrderStatusResponse{
			Loading: state.Loading,
			Active:  state.Active,
			Jobs:    []models.PrintJob{},
			Error:   state.Err,
		}
		if state.View != nil {
			resp.Order = state.View.Order
			resp.Jobs = state.View.Jobs
		}
		writeJSON(w, logger, resp)
	}
}
