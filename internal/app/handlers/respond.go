package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/poller"
	"github.com/linemk/printshop/internal/service"
	"github.com/linemk/printshop/internal/workshop"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeError отдаёт сообщение для пользователя и подходящий статус
func writeError(w http.ResponseWriter, what string, err error) {
	var apiErr *api.Error
	status := http.StatusBadGateway
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		status = apiErr.Status
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuote),
		errors.Is(err, service.ErrMissingModel),
		errors.Is(err, poller.ErrInvalidOrderID),
		errors.Is(err, workshop.ErrChecklist):
		status = http.StatusBadRequest
	case errors.Is(err, workshop.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workshop.ErrBusy),
		errors.Is(err, workshop.ErrActionNotPermitted),
		errors.Is(err, workshop.ErrDeclined):
		status = http.StatusConflict
	}

	msg := api.Describe(what, err)
	if status != http.StatusBadGateway && apiErr == nil {
		msg += ": " + rootCause(err).Error()
	}
	http.Error(w, msg, status)
}

// rootCause - самая внутренняя ошибка цепочки, без префиксов op
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
