package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	security "github.com/linemk/printshop/internal/jwt-new"
	"github.com/linemk/printshop/internal/service"
)

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - токен и роль из него, по роли дашборд решает, показывать ли цех
type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
	Admin bool   `json:"admin"`
}

var validate = validator.New()

// AuthHandler - вход в магазин, токен сохраняется в сессии дашборда
func AuthHandler(log *slog.Logger, authService service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			writeError(w, "sign in", err)
			return
		}

		role := security.RoleFromToken(token)
		logger.Info("signed in", slog.String("role", role))
		writeJSON(w, logger, AuthResponse{Token: token, Role: role, Admin: role == security.RoleAdmin})
	}
}
