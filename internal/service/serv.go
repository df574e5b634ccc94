package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Profile - текущий пользователь
type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout() error
	Me(ctx context.Context) (*Profile, error)
}

type authService struct {
	log     *slog.Logger
	backend Backend
	sess    *session.Session
}

func NewAuthService(log *slog.Logger, backend Backend, sess *session.Session) AuthService {
	return &authService{
		log:     log,
		backend: backend,
		sess:    sess,
	}
}

// Login проверяет форму, получает токен и сохраняет его в сессии.
func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	req := LoginRequest{Email: email, Password: password}
	if err := validate.Struct(req); err != nil {
		logger.Warn("invalid login form", slog.Any("error", err))
		return "", fmt.Errorf("%s: invalid credentials form: %w", op, err)
	}

	var res loginResponse
	if err := a.backend.Post(ctx, api.PathLogin, req, &res); err != nil {
		logger.Error("login request failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("%s: backend returned empty token", op)
	}

	if err := a.sess.SetToken(res.AccessToken); err != nil {
		logger.Error("failed to store token", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.String("role", a.sess.Role()))
	return res.AccessToken, nil
}

func (a *authService) Logout() error {
	const op = "service.AuthService.Logout"
	if err := a.sess.ClearToken(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info("user logged out", slog.String("op", op))
	return nil
}

func (a *authService) Me(ctx context.Context) (*Profile, error) {
	const op = "service.AuthService.Me"

	var p Profile
	if err := a.backend.Get(ctx, api.PathMe, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Role == "" {
		p.Role = a.sess.Role()
	}
	return &p, nil
}
