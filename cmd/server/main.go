package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/printshop/internal/app"
	"github.com/linemk/printshop/internal/app/handlers"
	"github.com/linemk/printshop/internal/config"
	"github.com/linemk/printshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/printshop/internal/lib/logger"
	"github.com/linemk/printshop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/printshop/internal/lib/metrics"
	"github.com/linemk/printshop/internal/poller"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// loginNavigator - после 401 дашборд только пишет в лог, куда отправить пользователя
type loginNavigator struct {
	log *slog.Logger
}

func (n loginNavigator) Location() string { return "/api/orders" }

func (n loginNavigator) Navigate(path string) {
	n.log.Warn("session expired, sign in again", slog.String("redirect", path))
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// загрузка конфигурации
	cfg := config.MustLoad(*configPath)

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env, cfg.Log.File)
	log.Info("starting dashboard", slog.String("env", cfg.Env), slog.String("api", cfg.API.BaseURL))

	// сессия, клиент бэкенда и сервисы
	application, err := app.NewApp(log, cfg, loginNavigator{log: log})
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	ctx, cancelPollers := context.WithCancel(context.Background())
	defer cancelPollers()

	// по поллеру на просматриваемый заказ
	registry := poller.NewRegistry(ctx, log, application.Orders, poller.RegistryConfig{
		ActiveInterval: cfg.Poller.ActiveInterval,
		IdleInterval:   cfg.Poller.IdleInterval,
		VisibleFor:     cfg.Poller.VisibleFor,
		IdleTTL:        cfg.Poller.IdleTTL,
	})
	go registry.Run(ctx)

	board := application.NewBoard()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(log, application.Auth))

	router.Group(func(r chi.Router) {
		// токен мог сохранить CLI, пока дашборд работает
		r.Use(jwtmiddleware.NewJWTMiddleware(func() string {
			if err := application.Session.Reload(); err != nil {
				log.Warn("failed to reload session", slog.Any("error", err))
			}
			return application.Session.Token()
		}))

		r.Get("/api/orders", handlers.OrdersHandler(log, application.Orders))
		r.Get("/api/orders/{id}/status", handlers.OrderStatusHandler(log, registry))
		r.Get("/api/cart", handlers.CartHandler(log, application.Carts))
		r.Post("/api/cart/checkout", handlers.CheckoutHandler(log, application.Carts))
		r.Get("/api/checkout/success", handlers.CheckoutSuccessHandler(log, application.Session))
		r.Get("/api/checkout/cancel", handlers.CheckoutCancelHandler(log))

		// цех доступен только администратору
		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.AdminOnly)
			r.Get("/api/workshop/jobs", handlers.WorkshopJobsHandler(log, board, cfg.Workshop.PageSize))
			r.Post("/api/workshop/jobs/{id}/preflight", handlers.PreflightHandler(log, board))
			r.Post("/api/workshop/jobs/{id}/{action}", handlers.WorkshopActionHandler(log, board))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	registry.Close()
	log.Info("server gracefully stopped")
}
