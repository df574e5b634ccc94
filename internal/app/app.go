package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/config"
	"github.com/linemk/printshop/internal/service"
	"github.com/linemk/printshop/internal/session"
	"github.com/linemk/printshop/internal/workshop"
)

// App - всё, что нужно CLI и дашборду: конфиг, сессия, клиент и сервисы
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Session
	Client  *api.Client

	Auth     service.AuthService
	Catalog  service.CatalogService
	Quotes   service.QuoteService
	Carts    service.CartService
	Uploads  service.UploadService
	Orders   service.OrderService
	Workshop service.WorkshopService

	close func() error
}

// NewApp открывает файл сессии из конфига и собирает сервисы
func NewApp(log *slog.Logger, cfg *config.Config, nav api.Navigator) (*App, error) {
	store, err := session.OpenBolt(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	app, err := NewWithStore(log, cfg, store, nav)
	if err != nil {
		store.Close()
		return nil, err
	}
	app.close = store.Close
	return app, nil
}

// NewWithStore - то же, но с готовым хранилищем сессии
func NewWithStore(log *slog.Logger, cfg *config.Config, store session.Store, nav api.Navigator) (*App, error) {
	sess, err := session.LoadFromEnv(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	opts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithRetryDelay(cfg.API.RetryDelay),
	}
	if nav != nil {
		opts = append(opts, api.WithNavigator(nav))
	}
	client := api.New(log, cfg.API.BaseURL, sess, opts...)

	return &App{
		Config:  cfg,
		Logger:  log,
		Session: sess,
		Client:  client,

		Auth:     service.NewAuthService(log, client, sess),
		Catalog:  service.NewCatalogService(log, client),
		Quotes:   service.NewQuoteService(log, client),
		Carts:    service.NewCartService(log, client, sess),
		Uploads:  service.NewUploadService(log, client, client.HTTPClient()),
		Orders:   service.NewOrderService(log, client),
		Workshop: service.NewWorkshopService(log, client),
	}, nil
}

// NewBoard - доска цеха поверх сервиса
func (a *App) NewBoard() *workshop.Board {
	return workshop.NewBoard(a.Logger, a.Workshop)
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}
