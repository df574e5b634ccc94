package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderCartSession = "X-Cart-Session"

	DefaultRetryDelay = 300 * time.Millisecond
)

// Credentials - то, что клиент читает из сессии перед каждым запросом
type Credentials interface {
	Token() string
	ClearToken() error
	Locale() string
	CartSession() string
	SetCartSession(marker string) error
}

// Navigator - куда вести пользователя после 401.
// Location возвращает текущее место, чтобы вернуться туда после входа.
type Navigator interface {
	Location() string
	Navigate(path string)
}

type noopNavigator struct{}

func (noopNavigator) Location() string { return "/" }
func (noopNavigator) Navigate(string)  {}

// Client - обёртка над REST API магазина
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	nav        Navigator
	retryDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

func New(log *slog.Logger, baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		log:        log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		creds:      creds,
		nav:        noopNavigator{},
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient - транспорт для запросов мимо API, например загрузки по presigned URL
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do выполняет запрос. Ответ JSON декодируется в out; *[]byte получает тело как есть,
// *string - как текст. GET повторяется один раз при сетевой ошибке или статусе >= 500.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	const op = "api.Client.Do"
	logger := c.log.With(
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
	)

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
	}

	endpoint := endpointLabel(path)
	attempt := func() error {
		err := c.once(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if method != http.MethodGet || !retryable(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), 1), ctx)
	err := backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		backendRetries.WithLabelValues(method, endpoint).Inc()
		logger.Warn("retrying request", slog.Any("error", err), slog.Duration("wait", wait))
	})
	if err != nil {
		logger.Debug("request failed", slog.Any("error", err))
		return err
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	c.decorate(req, payload != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		backendRequests.WithLabelValues(method, endpointLabel(path), statusLabel(0)).Inc()
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()
	backendRequests.WithLabelValues(method, endpointLabel(path), statusLabel(resp.StatusCode)).Inc()

	if marker := resp.Header.Get(HeaderCartSession); marker != "" && marker != c.creds.CartSession() {
		if err := c.creds.SetCartSession(marker); err != nil {
			c.log.Warn("failed to persist cart session", slog.Any("error", err))
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %w", method, path, ErrNetwork, err)
	}
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp, raw, isJSON)
		// 401 на входе - неверный пароль, а не истёкшая сессия
		if apiErr.Status == http.StatusUnauthorized && path != PathLogin {
			c.logout()
		}
		return apiErr
	}

	return decode(raw, isJSON, out)
}

func (c *Client) decorate(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if loc := c.creds.Locale(); loc != "" {
		req.Header.Set("Accept-Language", loc)
	}
	if marker := c.creds.CartSession(); marker != "" {
		req.Header.Set(HeaderCartSession, marker)
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())
}

// logout сбрасывает токен и отправляет на вход с возвратом на текущую страницу
func (c *Client) logout() {
	if err := c.creds.ClearToken(); err != nil {
		c.log.Error("failed to clear token", slog.Any("error", err))
	}
	c.nav.Navigate("/login?redirectTo=" + url.QueryEscape(c.nav.Location()))
}

func newError(resp *http.Response, raw []byte, isJSON bool) *Error {
	var body any
	if isJSON && len(raw) > 0 {
		// битый JSON - не повод терять статус
		_ = json.Unmarshal(raw, &body)
	}
	return &Error{
		Message:   messageFrom(body, resp.StatusCode),
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get(HeaderRequestID),
	}
}

func decode(raw []byte, isJSON bool, out any) error {
	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = raw
		return nil
	case *string:
		*dst = string(raw)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	if !isJSON {
		return fmt.Errorf("expected JSON response, got %q", truncate(string(raw), 64))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
