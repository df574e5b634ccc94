package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/lib/logger"
	"github.com/linemk/printshop/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNavigator запоминает, куда клиент отправил пользователя
type fakeNavigator struct {
	location string
	got      string
}

func (f *fakeNavigator) Location() string { return f.location }
func (f *fakeNavigator) Navigate(path string) {
	f.got = path
}

func newClient(t *testing.T, srv *httptest.Server, opts ...api.Option) (*api.Client, *session.Session) {
	t.Helper()
	sess, err := session.Load(session.NewMemoryStore(), "")
	require.NoError(t, err)
	opts = append([]api.Option{api.WithRetryDelay(time.Millisecond)}, opts...)
	return api.New(logger.Discard(), srv.URL, sess, opts...), sess
}

func TestClient_GetRetriedOnceOn503(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newClient(t, srv)
	err := client.Get(context.Background(), "/v1/orders", nil)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, int32(2), calls.Load(), "GET must be sent once and retried exactly once")
}

func TestClient_GetRetrySucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"status":"paid","total_eur":"10.00"}`))
	}))
	defer srv.Close()

	client, _ := newClient(t, srv)
	var got struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, client.Get(context.Background(), "/v1/orders/42", &got))
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_PostNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newClient(t, srv)
	err := client.Post(context.Background(), "/v1/quotes", map[string]int{"model_id": 1}, nil)

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(api.HeaderRequestID, "req-123")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"order not found"}`))
	}))
	defer srv.Close()

	client, _ := newClient(t, srv)
	err := client.Get(context.Background(), "/v1/orders/9", nil)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "order not found", apiErr.Message)
	assert.Equal(t, "req-123", apiErr.RequestID)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "could not load order: order not found [request id: req-123]", api.Describe("load order", err))
}

func TestClient_NetworkFailureRetriedForGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, _ := newClient(t, srv)
	err := client.Get(context.Background(), "/v1/cart", nil)

	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, "could not load cart: backend is unreachable", api.Describe("load cart", err))
}

func TestClient_UnauthorizedClearsTokenAndRedirects(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	nav := &fakeNavigator{location: "/orders/42?tab=jobs"}
	client, sess := newClient(t, srv, api.WithNavigator(nav))
	require.NoError(t, sess.SetToken("expired"))

	err := client.Get(context.Background(), "/v1/orders/42", nil)

	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "", sess.Token())
	assert.Equal(t, "/login?redirectTo=%2Forders%2F42%3Ftab%3Djobs", nav.got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RejectedLoginKeepsSessionAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid email or password"}`))
	}))
	defer srv.Close()

	nav := &fakeNavigator{location: "/login"}
	client, sess := newClient(t, srv, api.WithNavigator(nav))
	require.NoError(t, sess.SetToken("previous"))

	err := client.Post(context.Background(), api.PathLogin, map[string]string{"email": "a@b.c", "password": "wrong"}, nil)

	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "", nav.got, "wrong password must not redirect to login")
	assert.Equal(t, "previous", sess.Token())
	assert.Equal(t, "could not sign in: Invalid email or password", api.Describe("sign in", err))
}

func TestDescribe_UnauthorizedWithoutMessage(t *testing.T) {
	err := &api.Error{Message: "Unauthorized", Status: http.StatusUnauthorized}
	assert.Equal(t, "could not load cart: please sign in again", api.Describe("load cart", err))
}

func TestClient_MessageFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "message field", contentType: "application/json", body: `{"message":"coupon expired","detail":"x"}`, want: "coupon expired"},
		{name: "detail field", contentType: "application/json", body: `{"detail":"qty must be positive"}`, want: "qty must be positive"},
		{name: "plain text", contentType: "text/plain", body: "nope", want: "Unprocessable Entity"},
		{name: "empty json", contentType: "application/json", body: `{}`, want: "Unprocessable Entity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, _ := newClient(t, srv)
			err := client.Post(context.Background(), "/v1/cart/apply-coupon", map[string]string{"code": "X"}, nil)

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
		})
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set(api.HeaderCartSession, "cs-new")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, sess := newClient(t, srv)
	require.NoError(t, sess.SetToken("tok"))
	require.NoError(t, sess.SetLocale("uk"))
	require.NoError(t, sess.SetCartSession("cs-old"))

	require.NoError(t, client.Get(context.Background(), "/v1/cart", nil))

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "uk", got.Get("Accept-Language"))
	assert.Equal(t, "cs-old", got.Get(api.HeaderCartSession))
	assert.NotEmpty(t, got.Get(api.HeaderRequestID))
	assert.Equal(t, "cs-new", sess.CartSession())
}

func TestClient_AnonymousRequestHasNoAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, _ := newClient(t, srv)
	var out []any
	require.NoError(t, client.Get(context.Background(), api.Materials("en"), &out))
	assert.Equal(t, "", auth)
}

func TestClient_RawAndTextBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/files/preview/7.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("ok"))
		}
	}))
	defer srv.Close()

	client, _ := newClient(t, srv)

	var img []byte
	require.NoError(t, client.Get(context.Background(), api.PreviewPNG(7), &img))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img)

	var text string
	require.NoError(t, client.Get(context.Background(), "/health", &text))
	assert.Equal(t, "ok", text)

	var obj map[string]any
	assert.Error(t, client.Get(context.Background(), "/health", &obj))
}

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "/v1/catalog/materials?locale=pt", api.Materials("pt"))
	assert.Equal(t, "/v1/quotes?locale=uk", api.WithLocale(api.PathQuotes, "uk"))
	assert.Equal(t, "/v1/cart/items/3", api.CartItem(3))
	assert.Equal(t, "/v1/orders/42/print-jobs", api.OrderJobs(42))
	assert.Equal(t, "/v1/print-jobs/7/cancel", api.JobAction(7, "cancel"))
}
