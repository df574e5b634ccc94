package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/lib/logger"
	"github.com/linemk/printshop/internal/service"
	"github.com/linemk/printshop/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Path   string
	Body   any
}

// fakeBackend отвечает заготовленным JSON по ключу "METHOD path" и запоминает вызовы
type fakeBackend struct {
	responses map[string]string
	errs      map[string]error
	calls     []call
}

var _ service.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeBackend) on(method, path, response string) {
	f.responses[method+" "+path] = response
}

func (f *fakeBackend) fail(method, path string, err error) {
	f.errs[method+" "+path] = err
}

func (f *fakeBackend) do(method, path string, body, out any) error {
	f.calls = append(f.calls, call{Method: method, Path: path, Body: body})
	key := method + " " + path
	if err, ok := f.errs[key]; ok {
		return err
	}
	resp, ok := f.responses[key]
	if !ok || out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = []byte(resp)
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (f *fakeBackend) Get(ctx context.Context, path string, out any) error {
	return f.do("GET", path, nil, out)
}

func (f *fakeBackend) Post(ctx context.Context, path string, body, out any) error {
	return f.do("POST", path, body, out)
}

func (f *fakeBackend) Patch(ctx context.Context, path string, body, out any) error {
	return f.do("PATCH", path, body, out)
}

func (f *fakeBackend) Delete(ctx context.Context, path string, out any) error {
	return f.do("DELETE", path, nil, out)
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.Load(session.NewMemoryStore(), "")
	require.NoError(t, err)
	return sess
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "admin"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestAuthService_LoginStoresToken(t *testing.T) {
	backend := newFakeBackend()
	tok := adminToken(t)
	backend.on("POST", api.PathLogin, `{"access_token":"`+tok+`"}`)
	sess := newSession(t)

	auth := service.NewAuthService(logger.Discard(), backend, sess)
	got, err := auth.Login(context.Background(), "admin@example.com", "admin")

	require.NoError(t, err)
	assert.Equal(t, tok, got)
	assert.Equal(t, tok, sess.Token())
	assert.True(t, sess.IsAdmin())

	require.NoError(t, auth.Logout())
	assert.False(t, sess.LoggedIn())
}

func TestAuthService_LoginValidatesBeforeRequest(t *testing.T) {
	backend := newFakeBackend()
	auth := service.NewAuthService(logger.Discard(), backend, newSession(t))

	_, err := auth.Login(context.Background(), "not-an-email", "x")
	assert.Error(t, err)
	_, err = auth.Login(context.Background(), "user@example.com", "")
	assert.Error(t, err)
	assert.Empty(t, backend.calls, "invalid form must not reach the backend")
}

func TestAuthService_LoginRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.fail("POST", api.PathLogin, &api.Error{Message: "bad credentials", Status: 400})
	sess := newSession(t)

	auth := service.NewAuthService(logger.Discard(), backend, sess)
	_, err := auth.Login(context.Background(), "user@example.com", "wrong")

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad credentials", apiErr.Message)
	assert.Equal(t, "", sess.Token())
}

func TestAuthService_Me(t *testing.T) {
	backend := newFakeBackend()
	backend.on("GET", api.PathMe, `{"id":3,"email":"user@example.com","role":"customer"}`)

	auth := service.NewAuthService(logger.Discard(), backend, newSession(t))
	me, err := auth.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), me.ID)
	assert.Equal(t, "customer", me.Role)
}

func TestCatalogService_MaterialsSorted(t *testing.T) {
	backend := newFakeBackend()
	backend.on("GET", api.Materials("uk"), `[
		{"id":3,"name":"PLA","color":"white"},
		{"id":1,"name":"PETG","color":"black"},
		{"id":2,"name":"PLA","color":"black"}
	]`)

	catalog := service.NewCatalogService(logger.Discard(), backend)
	materials, err := catalog.Materials(context.Background(), "uk")

	require.NoError(t, err)
	require.Len(t, materials, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{materials[0].ID, materials[1].ID, materials[2].ID})
}
