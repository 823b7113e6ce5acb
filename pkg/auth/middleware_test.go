package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alesium/go-openam/pkg/openam"
	"github.com/alesium/go-openam/pkg/session"
)

// fakeStrategy drives a single outcome channel per test.
type fakeStrategy struct {
	outcome func(rsp openam.Responder)
	calls   int
}

func (f *fakeStrategy) Name() string { return "openam" }

func (f *fakeStrategy) Authenticate(_ context.Context, _ *http.Request, _ openam.AuthOptions, rsp openam.Responder) {
	f.calls++
	f.outcome(rsp)
}

func newTestMiddleware(t *testing.T, strategy *fakeStrategy) (*Middleware, session.Store) {
	t.Helper()

	store := session.NewMemoryStore()
	mw, err := NewMiddleware(MiddlewareConfig{
		Strategy: strategy,
		Sessions: store,
	})
	require.NoError(t, err)
	return mw, store
}

func TestNewMiddleware_Validation(t *testing.T) {
	_, err := NewMiddleware(MiddlewareConfig{Sessions: session.NewMemoryStore()})
	require.Error(t, err)

	_, err = NewMiddleware(MiddlewareConfig{Strategy: &fakeStrategy{}})
	require.Error(t, err)
}

func TestHandler_LiveSessionPassesThrough(t *testing.T) {
	strategy := &fakeStrategy{outcome: func(rsp openam.Responder) {
		rsp.Error(errors.New("strategy must not run"))
	}}
	mw, store := newTestMiddleware(t, strategy)

	sess := session.New("tok123", &openam.Profile{Username: "bob"}, time.Hour)
	require.NoError(t, store.Create(context.Background(), sess))

	var seen *session.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: sess.ID})
	rec := httptest.NewRecorder()

	mw.Handler(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, strategy.calls)
	require.NotNil(t, seen)
	assert.Equal(t, "bob", seen.Profile.Username)
}

func TestHandler_NoSessionRunsStrategy(t *testing.T) {
	strategy := &fakeStrategy{outcome: func(rsp openam.Responder) {
		rsp.Redirect("https://am.example.com/UI/Login")
	}}
	mw, _ := newTestMiddleware(t, strategy)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("next must not run without a session")
	})

	rec := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://am.example.com/UI/Login", rec.Header().Get("Location"))
	assert.Equal(t, 1, strategy.calls)
}

func TestCallbackHandler_SuccessEstablishesSession(t *testing.T) {
	profile := &openam.Profile{ID: "AQIC5wM2", Username: "bob"}
	strategy := &fakeStrategy{outcome: func(rsp openam.Responder) {
		rsp.Success(profile, nil)
	}}
	mw, store := newTestMiddleware(t, strategy)

	req := httptest.NewRequest(http.MethodGet, "/callback?code=true", nil)
	req.AddCookie(&http.Cookie{Name: openam.DefaultCookieName, Value: "tok123"})
	rec := httptest.NewRecorder()

	mw.CallbackHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, DefaultSuccessURL, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, DefaultSessionCookie, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	sess, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "tok123", sess.Token)
	assert.Equal(t, "bob", sess.Profile.Username)
}

func TestCallbackHandler_FailWrites401(t *testing.T) {
	strategy := &fakeStrategy{outcome: func(rsp openam.Responder) {
		rsp.Fail(openam.Info{"error": "access_denied"})
	}}
	mw, _ := newTestMiddleware(t, strategy)

	rec := httptest.NewRecorder()
	mw.CallbackHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication failed: access_denied", body["error"])
}

func TestCallbackHandler_ErrorWrites500(t *testing.T) {
	strategy := &fakeStrategy{outcome: func(rsp openam.Responder) {
		rsp.Error(errors.New("openam unreachable"))
	}}
	mw, _ := newTestMiddleware(t, strategy)

	rec := httptest.NewRecorder()
	mw.CallbackHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSuccess_SessionStoreFailureWrites500(t *testing.T) {
	strategy := &fakeStrategy{outcome: func(rsp openam.Responder) {
		rsp.Success(&openam.Profile{Username: "bob"}, nil)
	}}
	mw, err := NewMiddleware(MiddlewareConfig{
		Strategy: strategy,
		Sessions: failingStore{},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mw.CallbackHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutHandler(t *testing.T) {
	strategy := &fakeStrategy{outcome: func(openam.Responder) {}}
	mw, store := newTestMiddleware(t, strategy)

	sess := session.New("tok123", nil, time.Hour)
	require.NoError(t, store.Create(context.Background(), sess))

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: sess.ID})
	rec := httptest.NewRecorder()

	mw.LogoutHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)

	_, err := store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionFromContext_Empty(t *testing.T) {
	assert.Nil(t, SessionFromContext(context.Background()))
}

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) Create(context.Context, *session.Session) error {
	return errors.New("store unavailable")
}

func (failingStore) Get(context.Context, string) (*session.Session, error) {
	return nil, session.ErrNotFound
}

func (failingStore) Delete(context.Context, string) error { return nil }
