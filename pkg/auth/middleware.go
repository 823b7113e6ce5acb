package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alesium/go-openam/pkg/httputil"
	"github.com/alesium/go-openam/pkg/observability"
	"github.com/alesium/go-openam/pkg/openam"
	"github.com/alesium/go-openam/pkg/session"
)

// Defaults applied by NewMiddleware.
const (
	DefaultSessionCookie = "openam_app_session"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSuccessURL    = "/"
)

// Authenticator is the strategy surface the middleware drives.
// *openam.Strategy implements it.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context, r *http.Request, opts openam.AuthOptions, rsp openam.Responder)
}

// MiddlewareConfig configures a Middleware.
type MiddlewareConfig struct {
	Strategy Authenticator // required
	Sessions session.Store // required

	Logger  *observability.Logger
	Metrics *observability.Metrics

	// SessionCookie names the application session cookie.
	// Defaults to DefaultSessionCookie.
	SessionCookie string

	// TokenCookie names the OpenAM token cookie to capture into the
	// session on success. Defaults to openam.DefaultCookieName.
	TokenCookie string

	// SessionTTL is the application session lifetime.
	// Defaults to DefaultSessionTTL.
	SessionTTL time.Duration

	// SuccessURL is where a freshly authenticated user lands.
	// Defaults to DefaultSuccessURL.
	SuccessURL string
}

// Middleware guards routes with an authentication strategy and converts
// strategy outcomes into HTTP responses.
type Middleware struct {
	strategy      Authenticator
	sessions      session.Store
	log           *observability.Logger
	metrics       *observability.Metrics
	sessionCookie string
	tokenCookie   string
	sessionTTL    time.Duration
	successURL    string
}

// NewMiddleware creates a Middleware, applying defaults for unset fields.
func NewMiddleware(cfg MiddlewareConfig) (*Middleware, error) {
	if cfg.Strategy == nil {
		return nil, errors.New("auth: strategy is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("auth: session store is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = DefaultSessionCookie
	}
	if cfg.TokenCookie == "" {
		cfg.TokenCookie = openam.DefaultCookieName
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.SuccessURL == "" {
		cfg.SuccessURL = DefaultSuccessURL
	}

	return &Middleware{
		strategy:      cfg.Strategy,
		sessions:      cfg.Sessions,
		log:           cfg.Logger.WithField("strategy", cfg.Strategy.Name()),
		metrics:       cfg.Metrics,
		sessionCookie: cfg.SessionCookie,
		tokenCookie:   cfg.TokenCookie,
		sessionTTL:    cfg.SessionTTL,
		successURL:    cfg.SuccessURL,
	}, nil
}

// Handler wraps next with authentication. Requests holding a live
// application session pass through with the session in context; everyone
// else is handed to the strategy, which normally redirects to login.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), uuid.NewString())
		r = r.WithContext(ctx)

		if sess := m.sessionFromRequest(r); sess != nil {
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
			return
		}

		m.strategy.Authenticate(ctx, r, openam.AuthOptions{}, m.responder(w, r))
	})
}

// CallbackHandler runs the strategy on the configured callback route.
func (m *Middleware) CallbackHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), uuid.NewString())
		m.strategy.Authenticate(ctx, r.WithContext(ctx), openam.AuthOptions{}, m.responder(w, r))
	})
}

// LogoutHandler deletes the application session and clears its cookie.
func (m *Middleware) LogoutHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(m.sessionCookie); err == nil {
			if err := m.sessions.Delete(r.Context(), cookie.Value); err != nil {
				m.log.WithError(err).Warn("failed to delete session")
			}
		}
		http.SetCookie(w, &http.Cookie{Name: m.sessionCookie, MaxAge: -1, Path: "/"})
		http.Redirect(w, r, m.successURL, http.StatusFound)
	})
}

func (m *Middleware) sessionFromRequest(r *http.Request) *session.Session {
	cookie, err := r.Cookie(m.sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := m.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			m.log.WithError(err).Warn("session lookup failed")
		}
		return nil
	}
	return sess
}

func (m *Middleware) responder(w http.ResponseWriter, r *http.Request) openam.Responder {
	return &httpResponder{mw: m, w: w, r: r}
}

// httpResponder converts the four outcome channels into HTTP responses.
type httpResponder struct {
	mw *Middleware
	w  http.ResponseWriter
	r  *http.Request
}

func (h *httpResponder) Redirect(location string) {
	h.observe(OutcomeRedirect)
	http.Redirect(h.w, h.r, location, http.StatusFound)
}

// Success establishes an application session. When the verify callback
// surfaced the normalized profile as the user it is retained in the
// session; the OpenAM token is captured from the request cookie.
func (h *httpResponder) Success(user any, info openam.Info) {
	h.observe(OutcomeSuccess)

	profile, _ := user.(*openam.Profile)

	var token string
	if cookie, err := h.r.Cookie(h.mw.tokenCookie); err == nil {
		token = cookie.Value
	}

	sess := session.New(token, profile, h.mw.sessionTTL)
	if err := h.mw.sessions.Create(h.r.Context(), sess); err != nil {
		h.mw.log.WithError(err).Error("failed to create session")
		httputil.WriteInternalError(h.w, errors.New("failed to establish session"))
		return
	}
	h.sessionOp("create", "ok")

	http.SetCookie(h.w, &http.Cookie{
		Name:     h.mw.sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.mw.sessionTTL / time.Second),
	})

	log := h.mw.log
	if profile != nil {
		log = log.WithField("username", profile.Username)
	}
	log.Info("authentication succeeded")

	http.Redirect(h.w, h.r, h.mw.successURL, http.StatusFound)
}

func (h *httpResponder) Fail(info openam.Info) {
	h.observe(OutcomeFail)

	message := "authentication failed"
	if detail := info["error"]; detail != "" {
		message += ": " + detail
	}
	h.mw.log.WithField("detail", info["error"]).Info("authentication rejected")
	httputil.WriteUnauthorized(h.w, message)
}

func (h *httpResponder) Error(err error) {
	h.observe(OutcomeError)
	h.mw.log.WithError(err).Error("authentication error")
	httputil.WriteInternalError(h.w, err)
}

func (h *httpResponder) observe(kind OutcomeKind) {
	if h.mw.metrics != nil {
		h.mw.metrics.ObserveOutcome(string(kind))
	}
}

func (h *httpResponder) sessionOp(op, status string) {
	if h.mw.metrics != nil {
		h.mw.metrics.SessionOpsTotal.WithLabelValues(op, status).Inc()
	}
}

// contextKey is the type for context keys
type contextKey string

const sessionContextKey contextKey = "auth_session"

// WithSession adds an established session to the context.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext retrieves the established session, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}
