package openam

import (
	"context"
	"net/http"
	"net/url"
)

// TokenService is the provider-facing surface the Strategy drives. *Client
// implements it against a real OpenAM server.
type TokenService interface {
	// ValidToken reports whether the session token is currently valid.
	ValidToken(ctx context.Context, token string) (bool, error)

	// Attributes fetches the raw attribute set for a validated token.
	Attributes(ctx context.Context, token string) (map[string]string, error)

	// LoginURL builds the interactive login endpoint URL with the
	// supplied query parameters.
	LoginURL(params url.Values) string
}

// Responder receives the outcome of an Authenticate call. Exactly one of
// its methods is invoked per call. The host middleware supplies one per
// request; pkg/auth ships implementations over http.ResponseWriter and as
// a recorded value.
type Responder interface {
	// Redirect asks the host to issue an HTTP redirect to location.
	Redirect(location string)

	// Success reports an authenticated user with auxiliary info.
	Success(user any, info Info)

	// Fail reports a policy rejection. Not a system fault.
	Fail(info Info)

	// Error reports an unexpected failure the host should surface as a
	// 5xx-class condition.
	Error(err error)
}

// Verify decides the final disposition for a request holding a valid
// token. Returning an error maps to the error channel, a nil user to
// fail, and a non-nil user to success. The profile is nil when the skip
// policy suppressed the attribute fetch.
type Verify func(ctx context.Context, r *http.Request, token string, profile *Profile) (user any, info Info, err error)

// Strategy orchestrates the OpenAM cookie-token handshake for one inbound
// request at a time. It holds no mutable state beyond its immutable
// configuration and is safe for concurrent use.
type Strategy struct {
	cfg    Config
	svc    TokenService
	verify Verify
	skip   SkipProfilePolicy
}

// New creates a Strategy. It fails fast with *ConfigError when BaseURL or
// CallbackURL is missing, before any request can be processed.
func New(cfg Config, svc TokenService, verify Verify) (*Strategy, error) {
	if cfg.BaseURL == "" {
		return nil, &ConfigError{Field: "BaseURL"}
	}
	if cfg.CallbackURL == "" {
		return nil, &ConfigError{Field: "CallbackURL"}
	}
	if svc == nil {
		return nil, &ConfigError{Field: "TokenService"}
	}
	if verify == nil {
		return nil, &ConfigError{Field: "Verify"}
	}

	if cfg.Realm == "" {
		cfg.Realm = DefaultRealm
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	skip := cfg.SkipProfile
	if skip == nil {
		skip = SkipProfile(false)
	}

	return &Strategy{
		cfg:    cfg,
		svc:    svc,
		verify: verify,
		skip:   skip,
	}, nil
}

// Name identifies the strategy to the host middleware.
func (s *Strategy) Name() string {
	return "openam"
}

// Authenticate runs the handshake for one request and reports exactly one
// outcome through rsp:
//
//  1. A provider-reported error parameter fails immediately.
//  2. Without a code parameter the caller is redirected to the OpenAM
//     login page with a goto back to the callback URL.
//  3. With a code parameter but no session cookie, same redirect: the
//     code alone is not proof of a session.
//  4. A present token is validated against OpenAM. Invalid means a fresh
//     login redirect; a transport failure is an error outcome.
//  5. A valid token flows through profile resolution and the verify
//     callback, which decides success, fail, or error.
func (s *Strategy) Authenticate(ctx context.Context, r *http.Request, opts AuthOptions, rsp Responder) {
	query := r.URL.Query()

	if query.Has("error") {
		rsp.Fail(Info{"error": query.Get("error")})
		return
	}

	callbackURL := opts.CallbackURL
	if callbackURL == "" {
		callbackURL = s.cfg.CallbackURL
	}
	callbackURL = resolveCallbackURL(r, callbackURL)

	if !query.Has("code") {
		s.redirectToLogin(rsp, callbackURL)
		return
	}

	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		s.redirectToLogin(rsp, callbackURL)
		return
	}
	token := cookie.Value

	valid, err := s.svc.ValidToken(ctx, token)
	if err != nil {
		rsp.Error(err)
		return
	}
	if !valid {
		// Expired and never-authenticated look the same to the caller.
		s.redirectToLogin(rsp, callbackURL)
		return
	}

	profile, err := s.resolveProfile(ctx, token)
	if err != nil {
		rsp.Error(err)
		return
	}

	user, info, err := s.verify(ctx, r, token, profile)
	switch {
	case err != nil:
		rsp.Error(err)
	case user == nil:
		rsp.Fail(info)
	default:
		rsp.Success(user, info)
	}
}

// redirectToLogin sends the caller to the OpenAM login UI with a goto
// back to the callback URL, marked so the return trip takes the
// validation path.
func (s *Strategy) redirectToLogin(rsp Responder, callbackURL string) {
	params := url.Values{}
	params.Set("goto", callbackURL+"?code=true")
	rsp.Redirect(s.svc.LoginURL(params))
}

func (s *Strategy) resolveProfile(ctx context.Context, token string) (*Profile, error) {
	skip, err := s.skip(ctx, token)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}

	attrs, err := s.svc.Attributes(ctx, token)
	if err != nil {
		return nil, err
	}
	return NewProfile(attrs), nil
}

// resolveCallbackURL qualifies a relative callback URL against the
// inbound request as the framework observed it. Absolute URLs pass
// through untouched.
func resolveCallbackURL(r *http.Request, callbackURL string) string {
	ref, err := url.Parse(callbackURL)
	if err != nil || ref.IsAbs() {
		return callbackURL
	}

	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}

	base := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return base.ResolveReference(ref).String()
}
