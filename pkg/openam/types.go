package openam

import (
	"context"
	"net/http"
	"time"
)

// Default values applied by New and NewClient when the corresponding
// Config fields are left empty.
const (
	DefaultRealm      = "/"
	DefaultCookieName = "iPlanetDirectoryPro"
	DefaultTimeout    = 10 * time.Second
)

// Info carries auxiliary metadata alongside a success or fail outcome.
type Info map[string]string

// SkipProfilePolicy decides, for a validated token, whether the attribute
// fetch is skipped. A skipped fetch yields a nil Profile for the verify
// callback. An error short-circuits the whole authentication.
type SkipProfilePolicy func(ctx context.Context, token string) (bool, error)

// SkipProfile returns a policy with a fixed answer.
func SkipProfile(skip bool) SkipProfilePolicy {
	return func(context.Context, string) (bool, error) {
		return skip, nil
	}
}

// SkipProfileFunc adapts a token-independent decision function.
func SkipProfileFunc(f func() bool) SkipProfilePolicy {
	return func(context.Context, string) (bool, error) {
		return f(), nil
	}
}

// SkipProfileTokenFunc adapts a token-aware decision function.
func SkipProfileTokenFunc(f func(token string) bool) SkipProfilePolicy {
	return func(_ context.Context, token string) (bool, error) {
		return f(token), nil
	}
}

// Config holds OpenAM connection and handshake configuration. It is
// validated at construction and never mutated afterwards; a single Config
// is shared by the Client and the Strategy across all requests.
type Config struct {
	// BaseURL is the OpenAM deployment URL, e.g.
	// "https://am.example.com/openam". Required.
	BaseURL string

	// Realm is the OpenAM realm tokens are validated under.
	// Defaults to DefaultRealm.
	Realm string

	// CookieName is the name of the session token cookie.
	// Defaults to DefaultCookieName.
	CookieName string

	// CallbackURL is where OpenAM sends the user after login. Required for
	// the Strategy. A relative URL is qualified against the inbound
	// request at authentication time.
	CallbackURL string

	// SkipProfile controls whether the attribute fetch runs after token
	// validation. Nil means never skip.
	SkipProfile SkipProfilePolicy

	// DisableLoginPage suppresses the interactive login page hint. The
	// zero value keeps the login page enabled. Informational only.
	DisableLoginPage bool

	// Timeout bounds every call to the OpenAM server.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the client used for OpenAM calls. When nil a
	// client with an instrumented transport and Timeout is built.
	HTTPClient *http.Client
}

// AuthOptions carries per-request overrides for a single Authenticate call.
type AuthOptions struct {
	// CallbackURL overrides Config.CallbackURL for this request.
	CallbackURL string
}
