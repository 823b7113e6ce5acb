// Package openam implements single sign-on against a ForgeRock OpenAM
// (Access Management) server using its cookie-token handshake.
//
// # Overview
//
// OpenAM issues an opaque session token in a cookie (iPlanetDirectoryPro by
// default). This package validates that token against the server's legacy
// identity services REST API, fetches the user's attributes, and normalizes
// them into a Profile the application can consume.
//
// The two pieces are:
//
//   - Client: the I/O boundary. Token validation, attribute retrieval, and
//     login UI URL construction. No decision logic.
//   - Strategy: the handshake state machine. Inspects the inbound request,
//     decides redirect vs. validate vs. fail vs. succeed, and reports
//     exactly one outcome per request through a Responder.
//
// # Usage Example
//
//	cfg := openam.Config{
//		BaseURL:     "https://am.example.com/openam",
//		Realm:       "/",
//		CallbackURL: "https://app.example.com/callback",
//	}
//
//	client, err := openam.NewClient(cfg, nil)
//	if err != nil {
//		return err
//	}
//
//	strategy, err := openam.New(cfg, client, func(ctx context.Context, r *http.Request, token string, profile *openam.Profile) (any, openam.Info, error) {
//		user, err := users.Lookup(ctx, profile.Username)
//		if err != nil {
//			return nil, nil, err
//		}
//		return user, nil, nil
//	})
//
// The host middleware supplies a Responder per request and receives
// exactly one of Redirect, Success, Fail, or Error.
//
// # Related Packages
//
//   - pkg/auth: net/http middleware that drives a Strategy
//   - pkg/session: application session storage after a successful login
package openam
