// Package auth adapts an authentication strategy to net/http.
//
// A strategy reports its outcome through the four-channel Responder
// convention (redirect, success, fail, error). This package supplies the
// two Responder implementations a host needs:
//
//   - Middleware: converts each channel into HTTP semantics: 302 for
//     redirects, an established application session plus redirect for
//     success, 401 for fail, 500 for error.
//   - OutcomeRecorder: records the single outcome as a value, for tests
//     and embedders that want a return-shaped result.
//
// Middleware also guards routes: requests holding a live application
// session pass straight through with the session in context; everything
// else is handed to the strategy.
package auth
