package auth

import "github.com/alesium/go-openam/pkg/openam"

// OutcomeKind tags which channel a strategy invoked.
type OutcomeKind string

const (
	OutcomeRedirect OutcomeKind = "redirect"
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeFail     OutcomeKind = "fail"
	OutcomeError    OutcomeKind = "error"
)

// OutcomeRecorder is an openam.Responder that records the outcome as a
// value. Calls counts channel invocations so tests can assert the
// exactly-one-outcome contract.
type OutcomeRecorder struct {
	Kind     OutcomeKind
	Location string
	User     any
	Info     openam.Info
	Err      error
	Calls    int
}

func (o *OutcomeRecorder) Redirect(location string) {
	o.Calls++
	o.Kind = OutcomeRedirect
	o.Location = location
}

func (o *OutcomeRecorder) Success(user any, info openam.Info) {
	o.Calls++
	o.Kind = OutcomeSuccess
	o.User = user
	o.Info = info
}

func (o *OutcomeRecorder) Fail(info openam.Info) {
	o.Calls++
	o.Kind = OutcomeFail
	o.Info = info
}

func (o *OutcomeRecorder) Error(err error) {
	o.Calls++
	o.Kind = OutcomeError
	o.Err = err
}
