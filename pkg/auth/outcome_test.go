package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alesium/go-openam/pkg/openam"
)

func TestOutcomeRecorder(t *testing.T) {
	var rec OutcomeRecorder
	rec.Redirect("https://am.example.com/UI/Login")
	assert.Equal(t, OutcomeRedirect, rec.Kind)
	assert.Equal(t, "https://am.example.com/UI/Login", rec.Location)
	assert.Equal(t, 1, rec.Calls)

	rec = OutcomeRecorder{}
	rec.Success(&openam.Profile{Username: "bob"}, openam.Info{"note": "x"})
	assert.Equal(t, OutcomeSuccess, rec.Kind)
	assert.Equal(t, "bob", rec.User.(*openam.Profile).Username)

	rec = OutcomeRecorder{}
	rec.Fail(openam.Info{"error": "access_denied"})
	assert.Equal(t, OutcomeFail, rec.Kind)
	assert.Equal(t, "access_denied", rec.Info["error"])

	rec = OutcomeRecorder{}
	rec.Error(errors.New("boom"))
	assert.Equal(t, OutcomeError, rec.Kind)
	assert.EqualError(t, rec.Err, "boom")
}
