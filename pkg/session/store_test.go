package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alesium/go-openam/pkg/openam"
)

func TestNew(t *testing.T) {
	profile := &openam.Profile{Username: "bob"}
	sess := New("tok123", profile, time.Hour)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "tok123", sess.Token)
	assert.Equal(t, profile, sess.Profile)
	assert.True(t, sess.ExpiresAt.After(sess.CreatedAt))
}

func TestNew_UniqueIDs(t *testing.T) {
	a := New("tok", nil, time.Hour)
	b := New("tok", nil, time.Hour)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExpired(t *testing.T) {
	sess := New("tok", nil, time.Hour)

	assert.False(t, sess.Expired(time.Now().UTC()))
	assert.True(t, sess.Expired(time.Now().UTC().Add(2*time.Hour)))
}
