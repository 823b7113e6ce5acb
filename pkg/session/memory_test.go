package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alesium/go-openam/pkg/openam"
)

func TestMemoryStore_Roundtrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("tok123", &openam.Profile{Username: "bob"}, time.Hour)
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, "bob", got.Profile.Username)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReapsExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("tok123", nil, -time.Minute)
	require.NoError(t, store.Create(ctx, sess))

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("tok123", nil, time.Hour)
	require.NoError(t, store.Create(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("tok123", nil, time.Hour)
	require.NoError(t, store.Create(ctx, sess))

	first, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	first.Token = "mutated"

	second, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok123", second.Token)
}
