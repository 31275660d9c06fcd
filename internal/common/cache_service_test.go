package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_JSONRoundTripAndPrefixDelete(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute)

	type payload struct {
		Name string `json:"name"`
	}
	SetJSON(c, "SEARCH_a", payload{Name: "x"}, time.Minute)
	SetJSON(c, "SEARCH_b", payload{Name: "y"}, time.Minute)
	SetJSON(c, "DETAIL_a", payload{Name: "z"}, time.Minute)

	got, ok := GetJSON[payload](c, "SEARCH_a")
	require.True(t, ok)
	assert.Equal(t, "x", got.Name)

	c.DeleteByPrefix("SEARCH_")

	_, ok = c.Get("SEARCH_a")
	assert.False(t, ok)
	_, ok = c.Get("SEARCH_b")
	assert.False(t, ok)
	_, ok = c.Get("DETAIL_a")
	assert.True(t, ok)
}

func TestGetJSON_DropsUndecodableValue(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute)
	c.Set("k", []byte("{not json"), time.Minute)

	_, ok := GetJSON[map[string]any](c, "k")
	assert.False(t, ok)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	token, err := l.Acquire(ctx)
	require.NoError(t, err)

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrLockHeld)

	assert.Error(t, l.Release(ctx, "other"))
	require.NoError(t, l.Release(ctx, token))

	token, err = l.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx, token))
}

func TestChainLock_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	first, second := NewLocalLock(), NewLocalLock()

	held, err := second.Acquire(ctx)
	require.NoError(t, err)

	chain := NewChainLock(first, second)
	_, err = chain.Acquire(ctx)
	assert.ErrorIs(t, err, ErrLockHeld)

	// first was released by the rollback
	tok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Release(ctx, tok))
	require.NoError(t, second.Release(ctx, held))

	tok, err = chain.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, chain.Release(ctx, tok))
}
