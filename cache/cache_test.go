package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	return c, mr
}

func TestNewCacheRequiresClient(t *testing.T) {
	_, err := NewCache(nil)
	assert.Error(t, err)
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)
	val, err := c.Get(context.Background(), "reset_code:nobody@clinica.es")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestSetExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "reset_code:ana@clinica.es", "123456", 15*time.Minute))
	val, err := c.Get(ctx, "reset_code:ana@clinica.es")
	require.NoError(t, err)
	assert.Equal(t, "123456", val)

	mr.FastForward(16 * time.Minute)
	val, err = c.Get(ctx, "reset_code:ana@clinica.es")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestTakeIsOneShot(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "oauth_state:abc", "1", time.Minute))
	val, err := c.Take(ctx, "oauth_state:abc")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	val, err = c.Take(ctx, "oauth_state:abc")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestJSONRoundTripAndDeleteAll(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type session struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, c.SetJSON(ctx, "session:1", session{UserID: "u1"}, time.Hour))
	require.NoError(t, c.SetJSON(ctx, "session:2", session{UserID: "u2"}, time.Hour))

	var got session
	found, err := c.GetJSON(ctx, "session:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, c.DeleteAll(ctx, "session:*"))
	assert.False(t, mr.Exists("session:1"))
	assert.False(t, mr.Exists("session:2"))

	found, err = c.GetJSON(ctx, "session:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
