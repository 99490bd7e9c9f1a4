package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "propmatch/internal/adapters/redis"
	"propmatch/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestCache_SetGetDel(t *testing.T) {
	mr, c := newClient(t)
	cache := redisad.NewFromClient(c)
	ctx := context.Background()

	var out []domain.Match
	ok, err := cache.Get(ctx, "matches:property:p1", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	in := []domain.Match{{ID: "m1", PropertyID: "p1", WantedAdID: "w1", MatchScore: 70, MatchType: domain.MatchCriteria, MatchedOn: []string{"location", "budget"}}}
	require.NoError(t, cache.Set(ctx, "matches:property:p1", in, 60))
	assert.Equal(t, 60*time.Second, mr.TTL("matches:property:p1"))

	ok, err = cache.Get(ctx, "matches:property:p1", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, cache.Del(ctx, "matches:property:p1"))
	assert.False(t, mr.Exists("matches:property:p1"))
}
