package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/credentials/redisstore"
	"github.com/jrsteele09/brightpath-auth/credentials/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		_, rdb := setupRedis(t)
		s, err := redisstore.New(rdb, "default")
		require.NoError(t, err)
		return s
	})
}

func TestStore_HashLayout(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	s, err := redisstore.New(rdb, "work")
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1", Role: "Instructor"}))

	require.Equal(t, "brightpath:session:work", s.Key())
	require.Equal(t, "a1", mr.HGet(s.Key(), "access"))
	require.Equal(t, "instructor", mr.HGet(s.Key(), "role"))
	require.Empty(t, mr.HGet(s.Key(), "username"))

	require.NoError(t, s.Clear(ctx))
	require.False(t, mr.Exists(s.Key()))
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupRedis(t)
	a, err := redisstore.New(rdb, "a")
	require.NoError(t, err)
	b, err := redisstore.New(rdb, "b")
	require.NoError(t, err)

	require.NoError(t, a.Write(ctx, credentials.Session{AccessToken: "token-a"}))
	got, err := b.Read(ctx)
	require.NoError(t, err)
	require.False(t, got.LoggedIn())
}

func TestNew_Validation(t *testing.T) {
	_, rdb := setupRedis(t)

	_, err := redisstore.New(nil, "default")
	require.Error(t, err)

	_, err = redisstore.New(rdb, "")
	require.Error(t, err)
}
