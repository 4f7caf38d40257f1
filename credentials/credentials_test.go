package credentials_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/credentials/storetest"
	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		return credentials.NewInMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		s, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		return s
	})
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first, err := credentials.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, credentials.Session{
		AccessToken: "a1", RefreshToken: "r1", Role: "ADMIN", Username: "root",
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := credentials.NewFileStore(path)
	require.NoError(t, err)
	got, err := second.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, credentials.Session{
		AccessToken: "a1", RefreshToken: "r1", Role: roles.Admin, Username: "root",
	}, got)

	t.Run("clear removes the file", func(t *testing.T) {
		require.NoError(t, second.Clear(ctx))
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err))
	})
}

func TestFileStore_AbsentKeysAreNotPersisted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"access":"a1"}`, string(data))
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*credentials.FileStore, string) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		s, err := credentials.NewFileStore(path, credentials.WithLogger(zerolog.Nop()))
		require.NoError(t, err)
		return s, path
	}

	t.Run("read reports it", func(t *testing.T) {
		s, _ := setup(t)
		_, err := s.Read(ctx)
		require.Error(t, err)
	})

	t.Run("clear removes it", func(t *testing.T) {
		s, path := setup(t)
		require.NoError(t, s.Clear(ctx))
		require.NoError(t, s.Clear(ctx))
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err))

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.True(t, got.IsZero())
	})

	t.Run("write replaces it", func(t *testing.T) {
		s, _ := setup(t)
		require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1", RefreshToken: "r1"}))

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, credentials.Session{AccessToken: "a1", RefreshToken: "r1"}, got)
	})
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := credentials.NewFileStore("")
	require.Error(t, err)
}

func TestSession_Maps(t *testing.T) {
	s := credentials.Session{AccessToken: "a1", Role: "Manager"}
	m := s.ToMap()
	require.Equal(t, map[credentials.Key]string{
		credentials.AccessTokenKey: "a1",
		credentials.RoleKey:        "manager",
	}, m)
	require.Equal(t, credentials.Session{AccessToken: "a1", Role: roles.Manager}, credentials.FromMap(m))
}

func TestSession_AccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"exp":      exp.Unix(),
		"username": "jane",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	t.Run("jwt with exp", func(t *testing.T) {
		got, ok := credentials.Session{AccessToken: signed}.AccessTokenExpiry()
		require.True(t, ok)
		require.True(t, exp.Equal(got))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := credentials.Session{AccessToken: "opaque"}.AccessTokenExpiry()
		require.False(t, ok)
	})

	t.Run("no token", func(t *testing.T) {
		_, ok := credentials.Session{}.AccessTokenExpiry()
		require.False(t, ok)
	})
}
