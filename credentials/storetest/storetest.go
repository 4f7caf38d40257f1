// Package storetest holds the behaviour every credentials.Store backend must show.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a Store backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) credentials.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store reads as anonymous", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.True(t, got.IsZero())
		require.False(t, got.LoggedIn())
	})

	t.Run("write merges fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1", RefreshToken: "r1"}))
		require.NoError(t, s.Write(ctx, credentials.Session{Role: "Instructor", Username: "jane"}))

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, credentials.Session{
			AccessToken:  "a1",
			RefreshToken: "r1",
			Role:         roles.Instructor,
			Username:     "jane",
		}, got)
	})

	t.Run("empty fields do not erase keys", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1", Username: "jane"}))
		require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a2"}))

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, "a2", got.AccessToken)
		require.Equal(t, "jane", got.Username)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Write(ctx, credentials.Session{
			AccessToken: "a1", RefreshToken: "r1", Role: roles.Admin, Username: "root",
		}))
		require.NoError(t, s.Clear(ctx))
		once, err := s.Read(ctx)
		require.NoError(t, err)

		require.NoError(t, s.Clear(ctx))
		twice, err := s.Read(ctx)
		require.NoError(t, err)

		require.True(t, once.IsZero())
		require.Equal(t, once, twice)
	})

	t.Run("update replaces snapshot", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1", Username: "jane"}))
		require.NoError(t, s.Update(ctx, func(current credentials.Session) (credentials.Session, error) {
			require.Equal(t, "a1", current.AccessToken)
			return credentials.Session{AccessToken: "a1"}, nil
		}))

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, credentials.Session{AccessToken: "a1"}, got)
	})

	t.Run("update skip leaves store untouched", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Write(ctx, credentials.Session{AccessToken: "a1"}))
		require.NoError(t, s.Update(ctx, func(credentials.Session) (credentials.Session, error) {
			return credentials.Session{}, credentials.ErrSkipUpdate
		}))

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, "a1", got.AccessToken)
	})

	t.Run("update error is returned", func(t *testing.T) {
		s := newStore(t)
		boom := errors.New("boom")
		err := s.Update(ctx, func(credentials.Session) (credentials.Session, error) {
			return credentials.Session{}, boom
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("concurrent writes keep a consistent snapshot", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for _, tok := range []string{"a1", "a2", "a3", "a4"} {
			wg.Add(1)
			go func(tok string) {
				defer wg.Done()
				assert.NoError(t, s.Write(ctx, credentials.Session{AccessToken: tok, RefreshToken: "r-" + tok}))
			}(tok)
		}
		wg.Wait()

		got, err := s.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, "r-"+got.AccessToken, got.RefreshToken)
	})
}
