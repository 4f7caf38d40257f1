package authflow_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/authflow"
	"github.com/jrsteele09/brightpath-auth/internal/testbackend"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/stretchr/testify/require"
)

func TestController_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t, navigation.Register)

		res := f.controller.Register(ctx, authflow.Registration{
			Username: "newbie", Email: "newbie@example.com", Password: "pw1", PasswordConfirmation: "pw1",
		})
		require.True(t, res.OK(), res.Message)
		require.Equal(t, "User registered successfully. Please check your email to verify your account.", res.Message)
		require.True(t, res.ClearForm)
		require.Equal(t, navigation.Login, res.Redirect)
		require.Equal(t, 2*time.Second, res.RedirectAfter)

		timers := f.clock.Timers()
		require.Len(t, timers, 1)
		require.Equal(t, 2*time.Second, timers[0].delay)

		u, ok := f.backend.User("newbie")
		require.True(t, ok)
		require.Equal(t, "newbie@example.com", u.Email)

		calls := f.backend.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, "pw1", calls[0].Body["password2"])
	})

	t.Run("default message", func(t *testing.T) {
		f := setupTestFixture(t, navigation.Register)
		f.backend.Override(apiclient.RegisterPath, testbackend.Response{Status: http.StatusCreated, Body: `{}`})

		res := f.controller.Register(ctx, authflow.Registration{
			Username: "newbie", Email: "newbie@example.com", Password: "pw1", PasswordConfirmation: "pw1",
		})
		require.True(t, res.OK())
		require.Equal(t, "User registered successfully!", res.Message)
	})

	t.Run("field errors are returned as sent", func(t *testing.T) {
		f := setupTestFixture(t, navigation.Register)

		res := f.controller.Register(ctx, authflow.Registration{
			Username: "jane", Email: "other@example.com", Password: "pw1", PasswordConfirmation: "pw2",
		})
		require.False(t, res.OK())
		require.False(t, res.ClearForm)
		require.Equal(t, map[string][]string{
			"username": {"A user with that username already exists."},
			"password": {"Password fields didn't match."},
		}, res.FieldErrors)
		require.Equal(t, "password: Password fields didn't match.; username: A user with that username already exists.", res.Message)
		require.Empty(t, f.clock.Timers())
	})

	t.Run("missing fields send nothing", func(t *testing.T) {
		f := setupTestFixture(t, navigation.Register)

		res := f.controller.Register(ctx, authflow.Registration{Username: "newbie", Password: "pw1", PasswordConfirmation: "pw1"})
		require.ErrorIs(t, res.Err, authflow.ErrMissingFields)
		require.Empty(t, f.backend.Calls())
	})

	t.Run("network failure", func(t *testing.T) {
		f := setupTestFixture(t, navigation.Register)
		f.backend.Close()

		res := f.controller.Register(ctx, authflow.Registration{
			Username: "newbie", Email: "newbie@example.com", Password: "pw1", PasswordConfirmation: "pw1",
		})
		require.Equal(t, "Network or server error.", res.Message)
		require.Nil(t, res.FieldErrors)
	})
}
