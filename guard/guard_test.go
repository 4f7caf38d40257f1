package guard_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/brightpath-auth/apiclient"
	"github.com/jrsteele09/brightpath-auth/authflow"
	"github.com/jrsteele09/brightpath-auth/credentials"
	"github.com/jrsteele09/brightpath-auth/guard"
	"github.com/jrsteele09/brightpath-auth/internal/testbackend"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	credentials.Store
}

func (brokenStore) Read(context.Context) (credentials.Session, error) {
	return credentials.Session{}, errors.New("disk on fire")
}

type testFixture struct {
	store *credentials.InMemoryStore
	guard *guard.Guard
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	store := credentials.NewInMemoryStore()
	g, err := guard.New(store)
	require.NoError(t, err)
	return &testFixture{store: store, guard: g}
}

func (f *testFixture) write(t *testing.T, s credentials.Session) {
	t.Helper()
	require.NoError(t, f.store.Write(context.Background(), s))
}

func TestNew_Validation(t *testing.T) {
	_, err := guard.New(nil)
	require.Error(t, err)
}

func TestGuard_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("no token is unauthenticated", func(t *testing.T) {
		f := setupTestFixture(t)
		f.write(t, credentials.Session{Role: roles.Admin})

		d := f.guard.Check(ctx, roles.AdminViews)
		require.Equal(t, guard.Deny(guard.Unauthenticated, roles.Unknown), d)
	})

	t.Run("no token is unauthenticated even without required roles", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Equal(t, guard.Unauthenticated, f.guard.Check(ctx, nil).Reason)
	})

	t.Run("token with any role passes an empty allow-set", func(t *testing.T) {
		f := setupTestFixture(t)
		f.write(t, credentials.Session{AccessToken: "a1"})
		require.True(t, f.guard.Check(ctx, roles.NewAllowSet()).Allowed)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		f := setupTestFixture(t)
		f.write(t, credentials.Session{AccessToken: "a1"})

		d := f.guard.Check(ctx, roles.InstructorViews)
		require.False(t, d.Allowed)
		require.Equal(t, guard.Forbidden, d.Reason)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		f := setupTestFixture(t)
		f.write(t, credentials.Session{AccessToken: "a1", Role: roles.Instructor})

		require.Equal(t, guard.Deny(guard.Forbidden, roles.Instructor), f.guard.Check(ctx, roles.AdminViews))
	})

	t.Run("members are allowed", func(t *testing.T) {
		f := setupTestFixture(t)
		for _, role := range []roles.Role{roles.Admin, roles.Manager} {
			f.write(t, credentials.Session{AccessToken: "a1", Role: role})
			require.Equal(t, guard.Allow(role), f.guard.Check(ctx, roles.AdminViews))
		}
	})

	t.Run("allow-set membership ignores case", func(t *testing.T) {
		f := setupTestFixture(t)
		f.write(t, credentials.Session{AccessToken: "a1", Role: roles.Instructor})
		require.True(t, f.guard.Check(ctx, roles.NewAllowSet("INSTRUCTOR")).Allowed)
	})

	t.Run("store failure denies", func(t *testing.T) {
		g, err := guard.New(brokenStore{})
		require.NoError(t, err)
		require.Equal(t, guard.Unauthenticated, g.Check(ctx, nil).Reason)
	})
}

func TestGuard_Enter(t *testing.T) {
	ctx := context.Background()

	t.Run("denied goes to login", func(t *testing.T) {
		f := setupTestFixture(t)
		nav := navigation.NewHistory(navigation.InstructorDashboard)

		d := f.guard.Enter(ctx, nav, guard.AdminDashboardView)
		require.False(t, d.Allowed)
		require.Equal(t, []navigation.Visit{{Route: navigation.Login, Replace: true}}, nav.Visits())
	})

	t.Run("allowed goes to the view", func(t *testing.T) {
		f := setupTestFixture(t)
		f.write(t, credentials.Session{AccessToken: "a1", Role: roles.Instructor})
		nav := navigation.NewHistory(navigation.Login)

		d := f.guard.Enter(ctx, nav, guard.InstructorDashboardView)
		require.True(t, d.Allowed)
		require.Equal(t, navigation.InstructorDashboard, nav.Current())
	})
}

func TestGuard_AfterLogin(t *testing.T) {
	ctx := context.Background()
	backend := testbackend.New(t, testbackend.User{Username: "jane", Password: "secret", Role: "INSTRUCTOR"})
	store := credentials.NewInMemoryStore()
	client, err := apiclient.New(backend.URL(), store)
	require.NoError(t, err)
	nav := navigation.NewHistory(navigation.Login)
	controller, err := authflow.New(store, client, nav)
	require.NoError(t, err)
	defer controller.Close()
	g, err := guard.New(store)
	require.NoError(t, err)

	require.True(t, controller.Login(ctx, authflow.Credentials{Username: "jane", Password: "secret"}).OK())
	require.True(t, g.Check(ctx, roles.InstructorViews).Allowed)
	require.Equal(t, guard.Forbidden, g.Check(ctx, roles.AdminViews).Reason)

	require.True(t, controller.Logout(ctx).OK())
	require.Equal(t, guard.Unauthenticated, g.Check(ctx, roles.InstructorViews).Reason)
	// Only the login itself fetched the profile.
	require.Equal(t, 1, backend.CallsTo(apiclient.ProfilePath))
}
