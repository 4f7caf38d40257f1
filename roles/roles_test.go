package roles_test

import (
	"testing"

	"github.com/jrsteele09/brightpath-auth/roles"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want roles.Role
	}{
		{"Instructor", roles.Instructor},
		{"ADMIN", roles.Admin},
		{"  manager ", roles.Manager},
		{"", roles.Unknown},
		{"Student", roles.Role("student")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, roles.Normalize(tt.raw))
		})
	}
}

func TestRole_Known(t *testing.T) {
	require.True(t, roles.Instructor.Known())
	require.True(t, roles.Role("Manager").Known())
	require.False(t, roles.Role("student").Known())
	require.False(t, roles.Unknown.Known())
}

func TestAllowSet(t *testing.T) {
	set := roles.NewAllowSet("Admin", "manager", " ")

	t.Run("case insensitive membership", func(t *testing.T) {
		require.True(t, set.Contains("ADMIN"))
		require.True(t, set.Contains(roles.Manager))
	})

	t.Run("non members", func(t *testing.T) {
		require.False(t, set.Contains(roles.Instructor))
		require.False(t, set.Contains(roles.Unknown))
	})

	t.Run("blank entries dropped", func(t *testing.T) {
		require.Len(t, set, 2)
		require.Equal(t, "admin, manager", set.String())
	})

	t.Run("predefined view sets", func(t *testing.T) {
		require.True(t, roles.InstructorViews.Contains(roles.Instructor))
		require.False(t, roles.InstructorViews.Contains(roles.Admin))
		require.True(t, roles.AdminViews.Contains(roles.Manager))
	})
}
