package utils_test

import (
	"testing"

	"github.com/jrsteele09/brightpath-auth/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	x := "x"
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "x", utils.Value(&x))
}

func TestPresent(t *testing.T) {
	empty, blank, token := "", "  ", "token"
	require.False(t, utils.Present(nil))
	require.False(t, utils.Present(&empty))
	require.False(t, utils.Present(&blank))
	require.True(t, utils.Present(&token))
}
