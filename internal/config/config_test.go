package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/brightpath-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brightpath.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()

	require.Equal(t, "BrightPath", cfg.GetAppName())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Equal(t, "http://localhost:8000/api", cfg.GetAPIBaseURL())
	require.Equal(t, config.BackendFile, cfg.GetCredentialBackend())
	require.Equal(t, "default", cfg.GetProfile())
	require.Equal(t, 2*time.Second, cfg.GetRegisterRedirectDelay())
	require.Equal(t, 5*time.Second, cfg.GetForgotPasswordRedirectDelay())
	require.Equal(t, 3*time.Second, cfg.GetResetPasswordRedirectDelay())
	require.NoError(t, config.Validate(cfg))
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.brightpath.test/api")
	t.Setenv("CREDENTIAL_BACKEND", "Redis")
	t.Setenv("ENV", "prod")
	t.Setenv("REGISTER_REDIRECT_DELAY", "250ms")
	t.Setenv("RESET_PASSWORD_REDIRECT_DELAY", "soon")

	cfg := config.New()
	require.Equal(t, "https://api.brightpath.test/api", cfg.GetAPIBaseURL())
	require.Equal(t, config.BackendRedis, cfg.GetCredentialBackend())
	require.Equal(t, "PROD", cfg.GetEnv())
	require.Equal(t, 250*time.Millisecond, cfg.GetRegisterRedirectDelay())
	require.Equal(t, 3*time.Second, cfg.GetResetPasswordRedirectDelay(), "unparseable values fall back")
}

func TestLoad(t *testing.T) {
	t.Run("file values apply", func(t *testing.T) {
		path := writeConfigFile(t, `
api_base_url: "https://file.example/api"
credential_backend: memory
profile: work
forgot_password_redirect_delay: 1s
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "https://file.example/api", cfg.GetAPIBaseURL())
		require.Equal(t, config.BackendMemory, cfg.GetCredentialBackend())
		require.Equal(t, "work", cfg.GetProfile())
		require.Equal(t, time.Second, cfg.GetForgotPasswordRedirectDelay())
	})

	t.Run("env beats file", func(t *testing.T) {
		path := writeConfigFile(t, "profile: work\n")
		t.Setenv("PROFILE", "home")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "home", cfg.GetProfile())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := config.Load(writeConfigFile(t, "profile: [unclosed\n"))
		require.Error(t, err)
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", writeConfigFile(t, "app_name: Campus\n"))

		cfg, err := config.FromEnvironment()
		require.NoError(t, err)
		require.Equal(t, "Campus", cfg.GetAppName())
	})
}

func TestValidate(t *testing.T) {
	t.Run("bad scheme", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "ftp://example.com")
		require.Error(t, config.Validate(config.New()))
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("CREDENTIAL_BACKEND", "sqlite")
		require.Error(t, config.Validate(config.New()))
	})

	t.Run("memory backend", func(t *testing.T) {
		t.Setenv("CREDENTIAL_BACKEND", "memory")
		require.NoError(t, config.Validate(config.New()))
	})
}
