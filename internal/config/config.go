package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const configFileVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	FlowConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type StoreConfig interface {
	GetCredentialBackend() string
	GetCredentialFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetProfile() string
}

type FlowConfig interface {
	GetRegisterRedirectDelay() time.Duration
	GetForgotPasswordRedirectDelay() time.Duration
	GetResetPasswordRedirectDelay() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Store
	Flow
}

// New returns a Config backed by environment variables only.
func New() Config {
	return newConfig(nil)
}

// Load reads a YAML file of settings keyed by the lower-cased environment
// variable names (e.g. api_base_url). Environment variables override the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[config Load] reading config file")
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "[config Load] parsing config file")
	}

	values := make(fileValues, len(raw))
	for k, v := range raw {
		values[strings.ToUpper(k)] = v
	}
	return newConfig(values), nil
}

// FromEnvironment loads CONFIG_FILE when set, otherwise behaves like New.
func FromEnvironment() (Config, error) {
	path := GetEnv(configFileVar, "")
	if path == "" {
		return New(), nil
	}
	return Load(path)
}

func newConfig(values fileValues) Config {
	src := source{file: values}
	return mainConfig{
		EnvVars: EnvVars{src},
		API:     API{src},
		Store:   Store{src},
		Flow:    Flow{src},
	}
}

// Validate checks the settings the application cannot start without.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.GetAPIBaseURL())
	if err != nil {
		return errors.Wrap(err, "[config Validate] API_BASE_URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("[config Validate] API_BASE_URL must be http or https, got %q", cfg.GetAPIBaseURL())
	}

	switch cfg.GetCredentialBackend() {
	case BackendFile:
		if cfg.GetCredentialFile() == "" {
			return errors.New("[config Validate] CREDENTIAL_FILE is required for the file backend")
		}
	case BackendRedis:
		if cfg.GetRedisAddr() == "" {
			return errors.New("[config Validate] REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return errors.Errorf("[config Validate] unknown CREDENTIAL_BACKEND %q", cfg.GetCredentialBackend())
	}
	return nil
}
