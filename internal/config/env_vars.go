package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	appNameVar  = "APP_NAME"
	envNameVar  = "ENV"
	logLevelVar = "LOG_LEVEL"
)

// fileValues holds settings read from a config file, keyed by env var name.
type fileValues map[string]string

type source struct {
	file fileValues
}

// get resolves envVar from the environment, then the config file, then defaultValue.
func (s source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value := s.file[envVar]; value != "" {
		return value
	}
	return defaultValue
}

func (s source) duration(envVar string, defaultValue time.Duration) time.Duration {
	raw := s.get(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Warn().Str("var", envVar).Str("value", raw).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}

type EnvVars struct {
	source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.get(appNameVar, "BrightPath")
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.get(envNameVar, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return e.get(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
