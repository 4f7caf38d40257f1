package config

import (
	"path/filepath"
	"strings"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Store struct {
	source
}

var _ StoreConfig = Store{}

func (s Store) GetCredentialBackend() string {
	return strings.ToLower(s.get("CREDENTIAL_BACKEND", BackendFile))
}

func (s Store) GetCredentialFile() string {
	return s.get("CREDENTIAL_FILE", filepath.Join(".", "data", "credentials.json"))
}

func (s Store) GetRedisAddr() string {
	return s.get("REDIS_ADDR", "localhost:6379")
}

func (s Store) GetRedisPassword() string {
	return s.get("REDIS_PASSWORD", "")
}

// GetProfile names the credential slot; separate profiles keep separate sessions.
func (s Store) GetProfile() string {
	return s.get("PROFILE", "default")
}
