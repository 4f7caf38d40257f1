package credentials

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const fileStoreMode = 0o600

var _ Store = (*FileStore)(nil)

var errCorruptFile = errors.New("credentials file is not a JSON object")

// FileStore persists the session as a flat JSON object of string keys, so it
// survives process restarts. The mutex serialises writers inside one process
// only; separate processes sharing a file are not coordinated.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the logger used to report an unreadable file.
func WithLogger(logger zerolog.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on first write.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	s := &FileStore{path: path, logger: log.Logger}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *FileStore) Write(ctx context.Context, fields Session) error {
	return s.Update(ctx, func(current Session) (Session, error) {
		return current.Merge(fields), nil
	})
}

func (s *FileStore) Read(_ context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Clear removes the file without reading it, so an unreadable file never
// blocks a logout.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Session{})
}

// Update applies fn to the stored session. An undecodable file is replaced:
// fn sees an empty session.
func (s *FileStore) Update(_ context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if errors.Is(err, errCorruptFile) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("discarding unreadable credentials file")
		current = Session{}
	} else if err != nil {
		return err
	}
	next, err := fn(current)
	if errors.Is(err, ErrSkipUpdate) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.save(next)
}

func (s *FileStore) load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "[FileStore load] read")
	}

	var m map[Key]string
	if err := json.Unmarshal(data, &m); err != nil {
		return Session{}, errors.Wrapf(errCorruptFile, "[FileStore load] decode %s: %v", s.path, err)
	}
	return FromMap(m), nil
}

func (s *FileStore) save(session Session) error {
	m := session.ToMap()
	if len(m) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrap(err, "[FileStore save] remove")
		}
		return nil
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore save] encode")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileStore save] create dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileStore save] create temp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore save] write temp")
	}
	if err := tmp.Chmod(fileStoreMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore save] chmod temp")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore save] close temp")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "[FileStore save] rename")
	}
	return nil
}
