// Package redisstore keeps the credential snapshot in a Redis hash so several
// hosts can share one profile.
package redisstore

import (
	"context"
	"errors"

	"github.com/jrsteele09/brightpath-auth/credentials"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "brightpath:session:"
	maxUpdateAttempts = 5
)

// ErrUpdateContention is returned when an update keeps losing its WATCH race.
var ErrUpdateContention = errors.New("redis session update contention")

var _ credentials.Store = (*Store)(nil)

// Store is a credentials.Store backed by one Redis hash per profile.
type Store struct {
	client redis.UniversalClient
	key    string
}

// New creates a store for profile on client. The caller owns client.
func New(client redis.UniversalClient, profile string) (*Store, error) {
	if client == nil {
		return nil, pkgerrors.New("[redisstore New] client is required")
	}
	if profile == "" {
		return nil, pkgerrors.New("[redisstore New] profile is required")
	}
	return &Store{client: client, key: keyPrefix + profile}, nil
}

// Key returns the Redis key holding the session hash.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Write(ctx context.Context, fields credentials.Session) error {
	return s.Update(ctx, func(current credentials.Session) (credentials.Session, error) {
		return current.Merge(fields), nil
	})
}

func (s *Store) Read(ctx context.Context) (credentials.Session, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return credentials.Session{}, pkgerrors.Wrap(err, "[redisstore Read] hgetall")
	}
	return fromHash(values), nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return pkgerrors.Wrap(err, "[redisstore Clear] del")
	}
	return nil
}

// Update runs fn inside a WATCH/MULTI transaction on the session key,
// retrying when another writer touched the key first.
func (s *Store) Update(ctx context.Context, fn credentials.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, s.key).Result()
		if err != nil {
			return pkgerrors.Wrap(err, "[redisstore Update] hgetall")
		}

		next, err := fn(fromHash(values))
		if err != nil {
			return err
		}

		fields := toHash(next)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.key)
			if len(fields) > 0 {
				pipe.HSet(ctx, s.key, fields)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, credentials.ErrSkipUpdate):
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return err
		}
	}
	return ErrUpdateContention
}

func fromHash(values map[string]string) credentials.Session {
	m := make(map[credentials.Key]string, len(values))
	for k, v := range values {
		m[credentials.Key(k)] = v
	}
	return credentials.FromMap(m)
}

func toHash(session credentials.Session) map[string]any {
	m := session.ToMap()
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
