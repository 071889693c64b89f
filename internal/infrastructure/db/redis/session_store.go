package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/pls-platform/dashboard/internal/api/metrics"
	"github.com/pls-platform/dashboard/internal/core/domain"
)

// SessionStore keeps sessions in Redis as one JSON document per key.
// Key format: session:<hex blake2b-256 of the cookie value>
// The key expires together with the session.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
	log    zerolog.Logger
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client, log zerolog.Logger) *SessionStore {
	return &SessionStore{client: client, now: time.Now, log: log}
}

// Set replaces the session stored under sid.
func (s *SessionStore) Set(ctx context.Context, sid string, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("store session: %w", domain.ErrSessionExpired)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sid), payload, ttl).Err(); err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("set").Inc()
		return fmt.Errorf("store session: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Replace overwrites the session under sid only while its key still exists
// (SET XX). The key keeps its remaining TTL.
func (s *SessionStore) Replace(ctx context.Context, sid string, session domain.Session) (bool, error) {
	if err := session.Validate(); err != nil {
		return false, fmt.Errorf("replace session: %w", err)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("replace session: %w", err)
	}

	err = s.client.SetArgs(ctx, sessionKey(sid), payload, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		metrics.SessionStoreErrorsTotal.WithLabelValues("replace").Inc()
		return false, fmt.Errorf("replace session: %w: %w", domain.ErrStorage, err)
	}
	return true, nil
}

// Get returns the session stored under sid. Storage faults and unreadable
// records are logged and reported as absent.
func (s *SessionStore) Get(ctx context.Context, sid string) (domain.Session, bool) {
	if sid == "" {
		return domain.Session{}, false
	}

	raw, err := s.client.Get(ctx, sessionKey(sid)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.SessionStoreErrorsTotal.WithLabelValues("get").Inc()
			s.log.Warn().Err(err).Msg("session lookup failed, treating as signed out")
		}
		return domain.Session{}, false
	}

	session, ok := decodeSession(raw)
	if !ok {
		metrics.SessionStoreErrorsTotal.WithLabelValues("decode").Inc()
		s.log.Warn().Msg("discarding unreadable session record")
		_ = s.Clear(ctx, sid)
		return domain.Session{}, false
	}
	if session.Expired(s.now()) {
		_ = s.Clear(ctx, sid)
		return domain.Session{}, false
	}
	return session, true
}

// Clear removes the session stored under sid. Removing a missing key is not an error.
func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("clear").Inc()
		return fmt.Errorf("clear session: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func sessionKey(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return "session:" + hex.EncodeToString(sum[:])
}

// decodeSession parses a stored record; anything partial counts as absent.
func decodeSession(raw []byte) (domain.Session, bool) {
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, false
	}
	if session.Validate() != nil {
		return domain.Session{}, false
	}
	return session, true
}
