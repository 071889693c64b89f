package ports

import (
	"context"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

// SessionStore persists sessions keyed by the opaque id held in the session cookie.
//
// Get never fails: a storage fault, corrupt record, or expired session all
// read as absent. Clear is idempotent. Replace only overwrites a session
// that is still stored and reports whether it did, so a write racing a
// logout never brings the session back.
type SessionStore interface {
	Set(ctx context.Context, sid string, s domain.Session) error
	Replace(ctx context.Context, sid string, s domain.Session) (bool, error)
	Get(ctx context.Context, sid string) (domain.Session, bool)
	Clear(ctx context.Context, sid string) error
}
