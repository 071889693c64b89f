package ports

import (
	"context"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

// AuthGateway authenticates against the backend. Login does not persist the
// session; the caller decides whether to remember it. Logout always succeeds
// locally, whatever the backend answers.
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	CurrentUser(ctx context.Context, sid string) (domain.Profile, error)
	Logout(ctx context.Context, sid string)
}
