package directorymock

import (
	"context"

	"device-approval-backend/internal/domain/directory"
)

var _ directory.Resolver = (*Resolver)(nil)

// Resolver resolves from a fixed user list by username, then external id.
// ResolveFn, when set, takes precedence.
type Resolver struct {
	ResolveFn func(ctx context.Context, ref string) (*directory.User, error)
	Users     []directory.User
}

func New(users ...directory.User) *Resolver {
	return &Resolver{Users: users}
}

func (m *Resolver) Resolve(ctx context.Context, ref string) (*directory.User, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, ref)
	}
	for i := range m.Users {
		if m.Users[i].Username == ref {
			u := m.Users[i]
			return &u, nil
		}
	}
	for i := range m.Users {
		if m.Users[i].ExternalID == ref {
			u := m.Users[i]
			return &u, nil
		}
	}
	return nil, directory.ErrUserNotFound
}
