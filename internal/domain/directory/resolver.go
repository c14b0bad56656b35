package directory

import "context"

type Resolver interface {
	// Resolve looks a user up by username first, then by external id.
	// Returns ErrUserNotFound when neither matches.
	Resolve(ctx context.Context, ref string) (*User, error)
}
