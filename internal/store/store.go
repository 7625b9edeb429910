// Package store defines the contract between the credential flows and the
// backing user store. A backend hands out short-lived sessions: one session
// per plugin operation, opened before the first store access and released on
// every exit path.
package store

import "context"

// Record is a stored user: the natural key, the password digest, and the
// ordered list of group names the user belongs to.
type Record struct {
	Username string
	Password string
	Groups   []string
}

// Opener produces a connected Session. Implementations must not share
// connection state between sessions; pooling is the backend driver's
// business, not ours.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// Bootstrapper is implemented by backends that can establish their own
// store-side invariants: schema, and above all the unique username index
// the registration flow's duplicate-key safety net depends on.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) error
}

// Session is a scoped connection to the user store.
//
// FindUser returns common.ErrorNotFound when no record matches.
// InsertUser returns common.ErrorDuplicate when the store's uniqueness
// constraint rejects the record. Any other error is a backend failure.
type Session interface {
	FindUser(ctx context.Context, username string) (*Record, error)
	InsertUser(ctx context.Context, rec *Record) error
	Close(ctx context.Context) error
}
