package registryauth

import "github.com/pkgdepot/registry-auth/internal/common"

// The four error kinds the host can observe, matched with errors.Is. Group
// lists are never returned alongside an error.
var (
	// ErrBadData rejects malformed input before any store access.
	ErrBadData = common.ErrorBadData

	// ErrUnauthorized is a credential mismatch: unknown user or wrong
	// password, deliberately indistinguishable.
	ErrUnauthorized = common.ErrorUnauthorized

	// ErrForbidden is an authorization denial or a duplicate-username
	// registration.
	ErrForbidden = common.ErrorForbidden

	// ErrInternal wraps store and connection failures; the cause is kept in
	// the message, never retried.
	ErrInternal = common.ErrorInternal
)
