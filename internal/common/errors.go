// Package common defines shared sentinel errors used across the plugin
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrorDuplicate = errors.New("duplicate key")

	// Flow-level errors surfaced to the host.
	ErrorBadData      = errors.New("bad data")
	ErrorUnauthorized = errors.New("bad username/password, access denied")
	ErrorForbidden    = errors.New("forbidden")
	ErrorInternal     = errors.New("internal error")
)
