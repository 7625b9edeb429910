// Package accounts contains the credential flows: verifying a user against
// the store and registering a new one. Both open a scoped store session per
// call and release it on every exit path.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkgdepot/registry-auth/internal/audit"
	"github.com/pkgdepot/registry-auth/internal/common"
	"github.com/pkgdepot/registry-auth/internal/logging"
	"github.com/pkgdepot/registry-auth/internal/password"
	"github.com/pkgdepot/registry-auth/internal/store"
)

const (
	// MinUsernameLen and MinPasswordLen gate registration before any store
	// access.
	MinUsernameLen = 3
	MinPasswordLen = 8

	// BaseGroup is assigned to every new user and substituted when a stored
	// record carries no groups at all.
	BaseGroup = "user"
)

// Service orchestrates the account flows over a store backend.
type Service struct {
	opener store.Opener
	codec  *password.Codec
	unique bool
	log    logging.Logger
	events *audit.Recorder
}

// NewService wires the flows. unique enables the advisory existence
// pre-check during registration; the real uniqueness guarantee is the
// store's unique index either way.
func NewService(opener store.Opener, codec *password.Codec, unique bool, log logging.Logger, events *audit.Recorder) *Service {
	return &Service{
		opener: opener,
		codec:  codec,
		unique: unique,
		log:    log,
		events: events,
	}
}

// Authenticate checks username/password against the store and returns the
// user's group list. A missing record and a failed verification are
// indistinguishable to the caller: both are ErrorUnauthorized. Store
// failures come back as ErrorInternal and are never retried.
func (s *Service) Authenticate(ctx context.Context, username, pw string) ([]string, error) {
	sess, err := s.opener.Open(ctx)
	if err != nil {
		s.log.Error(ctx, "error opening store session", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	defer s.release(ctx, sess)

	rec, err := sess.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.deny(ctx, audit.ActionAuthenticate, username)
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "error looking up user", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !s.codec.Verify(pw, rec.Password) {
		s.deny(ctx, audit.ActionAuthenticate, username)
		return nil, common.ErrorUnauthorized
	}

	// The stored list is substituted, never merged: a record with groups
	// keeps exactly those, a record without any gets the base group.
	groups := rec.Groups
	if len(groups) == 0 {
		groups = []string{BaseGroup}
	}

	s.log.Info(ctx, "user authenticated", "username", username, "groups", groups)
	s.events.Record(ctx, audit.Event{Action: audit.ActionAuthenticate, Username: username, Allowed: true})
	return groups, nil
}

// Register validates the credentials, hashes the password, and inserts the
// record with the base group. Validation failures surface as ErrorBadData
// before any store access. A duplicate username is ErrorForbidden whether
// the advisory pre-check or the store's unique index catches it.
func (s *Service) Register(ctx context.Context, username, pw string) error {
	if len(username) < MinUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters", common.ErrorBadData, MinUsernameLen)
	}
	if len(pw) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorBadData, MinPasswordLen)
	}

	digest, err := s.codec.Hash(pw)
	if err != nil {
		s.log.Error(ctx, "error hashing password", "error", err)
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	sess, err := s.opener.Open(ctx)
	if err != nil {
		s.log.Error(ctx, "error opening store session", "error", err)
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	defer s.release(ctx, sess)

	if s.unique {
		_, err := sess.FindUser(ctx, username)
		switch {
		case err == nil:
			s.deny(ctx, audit.ActionRegister, username)
			return fmt.Errorf("%w: user already exists", common.ErrorForbidden)
		case !errors.Is(err, common.ErrorNotFound):
			s.log.Error(ctx, "error checking for existing user", "username", username, "error", err)
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
	}

	rec := &store.Record{Username: username, Password: digest, Groups: []string{BaseGroup}}
	if err := sess.InsertUser(ctx, rec); err != nil {
		if errors.Is(err, common.ErrorDuplicate) {
			s.deny(ctx, audit.ActionRegister, username)
			return fmt.Errorf("%w: user already exists", common.ErrorForbidden)
		}
		s.log.Error(ctx, "error inserting user", "username", username, "error", err)
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "user registered", "username", username, "groups", rec.Groups)
	s.events.Record(ctx, audit.Event{Action: audit.ActionRegister, Username: username, Allowed: true})
	return nil
}

// ChangePassword is rejected by policy: password rotation happens through a
// separate administrative channel, never through the registry. It fails
// unconditionally and touches nothing.
func (s *Service) ChangePassword(ctx context.Context, username string) error {
	s.log.Warn(ctx, "password change rejected, rotation is handled administratively", "username", username)
	s.deny(ctx, audit.ActionChangePassword, username)
	return fmt.Errorf("%w: password change is not supported", common.ErrorInternal)
}

func (s *Service) deny(ctx context.Context, action audit.Action, username string) {
	s.events.Record(ctx, audit.Event{Action: action, Username: username, Allowed: false})
}

func (s *Service) release(ctx context.Context, sess store.Session) {
	if err := sess.Close(ctx); err != nil {
		s.log.Warn(ctx, "error releasing store session", "error", err)
	}
}
