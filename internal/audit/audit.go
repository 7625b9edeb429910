// Package audit emits one event record per plugin decision. Records go out
// through the structured logger; there is no persistence or delivery
// guarantee here, deliberately.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkgdepot/registry-auth/internal/logging"
)

type Action string

const (
	ActionAuthenticate   Action = "authenticate"
	ActionRegister       Action = "register"
	ActionAccess         Action = "access"
	ActionPublish        Action = "publish"
	ActionUnpublish      Action = "unpublish"
	ActionChangePassword Action = "change_password"
)

// Event is one auth decision. Package is empty for account operations.
type Event struct {
	ID       string
	Action   Action
	Username string
	Package  string
	Allowed  bool
	At       time.Time
}

// Recorder assigns event identity and writes events to the logger.
type Recorder struct {
	log logging.Logger
}

func NewRecorder(log logging.Logger) *Recorder {
	return &Recorder{log: log}
}

// Record fills in ID and timestamp when unset and logs the event, info for
// granted outcomes and warn for denied ones.
func (r *Recorder) Record(ctx context.Context, e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	args := []any{
		"event_id", e.ID,
		"action", string(e.Action),
		"username", e.Username,
		"allowed", e.Allowed,
	}
	if e.Package != "" {
		args = append(args, "package", e.Package)
	}

	if e.Allowed {
		r.log.Info(ctx, "auth event", args...)
	} else {
		r.log.Warn(ctx, "auth event", args...)
	}
	return e
}
