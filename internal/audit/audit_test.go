package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgdepot/registry-auth/internal/logging"
)

type captureLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (c *captureLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (c *captureLogger) Info(ctx context.Context, msg string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, msg)
}
func (c *captureLogger) Warn(ctx context.Context, msg string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns = append(c.warns, msg)
}
func (c *captureLogger) Error(ctx context.Context, msg string, args ...any) {}
func (c *captureLogger) With(args ...any) logging.Logger                    { return c }

func TestRecorder_AssignsIdentity(t *testing.T) {
	log := &captureLogger{}
	r := NewRecorder(log)

	e := r.Record(context.Background(), Event{
		Action:   ActionAuthenticate,
		Username: "alice",
		Allowed:  true,
	})

	require.NotEmpty(t, e.ID)
	assert.False(t, e.At.IsZero())
	assert.Len(t, log.infos, 1)
	assert.Empty(t, log.warns)
}

func TestRecorder_PreservesCallerIdentity(t *testing.T) {
	r := NewRecorder(logging.NewNop())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e := r.Record(context.Background(), Event{ID: "fixed", At: at, Action: ActionRegister, Username: "bob"})

	assert.Equal(t, "fixed", e.ID)
	assert.Equal(t, at, e.At)
}

func TestRecorder_DeniedLogsWarn(t *testing.T) {
	log := &captureLogger{}
	r := NewRecorder(log)

	r.Record(context.Background(), Event{
		Action:   ActionPublish,
		Username: "alice",
		Package:  "left-pad",
		Allowed:  false,
	})

	assert.Empty(t, log.infos)
	assert.Len(t, log.warns, 1)
}
