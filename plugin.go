package registryauth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkgdepot/registry-auth/internal/accounts"
	"github.com/pkgdepot/registry-auth/internal/audit"
	"github.com/pkgdepot/registry-auth/internal/common"
	"github.com/pkgdepot/registry-auth/internal/logging"
	"github.com/pkgdepot/registry-auth/internal/password"
	"github.com/pkgdepot/registry-auth/internal/store"
	"github.com/pkgdepot/registry-auth/internal/store/mongodb"
	"github.com/pkgdepot/registry-auth/internal/store/postgres"
)

// Logger is re-exported so hosts can plug in their own implementation.
type Logger = logging.Logger

// NewSlogLogger adapts a *slog.Logger for hosts that already log through
// slog and do not want to write their own Logger implementation.
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.NewSlogLogger(l)
}

// Plugin is the engine instance the host registry holds for its lifetime.
// All operations are reentrant; the only shared state is the resolved
// configuration, which never changes after New.
type Plugin struct {
	cfg      Config
	opener   store.Opener
	accounts *accounts.Service
	log      logging.Logger
	events   *audit.Recorder
}

// New resolves the configuration and wires the flows. Construction only
// fails on caller bugs (an out-of-range bcrypt cost); incomplete store
// configuration is logged here and surfaces as ErrInternal when an
// operation first needs the store.
func New(cfg Config, log Logger) (*Plugin, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.With("plugin", "registry-auth")

	cfg = resolveConfig(cfg, log)

	codec, err := password.NewCodec(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	events := audit.NewRecorder(log)
	opener := openerFor(cfg)
	svc := accounts.NewService(opener, codec, *cfg.UserIsUnique, log, events)

	return &Plugin{
		cfg:      cfg,
		opener:   opener,
		accounts: svc,
		log:      log,
		events:   events,
	}, nil
}

// SetupStore establishes the store-side invariants the flows rely on, above
// all the unique username index: the document backend creates the index, the
// sql backend runs its embedded migrations. The host calls this once at
// startup; the per-request operations never do.
func (p *Plugin) SetupStore(ctx context.Context) error {
	b, ok := p.opener.(store.Bootstrapper)
	if !ok {
		return fmt.Errorf("%w: store backend has no bootstrap", common.ErrorInternal)
	}
	if err := b.Bootstrap(ctx); err != nil {
		p.log.Error(ctx, "error setting up store", "error", err)
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return nil
}

// Authenticate verifies the credentials and returns the user's groups.
func (p *Plugin) Authenticate(ctx context.Context, username, pw string) ([]string, error) {
	return p.accounts.Authenticate(ctx, username, pw)
}

// AddUser registers a new user. On success the result is true; it is never
// true alongside an error.
func (p *Plugin) AddUser(ctx context.Context, username, pw string) (bool, error) {
	if err := p.accounts.Register(ctx, username, pw); err != nil {
		return false, err
	}
	return true, nil
}

// ChangePassword always fails: password rotation is handled through a
// separate administrative channel, not through the registry.
func (p *Plugin) ChangePassword(ctx context.Context, username, _, _ string) error {
	return p.accounts.ChangePassword(ctx, username)
}

// openerFor selects the store backend from the URI scheme. Unknown and
// empty schemes get an opener that fails on use, matching the rule that
// configuration problems are non-fatal at construction.
func openerFor(cfg Config) store.Opener {
	switch {
	case isMongoURI(cfg.StoreURI):
		return mongodb.NewOpener(mongodb.Options{
			URI:        cfg.StoreURI,
			Database:   cfg.DatabaseName,
			Collection: cfg.CollectionName,
			Fields: mongodb.Fields{
				Username: cfg.FieldNames.Username,
				Password: cfg.FieldNames.Password,
				Groups:   cfg.FieldNames.UserGroups,
			},
		})
	case isPostgresURI(cfg.StoreURI):
		return postgres.NewOpener(cfg.StoreURI)
	default:
		return unsupportedOpener{uri: cfg.StoreURI}
	}
}

type unsupportedOpener struct {
	uri string
}

func (o unsupportedOpener) Open(context.Context) (store.Session, error) {
	if o.uri == "" {
		return nil, fmt.Errorf("store URI is not configured")
	}
	return nil, fmt.Errorf("unsupported store URI %q", o.uri)
}

func (o unsupportedOpener) Bootstrap(ctx context.Context) error {
	_, err := o.Open(ctx)
	return err
}
