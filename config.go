package registryauth

import (
	"context"
	"strings"

	"github.com/pkgdepot/registry-auth/internal/logging"
)

// Default document keys used when the host leaves FieldNames unset.
const (
	defaultUsernameField = "username"
	defaultPasswordField = "password"
	defaultGroupsField   = "usergroups"
)

// FieldNames maps the logical record fields onto the keys of the stored
// document. It only applies to the document backend; the PostgreSQL backend
// has a fixed schema.
type FieldNames struct {
	Username   string
	Password   string
	UserGroups string
}

// Config is the plugin's configuration surface. It is resolved once in New
// and immutable afterwards.
//
// UserIsUnique is a *bool so that an unset value can default to true; it
// only controls the advisory existence pre-check during registration. The
// actual uniqueness guarantee is the store's unique username index.
type Config struct {
	StoreURI       string
	DatabaseName   string
	CollectionName string
	FieldNames     FieldNames
	UserIsUnique   *bool

	// BcryptCost tunes the password codec; 0 selects the bcrypt default.
	BcryptCost int
}

// resolveConfig validates the required settings and back-fills defaults.
// Missing settings are logged and tolerated: construction succeeds, the
// affected operations fail later when they first need the store.
func resolveConfig(cfg Config, log logging.Logger) Config {
	ctx := context.Background()

	if cfg.StoreURI == "" {
		log.Error(ctx, "configuration error: store URI is not set")
	}
	if !isPostgresURI(cfg.StoreURI) {
		if cfg.DatabaseName == "" {
			log.Error(ctx, "configuration error: database name is not set")
		}
		if cfg.CollectionName == "" {
			log.Error(ctx, "configuration error: collection name is not set")
		}
	}

	if cfg.FieldNames.Username == "" {
		cfg.FieldNames.Username = defaultUsernameField
	}
	if cfg.FieldNames.Password == "" {
		cfg.FieldNames.Password = defaultPasswordField
	}
	if cfg.FieldNames.UserGroups == "" {
		cfg.FieldNames.UserGroups = defaultGroupsField
	}

	if cfg.UserIsUnique == nil {
		unique := true
		cfg.UserIsUnique = &unique
	}

	return cfg
}

func isMongoURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}

func isPostgresURI(uri string) bool {
	return strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://")
}
