// Package postgres implements the user store against a PostgreSQL table.
// Unlike the document backend, column names are fixed by the embedded
// migration; the configurable field mapping applies to document stores only.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkgdepot/registry-auth/internal/common"
	"github.com/pkgdepot/registry-auth/internal/store"
	"github.com/pkgdepot/registry-auth/internal/store/postgres/migrations"
)

// PostgreSQL error code for unique_violation.
const codeUniqueViolation = "23505"

// Opener opens one database handle per session.
type Opener struct {
	dsn string
}

func NewOpener(dsn string) *Opener {
	return &Opener{dsn: dsn}
}

func (o *Opener) Open(ctx context.Context) (store.Session, error) {
	db, err := sql.Open("pgx", o.dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening store connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to store: %w", err)
	}
	return &session{db: db}, nil
}

// Bootstrap applies the embedded goose migrations, creating the users
// table and its unique username index. The host runs this once at startup
// through the plugin's SetupStore.
func (o *Opener) Bootstrap(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	db, err := sql.Open("pgx", o.dsn)
	if err != nil {
		return fmt.Errorf("error opening store connection: %w", err)
	}
	defer db.Close()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}
	return nil
}

type session struct {
	db *sql.DB
}

func (s *session) FindUser(ctx context.Context, username string) (*store.Record, error) {
	query :=
		`SELECT username, password, usergroups FROM users
		 WHERE username = $1
		 `

	rec := &store.Record{}
	var groups []byte
	err := s.db.QueryRowContext(ctx, query, username).Scan(&rec.Username, &rec.Password, &groups)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error querying store: %w", err)
	}

	if err := json.Unmarshal(groups, &rec.Groups); err != nil {
		return nil, fmt.Errorf("error decoding usergroups: %w", err)
	}

	return rec, nil
}

func (s *session) InsertUser(ctx context.Context, rec *store.Record) error {
	groups, err := json.Marshal(rec.Groups)
	if err != nil {
		return fmt.Errorf("error encoding usergroups: %w", err)
	}

	query :=
		`INSERT INTO users (username, password, usergroups)
		 VALUES ($1, $2, $3)
		 `

	if _, err := s.db.ExecContext(ctx, query, rec.Username, rec.Password, groups); err != nil {
		return translateErr(err)
	}
	return nil
}

func (s *session) Close(context.Context) error {
	return s.db.Close()
}

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return common.ErrorDuplicate
	}
	return fmt.Errorf("error inserting into store: %w", err)
}
