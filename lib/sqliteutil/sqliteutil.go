package sqliteutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects either a local sqlite file or a remote libsql database. Url
// takes precedence over File when both are set.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c Config) Enabled() bool {
	return c.File != "" || c.Url != ""
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

func (c Config) OpenDB() (*sql.DB, error) {
	if c.Url != "" {
		return OpenRemote(c.Url, c.AuthToken)
	}
	if c.File == "" {
		return nil, wrapOpenDB(fmt.Errorf("neither a file nor a url was specified"))
	}
	return OpenFile(c.File)
}

// OpenFile opens (creating if needed) a local sqlite database. ":memory:" is
// accepted.
func OpenFile(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// sqlite only tolerates a single writer
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func OpenRemote(rawUrl, authToken string) (*sql.DB, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	if authToken != "" {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
	}
	db, err := sql.Open("libsql", u.String())
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

// Migrate applies an idempotent schema (CREATE ... IF NOT EXISTS statements).
func Migrate(ctx context.Context, db *sql.DB, schema string) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing only when fn succeeds.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = fn(tx)
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			return fmt.Errorf("%w (rollback: %s)", err, rollbackErr.Error())
		}
		return err
	}
	return tx.Commit()
}
