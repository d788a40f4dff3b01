package sqliteutil

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
create table if not exists kv (
	key text primary key,
	value text not null
);`

func TestOpenFileAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := Config{File: path}.OpenDB()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, testSchema))
	// idempotent
	require.NoError(t, Migrate(ctx, db, testSchema))

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "insert into kv(key, value) values ('a', '1')")
		return err
	})
	require.NoError(t, err)

	failure := errors.New("abort")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "insert into kv(key, value) values ('b', '2')")
		require.NoError(t, err)
		return failure
	})
	require.ErrorIs(t, err, failure)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "select count(*) from kv").Scan(&count))
	require.Equal(t, 1, count)
}

func TestConfigWithoutTarget(t *testing.T) {
	require.False(t, Config{}.Enabled())
	_, err := Config{}.OpenDB()
	require.Error(t, err)
}
