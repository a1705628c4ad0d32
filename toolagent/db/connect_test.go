package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectToDB_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "documents.db")

	db, err := ConnectToDB(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)

	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'embeddings_collection_data'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "embeddings_collection_data", name)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.db")

	db, err := ConnectToDB(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, Migrate(ctx, db))
}
