package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, Validate())
}

func TestValidateFSRejectsBadFiles(t *testing.T) {
	badName := fstest.MapFS{"m/create.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}}
	assert.Error(t, ValidateFS(badName, "m"))

	missingDown := fstest.MapFS{"m/20250101000000_x.sql": {Data: []byte("-- +goose Up\n")}}
	assert.Error(t, ValidateFS(missingDown, "m"))

	dup := fstest.MapFS{
		"m/20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"m/20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	assert.Error(t, ValidateFS(dup, "m"))

	assert.Error(t, ValidateFS(fstest.MapFS{"m/readme.md": {Data: []byte("x")}}, "m"))
}

func TestDialect(t *testing.T) {
	d, err := Dialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	d, err = Dialect("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	_, err = Dialect("mysql")
	assert.Error(t, err)
}

func TestUpCreatesTablesOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Up(context.Background(), sqlDB, "sqlite"))

	assert.True(t, conn.Migrator().HasTable("orders"))
	assert.True(t, conn.Migrator().HasTable("products"))

	// idempotent
	require.NoError(t, Up(context.Background(), sqlDB, "sqlite"))
}
