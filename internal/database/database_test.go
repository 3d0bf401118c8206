package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/config"
	"ledgerbook/internal/models"
)

func TestConfigURLs(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver:   "postgres",
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "ledger",
		DBPassword: "p@ss word",
		DBName:     "books",
		DBSSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5432 user=ledger password=p@ss word dbname=books sslmode=disable", cfg.DSN())
	assert.True(t, strings.HasPrefix(cfg.URL(), "postgres://ledger:"))
	assert.Contains(t, cfg.URL(), "@db:5432/books?sslmode=disable")
	assert.NotContains(t, cfg.URL(), "p@ss word")
	assert.Equal(t, "file://migrations", cfg.SourceURL())
}

func TestNewManagerRejectsUnknownDriver(t *testing.T) {
	_, err := NewManager(&Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSQLiteManager(t *testing.T) {
	m, err := NewManager(&Config{Driver: DriverSQLite, Path: "file:dbtest?mode=memory&cache=shared"})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RunMigrations())
	require.NoError(t, m.Ping(context.Background()))

	for _, model := range models.All() {
		assert.True(t, m.DB().Migrator().HasTable(model), "missing table for %T", model)
	}
}
