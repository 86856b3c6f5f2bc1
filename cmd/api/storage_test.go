package main

import (
	"context"
	"path/filepath"
	"testing"

	"converter-service/internal/adapter/prefs"
	"converter-service/internal/adapter/sqlite"
	"converter-service/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_SQLiteKeepsPreferencesInFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{}
	cfg.Storage.Driver = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "exchange_rates.sqlite3")

	backend, err := openStorage(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer backend.close()

	assert.IsType(t, &sqlite.SQLiteRepo{}, backend.tables)
	assert.IsType(t, &sqlite.PreferencesRepo{}, backend.preferences)

	preferences, closePrefs, err := openPreferences(context.Background(), config.RedisConfig{}, backend.preferences, logger)
	require.NoError(t, err)
	defer closePrefs()
	assert.Same(t, backend.preferences, preferences)
}

func TestOpenStorage_UnsupportedDriver(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{}
	cfg.Storage.Driver = "mongodb"

	_, err := openStorage(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpenPreferences_Redis(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := miniredis.RunT(t)

	preferences, closePrefs, err := openPreferences(context.Background(), config.RedisConfig{Addr: srv.Addr(), Prefix: "converter:"}, prefs.NewMemory(), logger)
	require.NoError(t, err)
	defer closePrefs()

	assert.IsType(t, &prefs.Redis{}, preferences)
}
