package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

func TestDialector(t *testing.T) {
	for _, engine := range []string{config.DBEngineMySQL, config.DBEnginePostgres, config.DBEngineSQLite} {
		d, err := Dialector(&config.DB{Engine: engine, Host: "localhost", Port: 1})
		require.NoError(t, err, engine)
		assert.NotNil(t, d)
	}

	_, err := Dialector(&config.DB{Engine: "oracle"})
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := config.Config{DB: config.DB{Engine: config.DBEngineSQLite, Path: filepath.Join(t.TempDir(), "cms.db")}}

	db, err := Open(&cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Ping(db))

	require.NoError(t, db.Create(&models.Setting{Name: "x", Value: []byte("{}")}).Error)

	var n int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
