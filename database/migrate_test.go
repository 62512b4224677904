package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestRequireCounterMissing(t *testing.T) {
	db := setupTestDB(t)

	err := RequireCounter(db, models.OrderCounterName)
	assert.ErrorIs(t, err, ErrCounterNotInitialised)
}

func TestEnsureCounterNeverResets(t *testing.T) {
	db := setupTestDB(t)

	counter, err := EnsureCounter(db, models.OrderCounterName, 100)
	require.NoError(t, err)
	assert.Equal(t, uint(100), counter.LastID)

	require.NoError(t, db.Model(&models.Counter{}).
		Where("name = ?", models.OrderCounterName).
		Update("last_id", 142).Error)

	counter, err = EnsureCounter(db, models.OrderCounterName, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(142), counter.LastID)

	assert.NoError(t, RequireCounter(db, models.OrderCounterName))
}
