package seed

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seeddb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			surname TEXT NOT NULL,
			username TEXT NOT NULL,
			access_level INTEGER NOT NULL DEFAULT 1,
			center_id BIGINT,
			specialization TEXT,
			last_login_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_users_username ON users (username)`,
		`CREATE TABLE service_centers (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			province TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			phone TEXT,
			email TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, EnsureAdmin(db))
	require.NoError(t, EnsureAdmin(db))

	var total int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM users WHERE username = ?`, defaultAdminUsername).Scan(&total).Error)
	assert.Equal(t, int64(1), total)

	var level int
	require.NoError(t, db.Raw(`SELECT access_level FROM users WHERE username = ?`, defaultAdminUsername).Scan(&level).Error)
	assert.Equal(t, 4, level)
}

func TestEnsureDemoData(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, EnsureDemoData(db))
	require.NoError(t, EnsureDemoData(db))

	var centers int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM service_centers`).Scan(&centers).Error)
	assert.Equal(t, int64(2), centers)

	var techCenter *int64
	require.NoError(t, db.Raw(`SELECT center_id FROM users WHERE username = 'tech.demo'`).Scan(&techCenter).Error)
	require.NotNil(t, techCenter)

	var milanoID int64
	require.NoError(t, db.Raw(`SELECT id FROM service_centers WHERE name = 'Centro Assistenza Milano'`).Scan(&milanoID).Error)
	assert.Equal(t, milanoID, *techCenter)

	var staff int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM users WHERE username = 'staff.demo' AND access_level = 3`).Scan(&staff).Error)
	assert.Equal(t, int64(1), staff)
}
