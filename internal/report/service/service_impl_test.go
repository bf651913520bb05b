package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/riparohq/riparo/internal/identity"
	"github.com/riparohq/riparo/internal/report/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reportdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			model TEXT NOT NULL,
			category TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			staff_id BIGINT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE malfunctions (
			id BIGINT PRIMARY KEY,
			product_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			solution TEXT,
			severity TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			estimated_minutes INTEGER,
			report_count INTEGER NOT NULL DEFAULT 1,
			first_reported_at TIMESTAMP NOT NULL,
			last_reported_at TIMESTAMP NOT NULL,
			created_by BIGINT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			surname TEXT NOT NULL,
			username TEXT NOT NULL,
			access_level INTEGER NOT NULL DEFAULT 1,
			center_id BIGINT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE service_centers (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			province TEXT NOT NULL,
			postal_code TEXT NOT NULL,
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

func newTestService(t *testing.T, db *gorm.DB) (*Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	return &Service{
		db:   db,
		log:  zaptest.NewLogger(t),
		repo: repository.Provide(),
	}, node
}

func callerCtx(level identity.AccessLevel) context.Context {
	caller := identity.Caller{
		UserID:       snowflake.ID(1),
		AccessLevel:  level,
		Capabilities: identity.CapabilitiesFor(level),
	}
	return identity.WithCaller(context.Background(), caller)
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, name, category string, active bool) int64 {
	t.Helper()

	id := node.Generate().Int64()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, name, model, category, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, fmt.Sprintf("M-%d", id), category, active, now, now,
	).Error)
	return id
}

func seedMalfunction(t *testing.T, db *gorm.DB, node *snowflake.Node, productID int64, title, severity string, reportCount int, lastReportedAt time.Time) {
	t.Helper()

	id := node.Generate().Int64()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO malfunctions (id, product_id, title, severity, difficulty, report_count, first_reported_at, last_reported_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'media', ?, ?, ?, ?, ?)`,
		id, productID, title, severity, reportCount, lastReportedAt.Add(-time.Hour), lastReportedAt, now, now,
	).Error)
}

func TestCountByCategory(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := context.Background()

	seedProduct(t, db, node, "Lavatrice A", "lavatrice", true)
	seedProduct(t, db, node, "Lavatrice B", "lavatrice", false)
	seedProduct(t, db, node, "Forno A", "forno", true)

	t.Run("ActiveOnly", func(t *testing.T) {
		counts := svc.CountByCategory(ctx, true)
		assert.Equal(t, int64(1), counts["lavatrice"])
		assert.Equal(t, int64(1), counts["forno"])
	})

	t.Run("AllRows", func(t *testing.T) {
		counts := svc.CountByCategory(ctx, false)
		assert.Equal(t, int64(2), counts["lavatrice"])
	})
}

func TestTopReportedOrdering(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	productID := seedProduct(t, db, node, "Lavatrice A", "lavatrice", true)

	seedMalfunction(t, db, node, productID, "perdita acqua", "alta", 9, base)
	seedMalfunction(t, db, node, productID, "non centrifuga", "media", 9, base.Add(2*time.Hour))
	seedMalfunction(t, db, node, productID, "rumore anomalo", "bassa", 3, base)

	top := svc.TopReported(ctx, 2)
	require.Len(t, top, 2)
	// ties on report_count break on most recent report
	assert.Equal(t, "non centrifuga", top[0].Title)
	assert.Equal(t, "perdita acqua", top[1].Title)
	assert.Equal(t, "Lavatrice A", top[0].ProductName)

	t.Run("ZeroLimitUsesDefault", func(t *testing.T) {
		top := svc.TopReported(ctx, 0)
		assert.Len(t, top, 3)
	})
}

func TestSummaryRoleSections(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)

	productID := seedProduct(t, db, node, "Lavatrice A", "lavatrice", true)
	seedProduct(t, db, node, "Forno A", "forno", false)
	seedMalfunction(t, db, node, productID, "perdita acqua", "critica", 4, time.Now().UTC())
	seedMalfunction(t, db, node, productID, "rumore anomalo", "bassa", 1, time.Now().UTC())

	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, name, surname, username, access_level, created_at, updated_at)
		 VALUES (?, 'Ada', 'Rossi', 'ada', 4, ?, ?)`,
		node.Generate().Int64(), now, now,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO service_centers (id, name, address, city, province, postal_code, email, created_at, updated_at)
		 VALUES (?, 'Centro Milano', 'Via Roma 1', 'Milano', 'MI', '20121', 'mi@riparo.local', ?, ?)`,
		node.Generate().Int64(), now, now,
	).Error)

	t.Run("Public", func(t *testing.T) {
		sum := svc.Summary(callerCtx(identity.LevelPublic))
		assert.Equal(t, int64(2), sum.TotalProducts)
		assert.Equal(t, int64(1), sum.ActiveProducts)
		// inactive products stay out of the public category breakdown
		assert.Equal(t, int64(0), sum.ProductsByCategory["forno"])
		assert.Nil(t, sum.TotalMalfunctions)
		assert.Nil(t, sum.BySeverity)
		assert.Nil(t, sum.CentersByProvince)
		assert.Nil(t, sum.UsersByAccessLevel)
	})

	t.Run("Technician", func(t *testing.T) {
		sum := svc.Summary(callerCtx(identity.LevelTechnician))
		require.NotNil(t, sum.TotalMalfunctions)
		assert.Equal(t, int64(2), *sum.TotalMalfunctions)
		require.NotNil(t, sum.CriticalMalfunctions)
		assert.Equal(t, int64(1), *sum.CriticalMalfunctions)
		assert.Equal(t, int64(1), sum.BySeverity["critica"])
		assert.Nil(t, sum.UsersByAccessLevel)
	})

	t.Run("Admin", func(t *testing.T) {
		sum := svc.Summary(callerCtx(identity.LevelAdmin))
		assert.Equal(t, int64(1), sum.ProductsByCategory["forno"])
		assert.Equal(t, int64(1), sum.CentersByProvince["MI"])
		assert.Equal(t, int64(1), sum.UsersByAccessLevel[4])
		assert.Equal(t, int64(1), sum.TotalCenters)
	})
}
