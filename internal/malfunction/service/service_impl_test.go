package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/riparohq/riparo/internal/clock"
	"github.com/riparohq/riparo/internal/identity"
	"github.com/riparohq/riparo/internal/malfunction/domain"
	"github.com/riparohq/riparo/internal/malfunction/repository"
	productrepo "github.com/riparohq/riparo/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:malfdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			model TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			price NUMERIC,
			photo TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			staff_id BIGINT,
			technical_notes TEXT,
			installation_notes TEXT,
			usage_notes TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE malfunctions (
			id BIGINT PRIMARY KEY,
			product_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			severity TEXT NOT NULL,
			solution TEXT,
			difficulty TEXT NOT NULL DEFAULT 'media',
			tools_needed TEXT,
			estimated_minutes INTEGER,
			report_count INTEGER NOT NULL DEFAULT 1,
			first_reported_at TIMESTAMP NOT NULL,
			last_reported_at TIMESTAMP NOT NULL,
			created_by BIGINT NOT NULL,
			modified_by BIGINT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) (*Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Service{
		db:          db,
		log:         zaptest.NewLogger(t),
		genID:       node,
		clock:       clk,
		repo:        repository.Provide(),
		productRepo: productrepo.Provide(),
	}, node
}

func callerCtx(id snowflake.ID, level identity.AccessLevel) context.Context {
	caller := identity.Caller{
		UserID:       id,
		AccessLevel:  level,
		Capabilities: identity.CapabilitiesFor(level),
	}
	return identity.WithCaller(context.Background(), caller)
}

func seedOwnedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, staffID *snowflake.ID) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	var staff *int64
	if staffID != nil {
		v := staffID.Int64()
		staff = &v
	}
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, name, model, category, active, staff_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.Int64(), "Lavatrice X", fmt.Sprintf("LAV-%d", id.Int64()), "lavatrice", true, staff, now, now,
	).Error)
	return id
}

func TestOwnershipRuleOnUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db, nil)

	owner := node.Generate()
	other := node.Generate()
	productID := seedOwnedProduct(t, db, node, &owner)

	created, err := svc.Create(callerCtx(owner, identity.LevelStaff), domain.CreateRequest{
		ProductID: productID.String(),
		Title:     "Perdita acqua",
		Severity:  domain.SeverityHigh,
	})
	require.NoError(t, err)

	newTitle := "Perdita acqua dal cestello"

	t.Run("OtherStaffRejected", func(t *testing.T) {
		_, err := svc.Update(callerCtx(other, identity.LevelStaff), domain.UpdateRequest{
			ID:    created.ID,
			Title: &newTitle,
		})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("AdminBypasses", func(t *testing.T) {
		resp, err := svc.Update(callerCtx(other, identity.LevelAdmin), domain.UpdateRequest{
			ID:    created.ID,
			Title: &newTitle,
		})
		require.NoError(t, err)
		assert.Equal(t, newTitle, resp.Title)
	})
}

func TestConfirmBumpsReportCountMonotonically(t *testing.T) {
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)

	staff := node.Generate()
	productID := seedOwnedProduct(t, db, node, &staff)

	created, err := svc.Create(callerCtx(staff, identity.LevelStaff), domain.CreateRequest{
		ProductID: productID.String(),
		Title:     "Non centrifuga",
		Severity:  domain.SeverityMedium,
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.ReportCount)

	techCtx := callerCtx(node.Generate(), identity.LevelTechnician)

	clk.Advance(48 * time.Hour)
	first, err := svc.Confirm(techCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.ReportCount)
	assert.True(t, first.LastReportedAt.After(created.LastReportedAt))

	clk.Advance(time.Hour)
	second, err := svc.Confirm(techCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, second.ReportCount)
	assert.True(t, second.LastReportedAt.After(first.LastReportedAt))
	assert.Equal(t, created.FirstReportedAt, second.FirstReportedAt)
}

func TestCreateValidatesEnums(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db, nil)

	staff := node.Generate()
	productID := seedOwnedProduct(t, db, node, &staff)
	ctx := callerCtx(staff, identity.LevelStaff)

	_, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: productID.String(),
		Title:     "Guasto",
		Severity:  "catastrofica",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSeverity)

	bad := "impossibile"
	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID:  productID.String(),
		Title:      "Guasto",
		Severity:   domain.SeverityLow,
		Difficulty: bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)

	resp, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: productID.String(),
		Title:     "Guasto",
		Severity:  domain.SeverityLow,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyMedium, resp.Difficulty)
}

func TestSearchFallsBackToLike(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db, nil)

	staff := node.Generate()
	productID := seedOwnedProduct(t, db, node, &staff)
	ctx := callerCtx(staff, identity.LevelStaff)

	for i, title := range []string{"Rumore forte in centrifuga", "Rumore lieve", "Non si accende"} {
		_, err := svc.Create(ctx, domain.CreateRequest{
			ProductID: productID.String(),
			Title:     title,
			Severity:  domain.SeverityMedium,
		})
		require.NoError(t, err, "seed %d", i)
	}

	t.Run("Substring", func(t *testing.T) {
		resp, err := svc.Search(ctx, domain.SearchRequest{Query: "rumore"})
		require.NoError(t, err)
		assert.Len(t, resp.Malfunctions, 2)
	})

	t.Run("PrefixSubsetOfSubstring", func(t *testing.T) {
		prefix, err := svc.Search(ctx, domain.SearchRequest{Query: "rumore f*"})
		require.NoError(t, err)
		require.Len(t, prefix.Malfunctions, 1)
		assert.Equal(t, "Rumore forte in centrifuga", prefix.Malfunctions[0].Title)
	})

	t.Run("EmptyQueryRejected", func(t *testing.T) {
		_, err := svc.Search(ctx, domain.SearchRequest{Query: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})
}

func TestListByProductOrdersBySeverityRank(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db, nil)

	staff := node.Generate()
	productID := seedOwnedProduct(t, db, node, &staff)
	ctx := callerCtx(staff, identity.LevelStaff)

	for _, severity := range []string{domain.SeverityMedium, domain.SeverityCritical, domain.SeverityLow} {
		_, err := svc.Create(ctx, domain.CreateRequest{
			ProductID: productID.String(),
			Title:     "Guasto " + severity,
			Severity:  severity,
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListByProduct(ctx, domain.ListRequest{
		ProductID: productID.String(),
		SortBy:    "severity",
		OrderBy:   "desc",
	})
	require.NoError(t, err)
	require.Len(t, resp.Malfunctions, 3)
	assert.Equal(t, domain.SeverityCritical, resp.Malfunctions[0].Severity)
	assert.Equal(t, domain.SeverityLow, resp.Malfunctions[2].Severity)
}
