package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/riparohq/riparo/internal/category"
	"github.com/riparohq/riparo/internal/identity"
	"github.com/riparohq/riparo/internal/product/domain"
	"github.com/riparohq/riparo/internal/product/repository"
	"github.com/riparohq/riparo/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:proddb_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		`CREATE UNIQUE INDEX ux_products_model ON products (model)`,
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

func newTestService(t *testing.T, db *gorm.DB) (*Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		repo:     repository.Provide(),
		registry: category.NewStaticRegistry(category.DefaultEntries()),
	}, node
}

func callerCtx(node *snowflake.Node, level identity.AccessLevel) context.Context {
	caller := identity.Caller{
		UserID:       node.Generate(),
		AccessLevel:  level,
		Capabilities: identity.CapabilitiesFor(level),
	}
	return identity.WithCaller(context.Background(), caller)
}

func mustCreate(t *testing.T, svc *Service, ctx context.Context, name, model, cat string) *domain.Response {
	t.Helper()

	resp, err := svc.Create(ctx, domain.CreateRequest{Name: name, Model: model, Category: cat})
	require.NoError(t, err)
	return resp
}

func TestCreateResolvesCategoryAndRejectsDuplicateModel(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := callerCtx(node, identity.LevelAdmin)

	resp := mustCreate(t, svc, ctx, "Lavatrice EW", "EW-7000X", "lavatrice")
	assert.Equal(t, "lavatrice", resp.Category)
	assert.Equal(t, "Lavatrici", resp.CategoryLabel)
	assert.Equal(t, "EW-7000X", resp.Model)

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Clone", Model: "ew-7000x", Category: "forno"})
	assert.ErrorIs(t, err, domain.ErrModelExists)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := callerCtx(node, identity.LevelAdmin)

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "X", Model: "M-1", Category: "astronave"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestSearchPrefixIsSubsetOfSubstring(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := callerCtx(node, identity.LevelAdmin)

	mustCreate(t, svc, ctx, "Lavatrice X", "LAV-X", "lavatrice")
	mustCreate(t, svc, ctx, "Lavastoviglie Y", "LAV-Y", "lavastoviglie")
	mustCreate(t, svc, ctx, "Forno Z", "FRN-Z", "forno")
	mustCreate(t, svc, ctx, "Superlavatrice", "SUP-L", "lavatrice")

	prefix, err := svc.List(ctx, domain.ListRequest{Search: "lav*"})
	require.NoError(t, err)
	substring, err := svc.List(ctx, domain.ListRequest{Search: "lav"})
	require.NoError(t, err)

	prefixNames := map[string]bool{}
	for _, p := range prefix.Products {
		prefixNames[p.Name] = true
	}
	assert.True(t, prefixNames["Lavatrice X"])
	assert.True(t, prefixNames["Lavastoviglie Y"])
	assert.False(t, prefixNames["Forno Z"])
	assert.False(t, prefixNames["Superlavatrice"])

	substringNames := map[string]bool{}
	for _, p := range substring.Products {
		substringNames[p.Name] = true
	}
	for name := range prefixNames {
		assert.True(t, substringNames[name], "prefix match %q missing from substring results", name)
	}
	assert.True(t, substringNames["Superlavatrice"])
}

func TestSortWhitelistFallsBackToDefault(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := callerCtx(node, identity.LevelAdmin)

	mustCreate(t, svc, ctx, "Bravo", "B-1", "forno")
	mustCreate(t, svc, ctx, "Alfa", "A-1", "lavatrice")
	mustCreate(t, svc, ctx, "Carlo", "C-1", "altro")

	invalid, err := svc.List(ctx, domain.ListRequest{SortBy: "1;DROP TABLE products"})
	require.NoError(t, err)
	explicit, err := svc.List(ctx, domain.ListRequest{SortBy: "name", OrderBy: "asc"})
	require.NoError(t, err)

	require.Equal(t, len(explicit.Products), len(invalid.Products))
	for i := range explicit.Products {
		assert.Equal(t, explicit.Products[i].ID, invalid.Products[i].ID)
	}
	assert.Equal(t, "Alfa", invalid.Products[0].Name)
}

func TestRoleGatingOmitsMalfunctionCounts(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	adminCtx := callerCtx(node, identity.LevelAdmin)

	mustCreate(t, svc, adminCtx, "Lavatrice X", "LAV-X", "lavatrice")

	t.Run("PublicSeesNoCounts", func(t *testing.T) {
		resp, err := svc.List(callerCtx(node, identity.LevelPublic), domain.ListRequest{CriticalOnly: true})
		require.NoError(t, err)
		require.Len(t, resp.Products, 1)
		assert.Nil(t, resp.Products[0].MalfunctionCount)
		assert.Nil(t, resp.Products[0].CriticalCount)
	})

	t.Run("TechnicianSeesCounts", func(t *testing.T) {
		resp, err := svc.List(callerCtx(node, identity.LevelTechnician), domain.ListRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Products, 1)
		require.NotNil(t, resp.Products[0].MalfunctionCount)
		assert.Equal(t, int64(0), *resp.Products[0].MalfunctionCount)
	})
}

func TestInactiveHiddenFromNonAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	adminCtx := callerCtx(node, identity.LevelAdmin)

	created := mustCreate(t, svc, adminCtx, "Vecchio Forno", "OLD-1", "forno")
	_, err := svc.SetActive(adminCtx, created.ID, false)
	require.NoError(t, err)

	publicCtx := callerCtx(node, identity.LevelPublic)

	list, err := svc.List(publicCtx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)

	_, err = svc.Get(publicCtx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	adminList, err := svc.List(adminCtx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, adminList.Products, 1)
}

func TestPaginationClampsMalformedValues(t *testing.T) {
	db := setupTestDB(t)
	svc, node := newTestService(t, db)
	ctx := callerCtx(node, identity.LevelAdmin)

	for i := 0; i < 3; i++ {
		mustCreate(t, svc, ctx, fmt.Sprintf("Prodotto %d", i), fmt.Sprintf("MOD-%d", i), "altro")
	}

	resp, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{Page: -5, PageSize: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.PageInfo.Page)
	assert.Equal(t, 15, resp.PageInfo.PageSize)
	assert.Len(t, resp.Products, 3)
}
