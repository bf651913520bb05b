package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/riparohq/riparo/internal/servicecenter/domain"
	"github.com/riparohq/riparo/internal/servicecenter/repository"
	userrepo "github.com/riparohq/riparo/internal/user/repository"
	"github.com/riparohq/riparo/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:centerdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	schema := []string{
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
		`CREATE UNIQUE INDEX ux_centers_name ON service_centers (name)`,
		`CREATE UNIQUE INDEX ux_centers_email ON service_centers (email)`,
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
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	return &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		repo:     repository.Provide(),
		userRepo: userrepo.Provide(),
	}
}

func validCreate(name string) domain.CreateRequest {
	return domain.CreateRequest{
		Name:       name,
		Address:    "Via Garibaldi 12",
		City:       "Milano",
		Province:   "mi",
		PostalCode: "20121",
		Phone:      "02 1234567",
		Email:      fmt.Sprintf("%s@riparo.local", name),
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	t.Run("NormalizesProvinceAndEmail", func(t *testing.T) {
		req := validCreate("centro-milano")
		req.Email = "Info@Riparo.LOCAL"
		resp, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "MI", resp.Province)
		assert.Equal(t, "info@riparo.local", resp.Email)
	})

	t.Run("EmptyName", func(t *testing.T) {
		req := validCreate("   ")
		req.Name = "   "
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("BadProvince", func(t *testing.T) {
		req := validCreate("centro-a")
		req.Province = "MIL"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidProvince)
	})

	t.Run("BadPostalCode", func(t *testing.T) {
		req := validCreate("centro-b")
		req.PostalCode = "2012"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidPostalCode)
	})

	t.Run("BadEmail", func(t *testing.T) {
		req := validCreate("centro-c")
		req.Email = "not-an-email"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		req := validCreate("centro-milano")
		req.Email = "other@riparo.local"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrCenterExists)
	})
}

func TestDeleteBlockedByTechnicians(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("centro-torino"))
	require.NoError(t, err)

	centerID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	techID := svc.genID.Generate().Int64()
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, name, surname, username, access_level, center_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		techID, "Luca", "Verdi", "luca.verdi", 2, centerID.Int64(), now, now,
	).Error)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrHasTechnicians)

	require.NoError(t, db.Exec(`UPDATE users SET center_id = NULL WHERE id = ?`, techID).Error)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetIncludesRoster(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("centro-roma"))
	require.NoError(t, err)
	centerID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	spec := "forni"
	for i, name := range []string{"Anna", "Marco"} {
		require.NoError(t, db.Exec(
			`INSERT INTO users (id, name, surname, username, access_level, center_id, specialization, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			svc.genID.Generate().Int64(), name, "Rossi", fmt.Sprintf("tech%d", i), 2, centerID.Int64(), spec, now, now,
		).Error)
	}
	// staff at the same center must not appear in the roster
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, name, surname, username, access_level, center_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.genID.Generate().Int64(), "Sara", "Bianchi", "sara.bianchi", 3, centerID.Int64(), now, now,
	).Error)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Technicians, 2)
	for _, tech := range got.Technicians {
		require.NotNil(t, tech.Specialization)
		assert.Equal(t, "forni", *tech.Specialization)
	}
}

func TestListFiltersAndSort(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	seed := []struct {
		name, city, province string
	}{
		{"assistenza-bergamo", "Bergamo", "BG"},
		{"assistenza-brescia", "Brescia", "BS"},
		{"riparazioni-bergamo", "Bergamo", "BG"},
	}
	for _, c := range seed {
		req := validCreate(c.name)
		req.City = c.city
		req.Province = c.province
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	t.Run("ByProvince", func(t *testing.T) {
		resp, err := svc.List(ctx, domain.ListRequest{Province: "bg"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("PrefixSearch", func(t *testing.T) {
		resp, err := svc.List(ctx, domain.ListRequest{Search: "assistenza*"})
		require.NoError(t, err)
		require.Equal(t, int64(2), resp.Total)
		for _, c := range resp.Centers {
			assert.Contains(t, c.Name, "assistenza")
		}
	})

	t.Run("SubstringSearch", func(t *testing.T) {
		resp, err := svc.List(ctx, domain.ListRequest{Search: "bergamo"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("SortWhitelistFallsBack", func(t *testing.T) {
		bad, err := svc.List(ctx, domain.ListRequest{SortBy: "name; DROP TABLE service_centers"})
		require.NoError(t, err)
		byName, err := svc.List(ctx, domain.ListRequest{SortBy: "name", OrderBy: "asc"})
		require.NoError(t, err)
		require.Equal(t, len(byName.Centers), len(bad.Centers))
		for i := range byName.Centers {
			assert.Equal(t, byName.Centers[i].ID, bad.Centers[i].ID)
		}
	})

	t.Run("Pagination", func(t *testing.T) {
		resp, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{Page: 2, PageSize: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Total)
		assert.Len(t, resp.Centers, 1)
		assert.False(t, resp.HasMore)
	})
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("centro-napoli"))
	require.NoError(t, err)

	t.Run("PartialUpdate", func(t *testing.T) {
		city := "Napoli"
		province := "na"
		resp, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, City: &city, Province: &province})
		require.NoError(t, err)
		assert.Equal(t, "Napoli", resp.City)
		assert.Equal(t, "NA", resp.Province)
		assert.Equal(t, created.Name, resp.Name)
	})

	t.Run("InvalidFieldRejected", func(t *testing.T) {
		bad := "123"
		_, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, PostalCode: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidPostalCode)
	})

	t.Run("UnknownID", func(t *testing.T) {
		name := "x"
		_, err := svc.Update(ctx, domain.UpdateRequest{ID: "999999999999999999", Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
