package authorization

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/riparohq/riparo/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) *ServiceImpl {
	t.Helper()

	dsn := fmt.Sprintf("file:authzdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	return &ServiceImpl{
		db:       db,
		log:      zaptest.NewLogger(t),
		enforcer: enforcer,
	}
}

func caller(level identity.AccessLevel) identity.Caller {
	c := identity.Caller{AccessLevel: level}
	if level != identity.LevelPublic {
		c.UserID = snowflake.ID(int64(level))
	}
	c.Capabilities = identity.CapabilitiesFor(level)
	return c
}

func TestReportActionsByRole(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("PublicSeesSummaryOnly", func(t *testing.T) {
		anon := caller(identity.LevelPublic)
		assert.NoError(t, svc.Authorize(ctx, anon, ObjectReport, ActionReportView))
		assert.ErrorIs(t, svc.Authorize(ctx, anon, ObjectReport, ActionReportTop), ErrForbidden)
	})

	t.Run("TechnicianSeesTopReported", func(t *testing.T) {
		tech := caller(identity.LevelTechnician)
		assert.NoError(t, svc.Authorize(ctx, tech, ObjectReport, ActionReportTop))
	})

	t.Run("AdminInheritsEverything", func(t *testing.T) {
		admin := caller(identity.LevelAdmin)
		assert.NoError(t, svc.Authorize(ctx, admin, ObjectReport, ActionReportView))
		assert.NoError(t, svc.Authorize(ctx, admin, ObjectReport, ActionReportTop))
		assert.NoError(t, svc.Authorize(ctx, admin, ObjectReport, ActionReportViewAdmin))
	})
}

func TestMalfunctionActionsByRole(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("PublicDenied", func(t *testing.T) {
		anon := caller(identity.LevelPublic)
		assert.ErrorIs(t, svc.Authorize(ctx, anon, ObjectMalfunction, ActionMalfunctionView), ErrForbidden)
		assert.ErrorIs(t, svc.Authorize(ctx, anon, ObjectMalfunction, ActionMalfunctionSearch), ErrForbidden)
	})

	t.Run("TechnicianReadsButCannotWrite", func(t *testing.T) {
		tech := caller(identity.LevelTechnician)
		assert.NoError(t, svc.Authorize(ctx, tech, ObjectMalfunction, ActionMalfunctionView))
		assert.NoError(t, svc.Authorize(ctx, tech, ObjectMalfunction, ActionMalfunctionConfirm))
		assert.ErrorIs(t, svc.Authorize(ctx, tech, ObjectMalfunction, ActionMalfunctionCreate), ErrForbidden)
	})

	t.Run("StaffWrites", func(t *testing.T) {
		staff := caller(identity.LevelStaff)
		assert.NoError(t, svc.Authorize(ctx, staff, ObjectMalfunction, ActionMalfunctionCreate))
		assert.NoError(t, svc.Authorize(ctx, staff, ObjectMalfunction, ActionMalfunctionUpdate))
	})
}

func TestAuthorizeRejectsBlankInputs(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := caller(identity.LevelAdmin)

	assert.ErrorIs(t, svc.Authorize(ctx, admin, "  ", ActionReportView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, admin, ObjectReport, ""), ErrInvalidAction)
}
