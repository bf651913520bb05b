package migration

import (
	auditdomain "github.com/riparohq/riparo/internal/audit/domain"
	"github.com/riparohq/riparo/internal/config"
	malfunctiondomain "github.com/riparohq/riparo/internal/malfunction/domain"
	productdomain "github.com/riparohq/riparo/internal/product/domain"
	"github.com/riparohq/riparo/internal/seed"
	centerdomain "github.com/riparohq/riparo/internal/servicecenter/domain"
	userdomain "github.com/riparohq/riparo/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType == "sqlite" {
			if err := conn.AutoMigrate(
				&productdomain.Product{},
				&malfunctiondomain.Malfunction{},
				&userdomain.User{},
				&centerdomain.ServiceCenter{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		} else {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
				return err
			}
		}

		if cfg.DBType == "mysql" {
			ensureFullTextIndex(conn, log)
		}

		if err := seed.EnsureAdmin(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData && !cfg.IsProduction() {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)

// MySQL needs a FULLTEXT index for MATCH ... AGAINST. golang-migrate
// sources are dialect-agnostic, so the index is created here and a
// duplicate-index error on restart is ignored.
func ensureFullTextIndex(conn *gorm.DB, log *zap.Logger) {
	err := conn.Exec(
		`CREATE FULLTEXT INDEX ft_malfunctions_search ON malfunctions (title, description, solution)`,
	).Error
	if err != nil {
		log.Debug("fulltext index not created", zap.Error(err))
	}
}
