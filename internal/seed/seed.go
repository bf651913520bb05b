package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/riparohq/riparo/internal/identity"
	centerdomain "github.com/riparohq/riparo/internal/servicecenter/domain"
	userdomain "github.com/riparohq/riparo/internal/user/domain"
	userrepo "github.com/riparohq/riparo/internal/user/repository"
	"gorm.io/gorm"
)

var users = userrepo.Provide()

const (
	defaultAdminUsername = "admin"
	defaultAdminName     = "Riparo"
	defaultAdminSurname  = "Admin"
)

// EnsureAdmin seeds the default admin account so a fresh install is
// usable without manual user provisioning.
func EnsureAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureUserTx(ctx, tx, node, defaultAdminUsername, defaultAdminName, defaultAdminSurname, int(identity.LevelAdmin), nil)
		return err
	})
}

// EnsureDemoData seeds a small fixture set for local development: a
// staff account, two service centers and a technician bound to the
// first one. Production startup never calls this.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUserTx(ctx, tx, node, "staff.demo", "Sara", "Bianchi", int(identity.LevelStaff), nil); err != nil {
			return err
		}

		milano, err := ensureCenterTx(ctx, tx, node, centerdomain.ServiceCenter{
			Name:       "Centro Assistenza Milano",
			Address:    "Via Roma 1",
			City:       "Milano",
			Province:   "MI",
			PostalCode: "20121",
			Email:      "milano@riparo.local",
		})
		if err != nil {
			return err
		}
		if _, err := ensureCenterTx(ctx, tx, node, centerdomain.ServiceCenter{
			Name:       "Centro Assistenza Torino",
			Address:    "Corso Francia 10",
			City:       "Torino",
			Province:   "TO",
			PostalCode: "10138",
			Email:      "torino@riparo.local",
		}); err != nil {
			return err
		}

		spec := "lavatrici"
		tech, err := ensureUserTx(ctx, tx, node, "tech.demo", "Luca", "Verdi", int(identity.LevelTechnician), &spec)
		if err != nil {
			return err
		}
		if tech.CenterID == nil {
			return tx.WithContext(ctx).Exec(
				`UPDATE users SET center_id = ?, updated_at = ? WHERE id = ?`,
				milano.ID, time.Now().UTC(), tech.ID,
			).Error
		}
		return nil
	})
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, username, name, surname string, level int, specialization *string) (*userdomain.User, error) {
	existing, err := users.FindByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	user := userdomain.User{
		ID:             node.Generate().Int64(),
		Name:           name,
		Surname:        surname,
		Username:       username,
		AccessLevel:    level,
		Specialization: specialization,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureCenterTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, center centerdomain.ServiceCenter) (*centerdomain.ServiceCenter, error) {
	var existing centerdomain.ServiceCenter
	err := tx.WithContext(ctx).
		Model(&centerdomain.ServiceCenter{}).
		Where("name = ?", center.Name).
		Limit(1).
		Scan(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	now := time.Now().UTC()
	center.ID = node.Generate().Int64()
	center.CreatedAt = now
	center.UpdatedAt = now
	if err := tx.WithContext(ctx).Create(&center).Error; err != nil {
		return nil, err
	}
	return &center, nil
}
