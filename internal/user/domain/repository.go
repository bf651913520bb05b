package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	TechniciansOfCenter(ctx context.Context, db *gorm.DB, centerID int64) ([]User, error)
	TouchLastLogin(ctx context.Context, db *gorm.DB, id int64) error
}
