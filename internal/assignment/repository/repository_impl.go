package repository

import (
	"context"

	"github.com/riparohq/riparo/internal/assignment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) SetProductStaff(ctx context.Context, db *gorm.DB, productID int64, staffID *int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET staff_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		staffID, productID,
	).Error
}

func (r *repo) SetUserCenter(ctx context.Context, db *gorm.DB, userID int64, centerID *int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET center_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		centerID, userID,
	).Error
}

func (r *repo) UnassignedProducts(ctx context.Context, db *gorm.DB) ([]domain.UnassignedProduct, error) {
	var items []domain.UnassignedProduct
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, model, category, created_at
		 FROM products
		 WHERE staff_id IS NULL AND active = ?
		 ORDER BY name ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UnassignedTechnicians(ctx context.Context, db *gorm.DB) ([]domain.TechnicianSummary, error) {
	var items []domain.TechnicianSummary
	err := db.WithContext(ctx).Raw(
		`SELECT u.id, u.name, u.surname, u.specialization, u.center_id, NULL AS center_name
		 FROM users u
		 WHERE u.access_level = 2 AND u.center_id IS NULL
		 ORDER BY u.surname ASC, u.name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AvailableTechnicians(ctx context.Context, db *gorm.DB, excludeCenterID int64) ([]domain.TechnicianSummary, error) {
	var items []domain.TechnicianSummary
	err := db.WithContext(ctx).Raw(
		`SELECT u.id, u.name, u.surname, u.specialization, u.center_id, c.name AS center_name
		 FROM users u
		 LEFT JOIN service_centers c ON c.id = u.center_id
		 WHERE u.access_level = 2 AND (u.center_id IS NULL OR u.center_id <> ?)
		 ORDER BY u.surname ASC, u.name ASC`,
		excludeCenterID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
