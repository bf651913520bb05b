package repository

import (
	"context"

	"github.com/riparohq/riparo/internal/servicecenter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, center *domain.ServiceCenter) error {
	return db.WithContext(ctx).Create(center).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ServiceCenter, error) {
	var c domain.ServiceCenter
	err := db.WithContext(ctx).
		Model(&domain.ServiceCenter{}).
		Where("id = ?", id).
		Limit(1).
		Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.ServiceCenter, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.ServiceCenter{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		if filter.SearchPrefix {
			pattern = filter.Search + "%"
		}
		stmt = stmt.Where("name LIKE ? OR city LIKE ?", pattern, pattern)
	}
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.Province != "" {
		stmt = stmt.Where("province = ?", filter.Province)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.SortClause != "" {
		stmt = stmt.Order(filter.SortClause)
	}

	var items []domain.ServiceCenter
	err := stmt.
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, center *domain.ServiceCenter) error {
	if center == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE service_centers
		 SET name = ?, address = ?, city = ?, province = ?, postal_code = ?, phone = ?, email = ?, updated_at = ?
		 WHERE id = ?`,
		center.Name,
		center.Address,
		center.City,
		center.Province,
		center.PostalCode,
		center.Phone,
		center.Email,
		center.UpdatedAt,
		center.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM service_centers WHERE id = ?`, id,
	).Error
}

func (r *repo) TechnicianCount(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Table("users").
		Where("access_level = ? AND center_id = ?", 2, id).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
