package repository

import (
	"context"
	"strings"

	"github.com/riparohq/riparo/internal/product/domain"
	"gorm.io/gorm"
)

const countsSelect = `products.*,
	(SELECT COUNT(*) FROM malfunctions m WHERE m.product_id = products.id) AS malfunction_count,
	(SELECT COUNT(*) FROM malfunctions m WHERE m.product_id = products.id AND m.severity = 'critica') AS critical_count`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Limit(1).
		Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByModel(ctx context.Context, db *gorm.DB, model string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("model = ?", strings.TrimSpace(model)).
		Limit(1).
		Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

// List executes the filter pipeline. Step order is fixed: visibility,
// search, category, assignment, criticality, counts, sort, pagination.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.Row, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		if filter.SearchPrefix {
			pattern = filter.Search + "%"
		}
		if filter.SearchCategories {
			stmt = stmt.Where(
				"name LIKE ? OR model LIKE ? OR description LIKE ? OR category LIKE ?",
				pattern, pattern, pattern, pattern,
			)
		} else {
			stmt = stmt.Where(
				"name LIKE ? OR model LIKE ? OR description LIKE ?",
				pattern, pattern, pattern,
			)
		}
	}

	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}

	if filter.Unassigned {
		stmt = stmt.Where("staff_id IS NULL")
	} else if filter.StaffID != nil {
		stmt = stmt.Where("staff_id = ?", *filter.StaffID)
	}

	if filter.CriticalOnly {
		stmt = stmt.Where("EXISTS (SELECT 1 FROM malfunctions m WHERE m.product_id = products.id AND m.severity = 'critica')")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithCounts {
		stmt = stmt.Select(countsSelect)
	} else {
		stmt = stmt.Select("products.*")
	}

	if filter.SortClause != "" {
		stmt = stmt.Order(filter.SortClause)
	}

	var rows []domain.Row
	err := stmt.
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, description = ?, category = ?, price = ?, photo = ?, active = ?,
		     technical_notes = ?, installation_notes = ?, usage_notes = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.Photo,
		product.Active,
		product.TechnicalNotes,
		product.InstallationNotes,
		product.UsageNotes,
		product.UpdatedAt,
		product.ID,
	).Error
}

// Delete removes the product and its malfunctions. Callers run it
// inside a transaction.
func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM malfunctions WHERE product_id = ?`, id,
	).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE id = ?`, id,
	).Error
}

func (r *repo) CountsFor(ctx context.Context, db *gorm.DB, id int64) (int64, int64, error) {
	var row struct {
		MalfunctionCount int64
		CriticalCount    int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COUNT(*) FROM malfunctions m WHERE m.product_id = ?) AS malfunction_count,
			(SELECT COUNT(*) FROM malfunctions m WHERE m.product_id = ? AND m.severity = 'critica') AS critical_count`,
		id, id,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.MalfunctionCount, row.CriticalCount, nil
}
