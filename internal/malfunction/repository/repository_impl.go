package repository

import (
	"context"
	"time"

	"github.com/riparohq/riparo/internal/malfunction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, m *domain.Malfunction) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Malfunction, error) {
	var m domain.Malfunction
	err := db.WithContext(ctx).
		Model(&domain.Malfunction{}).
		Where("id = ?", id).
		Limit(1).
		Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.Malfunction, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Malfunction{}).
		Where("product_id = ?", filter.ProductID)

	if filter.Severity != "" {
		stmt = stmt.Where("severity = ?", filter.Severity)
	}
	if filter.Difficulty != "" {
		stmt = stmt.Where("difficulty = ?", filter.Difficulty)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.SortClause != "" {
		stmt = stmt.Order(filter.SortClause)
	}

	var items []domain.Malfunction
	err := stmt.
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Search runs a global match over title, description and solution.
// With FullText set it uses a native MATCH query; callers fall back to
// the LIKE variant when that fails on stores without full-text support.
func (r *repo) Search(ctx context.Context, db *gorm.DB, filter domain.SearchFilter) ([]domain.Malfunction, int64, error) {
	if filter.FullText {
		return r.searchFullText(ctx, db, filter)
	}
	return r.searchLike(ctx, db, filter)
}

func (r *repo) searchFullText(ctx context.Context, db *gorm.DB, filter domain.SearchFilter) ([]domain.Malfunction, int64, error) {
	match := "MATCH(title, description, solution) AGAINST(? IN NATURAL LANGUAGE MODE)"

	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Malfunction{}).
		Where(match, filter.Query).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var items []domain.Malfunction
	err = db.WithContext(ctx).
		Model(&domain.Malfunction{}).
		Where(match, filter.Query).
		Order("report_count DESC, last_reported_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) searchLike(ctx context.Context, db *gorm.DB, filter domain.SearchFilter) ([]domain.Malfunction, int64, error) {
	pattern := "%" + filter.Query + "%"
	if filter.Prefix {
		pattern = filter.Query + "%"
	}

	stmt := db.WithContext(ctx).
		Model(&domain.Malfunction{}).
		Where("title LIKE ? OR description LIKE ? OR solution LIKE ?", pattern, pattern, pattern)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Malfunction
	err := stmt.
		Order("report_count DESC, last_reported_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *domain.Malfunction) error {
	if m == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE malfunctions
		 SET title = ?, description = ?, severity = ?, solution = ?, difficulty = ?,
		     tools_needed = ?, estimated_minutes = ?, modified_by = ?, updated_at = ?
		 WHERE id = ?`,
		m.Title,
		m.Description,
		m.Severity,
		m.Solution,
		m.Difficulty,
		m.ToolsNeeded,
		m.EstimatedMinutes,
		m.ModifiedBy,
		m.UpdatedAt,
		m.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM malfunctions WHERE id = ?`, id,
	).Error
}

// IncrementReportCount bumps the counter in place so concurrent
// confirmations never lose an increment.
func (r *repo) IncrementReportCount(ctx context.Context, db *gorm.DB, id int64, reportedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE malfunctions
		 SET report_count = report_count + 1, last_reported_at = ?, updated_at = ?
		 WHERE id = ?`,
		reportedAt,
		reportedAt,
		id,
	).Error
}
