package repository

import (
	"context"

	"github.com/riparohq/riparo/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CountByCategory(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.CountRow, error) {
	query := `SELECT category AS bucket, COUNT(*) AS count FROM products`
	if activeOnly {
		query += ` WHERE active = ?`
	}
	query += ` GROUP BY category ORDER BY count DESC`

	var rows []domain.CountRow
	tx := db.WithContext(ctx)
	var err error
	if activeOnly {
		err = tx.Raw(query, true).Scan(&rows).Error
	} else {
		err = tx.Raw(query).Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CountBySeverity(ctx context.Context, db *gorm.DB) ([]domain.CountRow, error) {
	var rows []domain.CountRow
	err := db.WithContext(ctx).Raw(
		`SELECT severity AS bucket, COUNT(*) AS count
		 FROM malfunctions GROUP BY severity`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CountByAccessLevel(ctx context.Context, db *gorm.DB) ([]domain.LevelCountRow, error) {
	var rows []domain.LevelCountRow
	err := db.WithContext(ctx).Raw(
		`SELECT access_level AS level, COUNT(*) AS count
		 FROM users GROUP BY access_level ORDER BY access_level ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CountByProvince(ctx context.Context, db *gorm.DB) ([]domain.CountRow, error) {
	var rows []domain.CountRow
	err := db.WithContext(ctx).Raw(
		`SELECT province AS bucket, COUNT(*) AS count
		 FROM service_centers GROUP BY province ORDER BY count DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) TopReported(ctx context.Context, db *gorm.DB, limit int) ([]domain.TopReported, error) {
	var rows []domain.TopReported
	err := db.WithContext(ctx).Raw(
		`SELECT m.id, m.product_id, p.name AS product_name, m.title, m.severity,
		        m.report_count, m.last_reported_at
		 FROM malfunctions m
		 JOIN products p ON p.id = m.product_id
		 ORDER BY m.report_count DESC, m.last_reported_at DESC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ProductTotals(ctx context.Context, db *gorm.DB) (int64, int64, error) {
	var row struct {
		Total  int64 `gorm:"column:total"`
		Active int64 `gorm:"column:active"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN active = ? THEN 1 ELSE 0 END), 0) AS active
		 FROM products`,
		true,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Active, nil
}

func (r *repo) MalfunctionTotals(ctx context.Context, db *gorm.DB) (int64, int64, error) {
	var row struct {
		Total    int64 `gorm:"column:total"`
		Critical int64 `gorm:"column:critical"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN severity = 'critica' THEN 1 ELSE 0 END), 0) AS critical
		 FROM malfunctions`,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Critical, nil
}

func (r *repo) CenterTotal(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Table("service_centers").
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
