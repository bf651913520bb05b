package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Service produces aggregate views over the catalog. Reads are
// fail-soft: a failed query degrades to an empty result with a logged
// warning instead of failing the caller.
type Service interface {
	CountByCategory(ctx context.Context, activeOnly bool) map[string]int64
	CountBySeverity(ctx context.Context) map[string]int64
	CountByAccessLevel(ctx context.Context) map[int]int64
	CountByProvince(ctx context.Context) map[string]int64
	TopReported(ctx context.Context, limit int) []TopReported
	Summary(ctx context.Context) *Summary
}

// TopReported is a malfunction ranked by how often technicians have
// confirmed it in the field.
type TopReported struct {
	MalfunctionID  int64     `json:"-" gorm:"column:id"`
	ProductID      int64     `json:"-" gorm:"column:product_id"`
	ProductName    string    `json:"product_name"`
	Title          string    `json:"title"`
	Severity       string    `json:"severity"`
	ReportCount    int       `json:"report_count"`
	LastReportedAt time.Time `json:"last_reported_at"`
}

// Summary is the dashboard snapshot. Malfunction figures are filled
// only for callers allowed to see them.
type Summary struct {
	TotalProducts        int64            `json:"total_products"`
	ActiveProducts       int64            `json:"active_products"`
	ProductsByCategory   map[string]int64 `json:"products_by_category"`
	TotalMalfunctions    *int64           `json:"total_malfunctions,omitempty"`
	CriticalMalfunctions *int64           `json:"critical_malfunctions,omitempty"`
	BySeverity           map[string]int64 `json:"malfunctions_by_severity,omitempty"`
	TotalCenters         int64            `json:"total_centers"`
	CentersByProvince    map[string]int64 `json:"centers_by_province,omitempty"`
	UsersByAccessLevel   map[int]int64    `json:"users_by_access_level,omitempty"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

type CountRow struct {
	Key   string `gorm:"column:bucket"`
	Count int64  `gorm:"column:count"`
}

type LevelCountRow struct {
	Level int   `gorm:"column:level"`
	Count int64 `gorm:"column:count"`
}

type Repository interface {
	CountByCategory(ctx context.Context, db *gorm.DB, activeOnly bool) ([]CountRow, error)
	CountBySeverity(ctx context.Context, db *gorm.DB) ([]CountRow, error)
	CountByAccessLevel(ctx context.Context, db *gorm.DB) ([]LevelCountRow, error)
	CountByProvince(ctx context.Context, db *gorm.DB) ([]CountRow, error)
	TopReported(ctx context.Context, db *gorm.DB, limit int) ([]TopReported, error)
	ProductTotals(ctx context.Context, db *gorm.DB) (total int64, active int64, err error)
	MalfunctionTotals(ctx context.Context, db *gorm.DB) (total int64, critical int64, err error)
	CenterTotal(ctx context.Context, db *gorm.DB) (int64, error)
}
