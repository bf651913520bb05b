package domain

import (
	"context"

	"gorm.io/gorm"
)

// Filter is the normalized, capability-checked query the repository
// executes. Construction happens in the service; the repository applies
// the steps in fixed order: visibility, search, category, assignment,
// criticality, counts, sort, pagination.
type Filter struct {
	Search           string
	SearchPrefix     bool
	SearchCategories bool
	Category         string
	Active           *bool
	Unassigned       bool
	StaffID          *int64
	CriticalOnly     bool
	WithCounts       bool
	SortClause       string
	Offset           int
	Limit            int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindByModel(ctx context.Context, db *gorm.DB, model string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter Filter) ([]Row, int64, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	CountsFor(ctx context.Context, db *gorm.DB, id int64) (malfunctions int64, critical int64, err error)
}
