package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Filter is the normalized list query.
type Filter struct {
	ProductID  int64
	Severity   string
	Difficulty string
	SortClause string
	Offset     int
	Limit      int
}

// SearchFilter is the normalized global search query. FullText asks for
// a native full-text match; the repository reports ErrFullTextUnavailable
// style failures via error so the service can retry with LIKE.
type SearchFilter struct {
	Query    string
	Prefix   bool
	FullText bool
	Offset   int
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, m *Malfunction) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Malfunction, error)
	List(ctx context.Context, db *gorm.DB, filter Filter) ([]Malfunction, int64, error)
	Search(ctx context.Context, db *gorm.DB, filter SearchFilter) ([]Malfunction, int64, error)
	Update(ctx context.Context, db *gorm.DB, m *Malfunction) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	IncrementReportCount(ctx context.Context, db *gorm.DB, id int64, reportedAt time.Time) error
}
