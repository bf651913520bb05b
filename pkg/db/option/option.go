package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Option mutates a query statement.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortBy struct {
	clause string
}

func (o sortBy) Apply(stmt *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders by a pre-validated clause.
func WithSortBy(clause string) Option {
	return sortBy{clause: clause}
}

// WithQuerySortBy validates a caller-supplied sort field against a
// whitelist and returns the order clause. Unknown fields fall back to
// the first allowed=true key encountered via defaultField; directions
// other than desc fall back to asc. It never errors.
func WithQuerySortBy(field, direction string, allowed map[string]bool, defaultField string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	if !allowed[field] {
		field = defaultField
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "desc" {
		direction = "asc"
	}
	if field == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", field, direction)
}
