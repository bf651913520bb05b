package category

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InUseEntry is a category actually present in the product table,
// with the number of matching product rows.
type InUseEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Registry *Registry
}

// Service answers category questions that need the product store.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	registry *Registry
}

func NewService(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("category.service"),
		registry: p.Registry,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// InUse returns the categories present in the product table with row
// counts, in canonical display order; present-but-unregistered keys are
// appended alphabetically with fallback labels.
func (s *Service) InUse(ctx context.Context, activeOnly bool) ([]InUseEntry, error) {
	type row struct {
		Category string
		Total    int64
	}

	stmt := s.db.WithContext(ctx).
		Table("products").
		Select("category, COUNT(*) AS total").
		Group("category")
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}

	var rows []row
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		key := strings.TrimSpace(r.Category)
		if key == "" {
			continue
		}
		counts[key] += r.Total
	}

	out := make([]InUseEntry, 0, len(counts))
	for _, entry := range s.registry.All() {
		if total, ok := counts[entry.Key]; ok {
			out = append(out, InUseEntry{Key: entry.Key, Label: entry.Label, Count: total})
			delete(counts, entry.Key)
		}
	}

	unknown := make([]string, 0, len(counts))
	for key := range counts {
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		out = append(out, InUseEntry{Key: key, Label: FallbackLabel(key), Count: counts[key]})
	}

	return out, nil
}
