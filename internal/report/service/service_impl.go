package service

import (
	"context"
	"time"

	"github.com/riparohq/riparo/internal/identity"
	"github.com/riparohq/riparo/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("report.service"),
		repo: p.Repo,
	}
}

func (s *Service) CountByCategory(ctx context.Context, activeOnly bool) map[string]int64 {
	rows, err := s.repo.CountByCategory(ctx, s.db, activeOnly)
	if err != nil {
		s.log.Warn("category aggregation failed", zap.Error(err))
		return map[string]int64{}
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out
}

func (s *Service) CountBySeverity(ctx context.Context) map[string]int64 {
	rows, err := s.repo.CountBySeverity(ctx, s.db)
	if err != nil {
		s.log.Warn("severity aggregation failed", zap.Error(err))
		return map[string]int64{}
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out
}

func (s *Service) CountByAccessLevel(ctx context.Context) map[int]int64 {
	rows, err := s.repo.CountByAccessLevel(ctx, s.db)
	if err != nil {
		s.log.Warn("access level aggregation failed", zap.Error(err))
		return map[int]int64{}
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Level] = row.Count
	}
	return out
}

func (s *Service) CountByProvince(ctx context.Context) map[string]int64 {
	rows, err := s.repo.CountByProvince(ctx, s.db)
	if err != nil {
		s.log.Warn("province aggregation failed", zap.Error(err))
		return map[string]int64{}
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out
}

func (s *Service) TopReported(ctx context.Context, limit int) []domain.TopReported {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	rows, err := s.repo.TopReported(ctx, s.db, limit)
	if err != nil {
		s.log.Warn("top reported aggregation failed", zap.Error(err))
		return []domain.TopReported{}
	}
	return rows
}

// Summary assembles the dashboard snapshot. Sections the caller may
// not see are left nil so they are dropped from the JSON payload.
func (s *Service) Summary(ctx context.Context) *domain.Summary {
	caller := identity.CallerFromContext(ctx)

	out := &domain.Summary{
		ProductsByCategory: s.CountByCategory(ctx, !caller.Capabilities.Has(identity.CapAdmin)),
		GeneratedAt:        time.Now().UTC(),
	}

	total, active, err := s.repo.ProductTotals(ctx, s.db)
	if err != nil {
		s.log.Warn("product totals failed", zap.Error(err))
	} else {
		out.TotalProducts = total
		out.ActiveProducts = active
	}

	if centers, err := s.repo.CenterTotal(ctx, s.db); err != nil {
		s.log.Warn("center total failed", zap.Error(err))
	} else {
		out.TotalCenters = centers
	}

	if caller.Capabilities.Has(identity.CapViewMalfunctions) {
		mTotal, critical, err := s.repo.MalfunctionTotals(ctx, s.db)
		if err != nil {
			s.log.Warn("malfunction totals failed", zap.Error(err))
		} else {
			out.TotalMalfunctions = &mTotal
			out.CriticalMalfunctions = &critical
		}
		out.BySeverity = s.CountBySeverity(ctx)
	}

	if caller.Capabilities.Has(identity.CapAdmin) {
		out.CentersByProvince = s.CountByProvince(ctx)
		out.UsersByAccessLevel = s.CountByAccessLevel(ctx)
	}

	return out
}
