package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/riparohq/riparo/internal/clock"
	"github.com/riparohq/riparo/internal/identity"
	"github.com/riparohq/riparo/internal/malfunction/domain"
	productdomain "github.com/riparohq/riparo/internal/product/domain"
	pkgdb "github.com/riparohq/riparo/pkg/db"
	"github.com/riparohq/riparo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const severityRankSQL = `CASE severity WHEN 'bassa' THEN 1 WHEN 'media' THEN 2 WHEN 'alta' THEN 3 WHEN 'critica' THEN 4 ELSE 0 END`
const difficultyRankSQL = `CASE difficulty WHEN 'facile' THEN 1 WHEN 'media' THEN 2 WHEN 'difficile' THEN 3 WHEN 'esperto' THEN 4 ELSE 0 END`

// Sortable fields map to their order expressions; severity and
// difficulty order by enum rank, not lexicographically.
var sortFields = map[string]string{
	"severity":         severityRankSQL,
	"gravita":          severityRankSQL,
	"difficulty":       difficultyRankSQL,
	"difficolta":       difficultyRankSQL,
	"report_count":     "report_count",
	"last_reported_at": "last_reported_at",
	"created_at":       "created_at",
}

const defaultSortField = "created_at"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("malfunction.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	if err := s.checkOwnership(ctx, product); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	severity := strings.ToLower(strings.TrimSpace(req.Severity))
	if !domain.ValidSeverity(severity) {
		return nil, domain.ErrInvalidSeverity
	}

	difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	if !domain.ValidDifficulty(difficulty) {
		return nil, domain.ErrInvalidDifficulty
	}

	if req.EstimatedMinutes != nil && *req.EstimatedMinutes <= 0 {
		return nil, domain.ErrInvalidEstimate
	}

	caller := identity.CallerFromContext(ctx)
	now := s.clock.Now()
	m := &domain.Malfunction{
		ID:               s.genID.Generate().Int64(),
		ProductID:        productID,
		Title:            title,
		Description:      strings.TrimSpace(req.Description),
		Severity:         severity,
		Solution:         strings.TrimSpace(req.Solution),
		Difficulty:       difficulty,
		ToolsNeeded:      req.ToolsNeeded,
		EstimatedMinutes: req.EstimatedMinutes,
		ReportCount:      1,
		FirstReportedAt:  now,
		LastReportedAt:   now,
		CreatedBy:        caller.UserID.Int64(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, s.db, m); err != nil {
		return nil, err
	}

	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	item, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Severity != nil {
		severity := strings.ToLower(strings.TrimSpace(*req.Severity))
		if !domain.ValidSeverity(severity) {
			return nil, domain.ErrInvalidSeverity
		}
		item.Severity = severity
	}
	if req.Solution != nil {
		item.Solution = strings.TrimSpace(*req.Solution)
	}
	if req.Difficulty != nil {
		difficulty := strings.ToLower(strings.TrimSpace(*req.Difficulty))
		if !domain.ValidDifficulty(difficulty) {
			return nil, domain.ErrInvalidDifficulty
		}
		item.Difficulty = difficulty
	}
	if req.ToolsNeeded != nil {
		item.ToolsNeeded = req.ToolsNeeded
	}
	if req.EstimatedMinutes != nil {
		if *req.EstimatedMinutes <= 0 {
			return nil, domain.ErrInvalidEstimate
		}
		item.EstimatedMinutes = req.EstimatedMinutes
	}

	caller := identity.CallerFromContext(ctx)
	modifiedBy := caller.UserID.Int64()
	item.ModifiedBy = &modifiedBy
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	mID, err := parseID(id)
	if err != nil {
		return err
	}

	if _, err := s.loadOwned(ctx, mID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, mID)
	})
}

// Confirm records a recurrence: report count grows by one and the
// last-reported date moves forward. The counter never decreases.
func (s *Service) Confirm(ctx context.Context, id string) (*domain.Response, error) {
	mID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, mID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	now := s.clock.Now()
	if err := s.repo.IncrementReportCount(ctx, s.db, mID, now); err != nil {
		return nil, err
	}

	item, err = s.repo.FindByID(ctx, s.db, mID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) ListByProduct(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	filter := domain.Filter{
		ProductID:  productID,
		SortClause: sortClause(req.SortBy, req.OrderBy),
	}

	if severity := strings.ToLower(strings.TrimSpace(req.Severity)); domain.ValidSeverity(severity) {
		filter.Severity = severity
	}
	if difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty)); domain.ValidDifficulty(difficulty) {
		filter.Difficulty = difficulty
	}

	page := req.Pagination.Clamp()
	filter.Offset = page.Offset()
	filter.Limit = page.Limit()

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	return &domain.ListResponse{
		PageInfo:     pagination.BuildPageInfo(page, total),
		Malfunctions: toResponses(items),
	}, nil
}

// Search runs the technician knowledge-base search. When the backing
// store supports native full-text matching it is tried first; any
// failure falls back silently to the LIKE strategy so the caller sees
// the same result contract either way.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (*domain.ListResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	prefix := false
	if strings.HasSuffix(query, "*") {
		query = strings.TrimSuffix(query, "*")
		prefix = true
	}

	page := req.Pagination.Clamp()
	filter := domain.SearchFilter{
		Query:  query,
		Prefix: prefix,
		Offset: page.Offset(),
		Limit:  page.Limit(),
	}

	if pkgdb.SupportsFullText(s.db) && !prefix {
		filter.FullText = true
		items, total, err := s.repo.Search(ctx, s.db, filter)
		if err == nil {
			return &domain.ListResponse{
				PageInfo:     pagination.BuildPageInfo(page, total),
				Malfunctions: toResponses(items),
			}, nil
		}
		s.log.Debug("full-text search unavailable, falling back to LIKE", zap.Error(err))
		filter.FullText = false
	}

	items, total, err := s.repo.Search(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	return &domain.ListResponse{
		PageInfo:     pagination.BuildPageInfo(page, total),
		Malfunctions: toResponses(items),
	}, nil
}

// loadOwned fetches a malfunction and enforces the ownership rule on
// its product.
func (s *Service) loadOwned(ctx context.Context, id int64) (*domain.Malfunction, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	product, err := s.productRepo.FindByID(ctx, s.db, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	if err := s.checkOwnership(ctx, product); err != nil {
		return nil, err
	}
	return item, nil
}

// checkOwnership rejects staff acting on a product assigned to someone
// else. Admins bypass the rule.
func (s *Service) checkOwnership(ctx context.Context, product *productdomain.Product) error {
	caller := identity.CallerFromContext(ctx)
	if caller.Capabilities.Has(identity.CapAdmin) {
		return nil
	}
	if product.StaffID != nil && *product.StaffID != caller.UserID.Int64() {
		return domain.ErrNotOwner
	}
	return nil
}

func sortClause(field, direction string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	expr, ok := sortFields[field]
	if !ok {
		expr = sortFields[defaultSortField]
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "desc" {
		direction = "asc"
	}
	return expr + " " + direction
}

func toResponses(items []domain.Malfunction) []domain.Response {
	out := make([]domain.Response, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out
}

func toResponse(m *domain.Malfunction) domain.Response {
	return domain.Response{
		ID:               snowflake.ID(m.ID).String(),
		ProductID:        snowflake.ID(m.ProductID).String(),
		Title:            m.Title,
		Description:      m.Description,
		Severity:         m.Severity,
		Solution:         m.Solution,
		Difficulty:       m.Difficulty,
		ToolsNeeded:      m.ToolsNeeded,
		EstimatedMinutes: m.EstimatedMinutes,
		ReportCount:      m.ReportCount,
		FirstReportedAt:  m.FirstReportedAt,
		LastReportedAt:   m.LastReportedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}
