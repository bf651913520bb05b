package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/riparohq/riparo/internal/category"
	"github.com/riparohq/riparo/internal/identity"
	"github.com/riparohq/riparo/internal/product/domain"
	pkgdb "github.com/riparohq/riparo/pkg/db"
	"github.com/riparohq/riparo/pkg/db/option"
	"github.com/riparohq/riparo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var baseSortFields = map[string]bool{
	"name":       true,
	"category":   true,
	"created_at": true,
	"updated_at": true,
	"price":      true,
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Registry *category.Registry
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	registry *category.Registry
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		registry: p.Registry,
	}
}

// List normalizes the raw filter specification against the caller's
// capability set and runs the query pipeline. Options the caller may
// not use are dropped silently; malformed sort and pagination values
// fall back to defaults rather than erroring.
func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	caller := identity.CallerFromContext(ctx)
	withCounts := caller.Capabilities.Has(identity.CapViewMalfunctions)

	filter := domain.Filter{
		SearchCategories: req.SearchCategories,
		Category:         strings.TrimSpace(req.Category),
		WithCounts:       withCounts,
	}

	search := strings.TrimSpace(req.Search)
	if strings.HasSuffix(search, "*") {
		filter.Search = strings.TrimSuffix(search, "*")
		filter.SearchPrefix = true
	} else {
		filter.Search = search
	}

	// Public and technician views always see active products only.
	activeOnly := true
	if caller.Capabilities.Has(identity.CapAdmin) {
		if req.ActiveOnly != nil {
			filter.Active = req.ActiveOnly
		}
	} else {
		filter.Active = &activeOnly
	}

	if caller.Capabilities.Has(identity.CapManageMalfunctions) {
		switch staffID := strings.TrimSpace(req.AssignedStaffID); staffID {
		case "":
		case "null", "0":
			filter.Unassigned = true
		default:
			if parsed, err := snowflake.ParseString(staffID); err == nil && parsed != 0 {
				value := parsed.Int64()
				filter.StaffID = &value
			}
		}
	}

	if withCounts {
		filter.CriticalOnly = req.CriticalOnly
	}

	allowed := baseSortFields
	if withCounts {
		allowed = make(map[string]bool, len(baseSortFields)+1)
		for field := range baseSortFields {
			allowed[field] = true
		}
		allowed["malfunction_count"] = true
	}
	filter.SortClause = option.WithQuerySortBy(req.SortBy, req.OrderBy, allowed, "name")

	page := req.Pagination.Clamp()
	filter.Offset = page.Offset()
	filter.Limit = page.Limit()

	rows, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Response, 0, len(rows))
	for _, row := range rows {
		products = append(products, s.toResponse(&row.Product, row.MalfunctionCount, row.CriticalCount, withCounts))
	}

	return &domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Products: products,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return s.shapedResponse(ctx, item)
}

func (s *Service) GetByModel(ctx context.Context, model string) (*domain.Response, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, domain.ErrInvalidModel
	}

	item, err := s.repo.FindByModel(ctx, s.db, model)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return s.shapedResponse(ctx, item)
}

func (s *Service) shapedResponse(ctx context.Context, item *domain.Product) (*domain.Response, error) {
	caller := identity.CallerFromContext(ctx)
	withCounts := caller.Capabilities.Has(identity.CapViewMalfunctions)

	if !item.Active && !caller.Capabilities.Has(identity.CapAdmin) {
		return nil, domain.ErrNotFound
	}

	var malfunctions, critical int64
	if withCounts {
		var err error
		malfunctions, critical, err = s.repo.CountsFor(ctx, s.db, item.ID)
		if err != nil {
			return nil, err
		}
	}

	resp := s.toResponse(item, malfunctions, critical, withCounts)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	model := strings.ToUpper(strings.TrimSpace(req.Model))
	if model == "" {
		return nil, domain.ErrInvalidModel
	}

	categoryKey := slug.Make(strings.TrimSpace(req.Category))
	if !s.registry.IsValid(categoryKey) {
		return nil, domain.ErrInvalidCategory
	}

	if req.Price != nil && *req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:                s.genID.Generate().Int64(),
		Name:              name,
		Model:             model,
		Description:       strings.TrimSpace(req.Description),
		Category:          categoryKey,
		Price:             req.Price,
		Photo:             req.Photo,
		Active:            active,
		TechnicalNotes:    req.TechnicalNotes,
		InstallationNotes: req.InstallationNotes,
		UsageNotes:        req.UsageNotes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrModelExists
		}
		return nil, err
	}

	resp := s.toResponse(p, 0, 0, true)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		categoryKey := slug.Make(strings.TrimSpace(*req.Category))
		if !s.registry.IsValid(categoryKey) {
			return nil, domain.ErrInvalidCategory
		}
		item.Category = categoryKey
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = req.Price
	}
	if req.Photo != nil {
		item.Photo = req.Photo
	}
	if req.TechnicalNotes != nil {
		item.TechnicalNotes = req.TechnicalNotes
	}
	if req.InstallationNotes != nil {
		item.InstallationNotes = req.InstallationNotes
	}
	if req.UsageNotes != nil {
		item.UsageNotes = req.UsageNotes
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item, 0, 0, false)
	return &resp, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = active
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item, 0, 0, false)
	return &resp, nil
}

// Delete removes the product and cascades its malfunctions in one
// transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, productID)
	})
}

func (s *Service) toResponse(p *domain.Product, malfunctions, critical int64, withCounts bool) domain.Response {
	resp := domain.Response{
		ID:                snowflake.ID(p.ID).String(),
		Name:              p.Name,
		Model:             p.Model,
		Description:       p.Description,
		Category:          p.Category,
		CategoryLabel:     s.registry.ResolveLabel(p.Category),
		Price:             p.Price,
		Photo:             p.Photo,
		Active:            p.Active,
		TechnicalNotes:    p.TechnicalNotes,
		InstallationNotes: p.InstallationNotes,
		UsageNotes:        p.UsageNotes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	if p.StaffID != nil {
		staffID := snowflake.ID(*p.StaffID).String()
		resp.StaffID = &staffID
	}

	if withCounts {
		resp.MalfunctionCount = &malfunctions
		resp.CriticalCount = &critical
	}

	return resp
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}
