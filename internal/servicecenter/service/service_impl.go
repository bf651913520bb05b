package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/riparohq/riparo/internal/servicecenter/domain"
	userdomain "github.com/riparohq/riparo/internal/user/domain"
	pkgdb "github.com/riparohq/riparo/pkg/db"
	"github.com/riparohq/riparo/pkg/db/option"
	"github.com/riparohq/riparo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)
	provinceRe   = regexp.MustCompile(`^[A-Za-z]{2}$`)
	emailRe      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

var sortFields = map[string]bool{
	"name":       true,
	"city":       true,
	"province":   true,
	"created_at": true,
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	UserRepo userdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	userRepo userdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("servicecenter.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	province := strings.ToUpper(strings.TrimSpace(req.Province))
	if !provinceRe.MatchString(province) {
		return nil, domain.ErrInvalidProvince
	}

	postalCode := strings.TrimSpace(req.PostalCode)
	if !postalCodeRe.MatchString(postalCode) {
		return nil, domain.ErrInvalidPostalCode
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(email) {
		return nil, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	center := &domain.ServiceCenter{
		ID:         s.genID.Generate().Int64(),
		Name:       name,
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		Province:   province,
		PostalCode: postalCode,
		Phone:      strings.TrimSpace(req.Phone),
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, s.db, center); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCenterExists
		}
		return nil, err
	}

	resp := s.toResponse(center, nil)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	centerID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	center, err := s.repo.FindByID(ctx, s.db, centerID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		center.Name = name
	}
	if req.Address != nil {
		center.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		center.City = strings.TrimSpace(*req.City)
	}
	if req.Province != nil {
		province := strings.ToUpper(strings.TrimSpace(*req.Province))
		if !provinceRe.MatchString(province) {
			return nil, domain.ErrInvalidProvince
		}
		center.Province = province
	}
	if req.PostalCode != nil {
		postalCode := strings.TrimSpace(*req.PostalCode)
		if !postalCodeRe.MatchString(postalCode) {
			return nil, domain.ErrInvalidPostalCode
		}
		center.PostalCode = postalCode
	}
	if req.Phone != nil {
		center.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRe.MatchString(email) {
			return nil, domain.ErrInvalidEmail
		}
		center.Email = email
	}

	center.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, center); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCenterExists
		}
		return nil, err
	}

	resp := s.toResponse(center, nil)
	return &resp, nil
}

// Delete refuses to remove a center that still has technicians; they
// must be transferred first.
func (s *Service) Delete(ctx context.Context, id string) error {
	centerID, err := parseID(id)
	if err != nil {
		return err
	}

	center, err := s.repo.FindByID(ctx, s.db, centerID)
	if err != nil {
		return err
	}
	if center == nil {
		return domain.ErrNotFound
	}

	attached, err := s.repo.TechnicianCount(ctx, s.db, centerID)
	if err != nil {
		return err
	}
	if attached > 0 {
		return domain.ErrHasTechnicians
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, centerID)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	centerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	center, err := s.repo.FindByID(ctx, s.db, centerID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, domain.ErrNotFound
	}

	technicians, err := s.userRepo.TechniciansOfCenter(ctx, s.db, centerID)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(center, technicians)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.Filter{
		City:       strings.TrimSpace(req.City),
		Province:   strings.ToUpper(strings.TrimSpace(req.Province)),
		SortClause: option.WithQuerySortBy(req.SortBy, req.OrderBy, sortFields, "name"),
	}

	search := strings.TrimSpace(req.Search)
	if strings.HasSuffix(search, "*") {
		filter.Search = strings.TrimSuffix(search, "*")
		filter.SearchPrefix = true
	} else {
		filter.Search = search
	}

	page := req.Pagination.Clamp()
	filter.Offset = page.Offset()
	filter.Limit = page.Limit()

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	centers := make([]domain.Response, 0, len(items))
	for i := range items {
		centers = append(centers, s.toResponse(&items[i], nil))
	}

	return &domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Centers:  centers,
	}, nil
}

func (s *Service) toResponse(c *domain.ServiceCenter, technicians []userdomain.User) domain.Response {
	resp := domain.Response{
		ID:         snowflake.ID(c.ID).String(),
		Name:       c.Name,
		Address:    c.Address,
		City:       c.City,
		Province:   c.Province,
		PostalCode: c.PostalCode,
		Phone:      c.Phone,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}

	for i := range technicians {
		tech := &technicians[i]
		resp.Technicians = append(resp.Technicians, domain.Technician{
			ID:             snowflake.ID(tech.ID).String(),
			Name:           tech.Name,
			Surname:        tech.Surname,
			Specialization: tech.Specialization,
		})
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
