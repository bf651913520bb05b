package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/riparohq/riparo/internal/assignment/domain"
	auditdomain "github.com/riparohq/riparo/internal/audit/domain"
	"github.com/riparohq/riparo/internal/identity"
	productdomain "github.com/riparohq/riparo/internal/product/domain"
	centerdomain "github.com/riparohq/riparo/internal/servicecenter/domain"
	userdomain "github.com/riparohq/riparo/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	UserRepo    userdomain.Repository
	CenterRepo  centerdomain.Repository
	Audit       auditdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	productRepo productdomain.Repository
	userRepo    userdomain.Repository
	centerRepo  centerdomain.Repository
	audit       auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("assignment.service"),
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		userRepo:    p.UserRepo,
		centerRepo:  p.CenterRepo,
		audit:       p.Audit,
	}
}

// AssignProduct hands a product to a staff member. An empty staff id
// clears the assignment. Re-assigning to the current owner is rejected.
func (s *Service) AssignProduct(ctx context.Context, req domain.AssignProductRequest) (*domain.ProductAssignment, error) {
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

	var staffID *int64
	if raw := strings.TrimSpace(req.StaffID); raw != "" {
		parsed, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		staff, err := s.userRepo.FindByID(ctx, s.db, parsed)
		if err != nil {
			return nil, err
		}
		if staff == nil {
			return nil, domain.ErrUserNotFound
		}
		if staff.AccessLevel != int(identity.LevelStaff) {
			return nil, domain.ErrNotStaff
		}
		staffID = &parsed
	}

	if sameOwner(product.StaffID, staffID) {
		return nil, domain.ErrSameAssignee
	}

	previous := product.StaffID
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.SetProductStaff(ctx, tx, productID, staffID)
	}); err != nil {
		return nil, err
	}

	result := &domain.ProductAssignment{
		ProductID:       snowflake.ID(productID).String(),
		ProductName:     product.Name,
		StaffID:         idString(staffID),
		PreviousStaffID: idString(previous),
	}

	action := "assignment.product.assign"
	if staffID == nil {
		action = "assignment.product.unassign"
	}
	s.recordAudit(ctx, action, "product", result.ProductID, map[string]any{
		"old_staff_id": idValue(previous),
		"new_staff_id": idValue(staffID),
	})

	return result, nil
}

// UnassignProduct is idempotent: clearing an already unassigned product
// succeeds without an audit entry.
func (s *Service) UnassignProduct(ctx context.Context, productID string) (*domain.ProductAssignment, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	result := &domain.ProductAssignment{
		ProductID:       snowflake.ID(id).String(),
		ProductName:     product.Name,
		PreviousStaffID: idString(product.StaffID),
	}
	if product.StaffID == nil {
		return result, nil
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.SetProductStaff(ctx, tx, id, nil)
	}); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "assignment.product.unassign", "product", result.ProductID, map[string]any{
		"old_staff_id": idValue(product.StaffID),
		"new_staff_id": nil,
	})

	return result, nil
}

// AssignTechnician binds a technician to a center. Moving from another
// center is reported as a transfer with the previous center attached.
func (s *Service) AssignTechnician(ctx context.Context, req domain.AssignTechnicianRequest) (*domain.TechnicianAssignment, error) {
	userID, err := parseID(req.UserID)
	if err != nil {
		return nil, err
	}
	centerID, err := parseID(req.CenterID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.AccessLevel != int(identity.LevelTechnician) {
		return nil, domain.ErrNotTechnician
	}

	center, err := s.centerRepo.FindByID(ctx, s.db, centerID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, domain.ErrCenterNotFound
	}

	if user.CenterID != nil && *user.CenterID == centerID {
		return nil, domain.ErrSameCenter
	}

	previous := user.CenterID
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.SetUserCenter(ctx, tx, userID, &centerID)
	}); err != nil {
		return nil, err
	}

	result := &domain.TechnicianAssignment{
		UserID:           snowflake.ID(userID).String(),
		CenterID:         snowflake.ID(centerID).String(),
		IsTransfer:       previous != nil,
		PreviousCenterID: idString(previous),
	}

	s.recordAudit(ctx, "assignment.technician.assign", "user", result.UserID, map[string]any{
		"old_center_id": idValue(previous),
		"new_center_id": centerID,
		"is_transfer":   result.IsTransfer,
	})

	return result, nil
}

func (s *Service) RemoveTechnician(ctx context.Context, userID, centerID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	cid, err := parseID(centerID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, s.db, uid)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.CenterID == nil || *user.CenterID != cid {
		return domain.ErrNotAssignedToCenter
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.SetUserCenter(ctx, tx, uid, nil)
	}); err != nil {
		return err
	}

	s.recordAudit(ctx, "assignment.technician.remove", "user", snowflake.ID(uid).String(), map[string]any{
		"old_center_id": cid,
		"new_center_id": nil,
	})

	return nil
}

func (s *Service) UnassignedProducts(ctx context.Context) ([]domain.UnassignedProduct, error) {
	return s.repo.UnassignedProducts(ctx, s.db)
}

func (s *Service) UnassignedTechnicians(ctx context.Context) ([]domain.TechnicianSummary, error) {
	return s.repo.UnassignedTechnicians(ctx, s.db)
}

func (s *Service) AvailableTechnicians(ctx context.Context, targetCenterID string) ([]domain.TechnicianSummary, error) {
	cid, err := parseID(targetCenterID)
	if err != nil {
		return nil, err
	}
	center, err := s.centerRepo.FindByID(ctx, s.db, cid)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, domain.ErrCenterNotFound
	}
	return s.repo.AvailableTechnicians(ctx, s.db, cid)
}

func (s *Service) recordAudit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	caller := identity.CallerFromContext(ctx)
	var actorID *string
	actorType := "anonymous"
	if !caller.Anonymous() {
		actorType = "user"
		id := caller.UserID.String()
		actorID = &id
	}
	s.audit.Record(ctx, actorType, actorID, action, targetType, &targetID, metadata)
}

func sameOwner(current, next *int64) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	return *current == *next
}

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	s := snowflake.ID(*id).String()
	return &s
}

func idValue(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}
