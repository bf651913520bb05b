package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/riparohq/riparo/internal/audit/domain"
	"github.com/riparohq/riparo/internal/identity"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectProduct       = "product"
	ObjectMalfunction   = "malfunction"
	ObjectServiceCenter = "service_center"
	ObjectAssignment    = "assignment"
	ObjectReport        = "report"
	ObjectAuditLog      = "audit_log"
	ObjectCategory      = "category"
)

const (
	ActionProductView   = "product.view"
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"

	ActionMalfunctionView    = "malfunction.view"
	ActionMalfunctionCreate  = "malfunction.create"
	ActionMalfunctionUpdate  = "malfunction.update"
	ActionMalfunctionDelete  = "malfunction.delete"
	ActionMalfunctionConfirm = "malfunction.confirm"
	ActionMalfunctionSearch  = "malfunction.search"

	ActionServiceCenterView   = "service_center.view"
	ActionServiceCenterCreate = "service_center.create"
	ActionServiceCenterUpdate = "service_center.update"
	ActionServiceCenterDelete = "service_center.delete"

	ActionAssignmentView   = "assignment.view"
	ActionAssignmentAssign = "assignment.assign"

	ActionReportView      = "report.view"
	ActionReportTop       = "report.top"
	ActionReportViewAdmin = "report.view_admin"

	ActionAuditLogView = "audit_log.view"

	ActionCategoryView = "category.view"
)

var (
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

// Service answers "may this caller perform this action on this object".
type Service interface {
	Authorize(ctx context.Context, caller identity.Caller, object string, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, caller identity.Caller, object string, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName := subjectForCaller(caller)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, caller, object, action)
		return ErrForbidden
	}
	return nil
}

func subjectForCaller(caller identity.Caller) (string, string) {
	roleName := fmt.Sprintf("role:%s", caller.AccessLevel.Role())
	if caller.Anonymous() {
		return "anonymous", roleName
	}
	return fmt.Sprintf("user:%d", caller.UserID.Int64()), roleName
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName && strings.HasPrefix(rule[1], "role:") {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, caller identity.Caller, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	var actorID *string
	actorType := "anonymous"
	if !caller.Anonymous() {
		actorType = "user"
		id := caller.UserID.String()
		actorID = &id
	}
	targetID := "capability"
	s.auditSvc.Record(ctx, actorType, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object":       object,
		"action":       action,
		"access_level": int(caller.AccessLevel),
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	// Role tiers build on each other: technician extends public, staff
	// extends technician, admin extends staff.
	groupings := [][]string{
		{"role:technician", "role:public"},
		{"role:staff", "role:technician"},
		{"role:admin", "role:staff"},
	}

	policies := [][]string{
		// Public catalog surface
		{"role:public", ObjectProduct, ActionProductView},
		{"role:public", ObjectCategory, ActionCategoryView},
		{"role:public", ObjectServiceCenter, ActionServiceCenterView},
		{"role:public", ObjectReport, ActionReportView},

		// Technicians read malfunction data and confirm recurrences.
		// The top-reported ranking exposes titles and severities, so it
		// starts at this tier rather than role:public.
		{"role:technician", ObjectMalfunction, ActionMalfunctionView},
		{"role:technician", ObjectMalfunction, ActionMalfunctionConfirm},
		{"role:technician", ObjectMalfunction, ActionMalfunctionSearch},
		{"role:technician", ObjectReport, ActionReportTop},

		// Staff maintain the knowledge base and see their assignments
		{"role:staff", ObjectMalfunction, ActionMalfunctionCreate},
		{"role:staff", ObjectMalfunction, ActionMalfunctionUpdate},
		{"role:staff", ObjectMalfunction, ActionMalfunctionDelete},
		{"role:staff", ObjectAssignment, ActionAssignmentView},

		// Admin permissions
		{"role:admin", ObjectProduct, ActionProductCreate},
		{"role:admin", ObjectProduct, ActionProductUpdate},
		{"role:admin", ObjectProduct, ActionProductDelete},
		{"role:admin", ObjectServiceCenter, ActionServiceCenterCreate},
		{"role:admin", ObjectServiceCenter, ActionServiceCenterUpdate},
		{"role:admin", ObjectServiceCenter, ActionServiceCenterDelete},
		{"role:admin", ObjectAssignment, ActionAssignmentAssign},
		{"role:admin", ObjectReport, ActionReportViewAdmin},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},
	}

	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping[0], grouping[1]); err != nil {
			return err
		}
	}
	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
