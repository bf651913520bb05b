package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Service moves products between staff owners and technicians between
// service centers. Every successful mutation leaves an audit entry; the
// entry is best-effort and never blocks the mutation itself.
type Service interface {
	AssignProduct(ctx context.Context, req AssignProductRequest) (*ProductAssignment, error)
	UnassignProduct(ctx context.Context, productID string) (*ProductAssignment, error)
	AssignTechnician(ctx context.Context, req AssignTechnicianRequest) (*TechnicianAssignment, error)
	RemoveTechnician(ctx context.Context, userID, centerID string) error
	UnassignedProducts(ctx context.Context) ([]UnassignedProduct, error)
	UnassignedTechnicians(ctx context.Context) ([]TechnicianSummary, error)
	AvailableTechnicians(ctx context.Context, targetCenterID string) ([]TechnicianSummary, error)
}

type AssignProductRequest struct {
	ProductID string
	StaffID   string `json:"staff_id"`
}

type AssignTechnicianRequest struct {
	UserID   string
	CenterID string
}

type ProductAssignment struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	StaffID         *string `json:"staff_id"`
	PreviousStaffID *string `json:"previous_staff_id,omitempty"`
}

type TechnicianAssignment struct {
	UserID           string  `json:"user_id"`
	CenterID         string  `json:"center_id"`
	IsTransfer       bool    `json:"is_transfer"`
	PreviousCenterID *string `json:"previous_center_id,omitempty"`
}

type UnassignedProduct struct {
	ID        int64     `json:"-" gorm:"column:id"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TechnicianSummary is a technician row enriched with the center the
// technician currently belongs to, when any.
type TechnicianSummary struct {
	ID             int64   `json:"-" gorm:"column:id"`
	Name           string  `json:"name"`
	Surname        string  `json:"surname"`
	Specialization *string `json:"specialization,omitempty"`
	CenterID       *int64  `json:"-" gorm:"column:center_id"`
	CenterName     *string `json:"current_center_name,omitempty" gorm:"column:center_name"`
}

type Repository interface {
	SetProductStaff(ctx context.Context, db *gorm.DB, productID int64, staffID *int64) error
	SetUserCenter(ctx context.Context, db *gorm.DB, userID int64, centerID *int64) error
	UnassignedProducts(ctx context.Context, db *gorm.DB) ([]UnassignedProduct, error)
	UnassignedTechnicians(ctx context.Context, db *gorm.DB) ([]TechnicianSummary, error)
	AvailableTechnicians(ctx context.Context, db *gorm.DB, excludeCenterID int64) ([]TechnicianSummary, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrProductNotFound     = errors.New("product_not_found")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrCenterNotFound      = errors.New("center_not_found")
	ErrNotStaff            = errors.New("assignee_not_staff")
	ErrNotTechnician       = errors.New("user_not_technician")
	ErrSameAssignee        = errors.New("same_assignee")
	ErrSameCenter          = errors.New("same_center")
	ErrNotAssignedToCenter = errors.New("not_assigned_to_center")
)
