package domain

import (
	"context"
	"errors"
	"time"

	"github.com/riparohq/riparo/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByModel(ctx context.Context, model string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	SetActive(ctx context.Context, id string, active bool) (*Response, error)
	Delete(ctx context.Context, id string) error
}

// ListRequest is the raw filter specification as supplied by the
// caller. The pipeline normalizes it: disallowed options for the
// caller's capability set are dropped, not rejected.
type ListRequest struct {
	pagination.Pagination
	Search           string
	SearchCategories bool // advanced variant: category joins the OR'd search fields
	Category         string
	ActiveOnly       *bool
	AssignedStaffID  string // "", "null"/"0" (unassigned) or a staff id
	CriticalOnly     bool
	SortBy           string
	OrderBy          string
}

type ListResponse struct {
	pagination.PageInfo
	Products []Response `json:"products"`
}

type CreateRequest struct {
	Name              string   `json:"name"`
	Model             string   `json:"model"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Price             *float64 `json:"price"`
	Photo             *string  `json:"photo"`
	Active            *bool    `json:"active"`
	TechnicalNotes    *string  `json:"technical_notes"`
	InstallationNotes *string  `json:"installation_notes"`
	UsageNotes        *string  `json:"usage_notes"`
}

type UpdateRequest struct {
	ID                string
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	Price             *float64 `json:"price"`
	Photo             *string  `json:"photo"`
	TechnicalNotes    *string  `json:"technical_notes"`
	InstallationNotes *string  `json:"installation_notes"`
	UsageNotes        *string  `json:"usage_notes"`
}

// Response is the role-shaped product payload. Malfunction counts are
// omitted, not nulled, when the caller may not view malfunction data.
type Response struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Model             string    `json:"model"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	CategoryLabel     string    `json:"category_label"`
	Price             *float64  `json:"price,omitempty"`
	Photo             *string   `json:"photo,omitempty"`
	Active            bool      `json:"active"`
	StaffID           *string   `json:"staff_id,omitempty"`
	TechnicalNotes    *string   `json:"technical_notes,omitempty"`
	InstallationNotes *string   `json:"installation_notes,omitempty"`
	UsageNotes        *string   `json:"usage_notes,omitempty"`
	MalfunctionCount  *int64    `json:"malfunction_count,omitempty"`
	CriticalCount     *int64    `json:"critical_count,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidModel    = errors.New("invalid_model")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrModelExists     = errors.New("model_exists")
	ErrNotFound        = errors.New("not_found")
)
