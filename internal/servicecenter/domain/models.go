package domain

import (
	"context"
	"errors"
	"time"

	"github.com/riparohq/riparo/pkg/db/pagination"
	"gorm.io/gorm"
)

// ServiceCenter is a physical assistance location. Province is stored
// as an uppercase two-letter code; the postal code is five digits.
type ServiceCenter struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"type:text;not null;uniqueIndex:ux_centers_name"`
	Address    string    `json:"address" gorm:"type:text;not null"`
	City       string    `json:"city" gorm:"type:text;not null"`
	Province   string    `json:"province" gorm:"type:text;not null;index"`
	PostalCode string    `json:"postal_code" gorm:"type:text;not null"`
	Phone      string    `json:"phone" gorm:"type:text"`
	Email      string    `json:"email" gorm:"type:text;not null;uniqueIndex:ux_centers_email"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null"`
}

func (ServiceCenter) TableName() string { return "service_centers" }

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type CreateRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type UpdateRequest struct {
	ID         string
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postal_code"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
}

type ListRequest struct {
	pagination.Pagination
	Search   string
	City     string
	Province string
	SortBy   string
	OrderBy  string
}

type ListResponse struct {
	pagination.PageInfo
	Centers []Response `json:"centers"`
}

type Technician struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Surname        string  `json:"surname"`
	Specialization *string `json:"specialization,omitempty"`
}

type Response struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	Province    string       `json:"province"`
	PostalCode  string       `json:"postal_code"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email"`
	Technicians []Technician `json:"technicians,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, center *ServiceCenter) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*ServiceCenter, error)
	List(ctx context.Context, db *gorm.DB, filter Filter) ([]ServiceCenter, int64, error)
	Update(ctx context.Context, db *gorm.DB, center *ServiceCenter) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	TechnicianCount(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}

type Filter struct {
	Search       string
	SearchPrefix bool
	City         string
	Province     string
	SortClause   string
	Offset       int
	Limit        int
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidProvince   = errors.New("invalid_province")
	ErrInvalidPostalCode = errors.New("invalid_postal_code")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrCenterExists      = errors.New("center_exists")
	ErrNotFound          = errors.New("not_found")
	ErrHasTechnicians    = errors.New("center_has_technicians")
)
