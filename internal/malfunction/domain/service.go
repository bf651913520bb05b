package domain

import (
	"context"
	"errors"
	"time"

	"github.com/riparohq/riparo/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (*Response, error)
	ListByProduct(ctx context.Context, req ListRequest) (*ListResponse, error)
	Search(ctx context.Context, req SearchRequest) (*ListResponse, error)
}

type CreateRequest struct {
	ProductID        string  `json:"product_id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Severity         string  `json:"severity"`
	Solution         string  `json:"solution"`
	Difficulty       string  `json:"difficulty"`
	ToolsNeeded      *string `json:"tools_needed"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
}

type UpdateRequest struct {
	ID               string
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Severity         *string `json:"severity"`
	Solution         *string `json:"solution"`
	Difficulty       *string `json:"difficulty"`
	ToolsNeeded      *string `json:"tools_needed"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
}

type ListRequest struct {
	pagination.Pagination
	ProductID  string
	Severity   string
	Difficulty string
	SortBy     string
	OrderBy    string
}

type SearchRequest struct {
	pagination.Pagination
	Query string
}

type ListResponse struct {
	pagination.PageInfo
	Malfunctions []Response `json:"malfunctions"`
}

type Response struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Severity         string    `json:"severity"`
	Solution         string    `json:"solution"`
	Difficulty       string    `json:"difficulty"`
	ToolsNeeded      *string   `json:"tools_needed,omitempty"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	ReportCount      int       `json:"report_count"`
	FirstReportedAt  time.Time `json:"first_reported_at"`
	LastReportedAt   time.Time `json:"last_reported_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidSeverity   = errors.New("invalid_severity")
	ErrInvalidDifficulty = errors.New("invalid_difficulty")
	ErrInvalidEstimate   = errors.New("invalid_estimate")
	ErrInvalidQuery      = errors.New("invalid_query")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrNotFound          = errors.New("not_found")
	ErrNotOwner          = errors.New("not_owner")
)
