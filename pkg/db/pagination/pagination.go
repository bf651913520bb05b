package pagination

// Pagination carries caller-supplied page parameters. Malformed values
// are clamped, never rejected.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=15" validate:"gte=1,lte=50"` // Min 1, Max 50
}

const (
	DefaultPageSize = 15
	MaxPageSize     = 50
)

// Clamp normalizes page and page size into valid bounds.
func (p Pagination) Clamp() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	clamped := p.Clamp()
	return (clamped.Page - 1) * clamped.PageSize
}

func (p Pagination) Limit() int {
	return p.Clamp().PageSize
}

// PageInfo describes the returned page.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// BuildPageInfo computes page metadata from a clamped request and the
// total row count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	clamped := p.Clamp()
	totalPages := int((total + int64(clamped.PageSize) - 1) / int64(clamped.PageSize))
	return PageInfo{
		Page:       clamped.Page,
		PageSize:   clamped.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    clamped.Page < totalPages,
	}
}
