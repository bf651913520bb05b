package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/riparohq/riparo/internal/product/domain"
	"github.com/riparohq/riparo/pkg/db/pagination"
)

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search           string `form:"search"`
		SearchCategories string `form:"search_categories"`
		Category         string `form:"categoria"`
		Active           string `form:"active"`
		StaffID          string `form:"staff_id"`
		Unassigned       string `form:"non_assegnati"`
		CriticalOnly     string `form:"critici"`
		SortBy           string `form:"sort"`
		OrderBy          string `form:"direction"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	searchCategories, err := parseOptionalBool(query.SearchCategories)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	critical, err := parseOptionalBool(query.CriticalOnly)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	staffID := strings.TrimSpace(query.StaffID)
	if unassigned, err := parseOptionalBool(query.Unassigned); err == nil && unassigned != nil && *unassigned {
		staffID = "null"
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Pagination:       query.Pagination,
		Search:           strings.TrimSpace(query.Search),
		SearchCategories: searchCategories != nil && *searchCategories,
		Category:         strings.TrimSpace(query.Category),
		ActiveOnly:       active,
		AssignedStaffID:  staffID,
		CriticalOnly:     critical != nil && *critical,
		SortBy:           strings.TrimSpace(query.SortBy),
		OrderBy:          strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Products, resp.PageInfo)
}

func (s *Server) GetProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	// Lookup by model code is supported through the same route.
	if model := strings.TrimSpace(c.Query("by_model")); model == "true" {
		resp, err := s.productSvc.GetByModel(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		respondData(c, resp)
		return
	}

	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "product created", resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "product updated", resp)
}

func (s *Server) SetProductStatus(c *gin.Context) {
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.SetActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), *req.Active)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "product status updated", resp)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "product deleted", nil)
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidID,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidModel,
		productdomain.ErrInvalidCategory,
		productdomain.ErrInvalidPrice:
		return true
	default:
		return false
	}
}
