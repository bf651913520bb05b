package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	centerdomain "github.com/riparohq/riparo/internal/servicecenter/domain"
	"github.com/riparohq/riparo/pkg/db/pagination"
)

func (s *Server) ListCenters(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search   string `form:"search"`
		City     string `form:"city"`
		Province string `form:"province"`
		SortBy   string `form:"sort"`
		OrderBy  string `form:"direction"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.centerSvc.List(c.Request.Context(), centerdomain.ListRequest{
		Pagination: query.Pagination,
		Search:     strings.TrimSpace(query.Search),
		City:       strings.TrimSpace(query.City),
		Province:   strings.TrimSpace(query.Province),
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Centers, resp.PageInfo)
}

func (s *Server) GetCenter(c *gin.Context) {
	resp, err := s.centerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

func (s *Server) CreateCenter(c *gin.Context) {
	var req centerdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.centerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "service center created", resp)
}

func (s *Server) UpdateCenter(c *gin.Context) {
	var req centerdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.centerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "service center updated", resp)
}

func (s *Server) DeleteCenter(c *gin.Context) {
	if err := s.centerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "service center deleted", nil)
}

func isCenterValidationError(err error) bool {
	switch err {
	case centerdomain.ErrInvalidID,
		centerdomain.ErrInvalidName,
		centerdomain.ErrInvalidProvince,
		centerdomain.ErrInvalidPostalCode,
		centerdomain.ErrInvalidEmail:
		return true
	default:
		return false
	}
}
