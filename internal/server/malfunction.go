package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	malfunctiondomain "github.com/riparohq/riparo/internal/malfunction/domain"
	"github.com/riparohq/riparo/pkg/db/pagination"
)

func (s *Server) ListProductMalfunctions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Severity   string `form:"gravita"`
		Difficulty string `form:"difficolta"`
		SortBy     string `form:"sort"`
		OrderBy    string `form:"direction"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.malfunctionSvc.ListByProduct(c.Request.Context(), malfunctiondomain.ListRequest{
		Pagination: query.Pagination,
		ProductID:  strings.TrimSpace(c.Param("id")),
		Severity:   strings.TrimSpace(query.Severity),
		Difficulty: strings.TrimSpace(query.Difficulty),
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Malfunctions, resp.PageInfo)
}

func (s *Server) CreateMalfunction(c *gin.Context) {
	var req malfunctiondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProductID = strings.TrimSpace(c.Param("id"))

	resp, err := s.malfunctionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "malfunction created", resp)
}

func (s *Server) UpdateMalfunction(c *gin.Context) {
	var req malfunctiondomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.malfunctionSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "malfunction updated", resp)
}

func (s *Server) DeleteMalfunction(c *gin.Context) {
	if err := s.malfunctionSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "malfunction deleted", nil)
}

func (s *Server) ConfirmMalfunction(c *gin.Context) {
	resp, err := s.malfunctionSvc.Confirm(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "malfunction confirmed", resp)
}

func (s *Server) SearchMalfunctions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Query string `form:"q"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.malfunctionSvc.Search(c.Request.Context(), malfunctiondomain.SearchRequest{
		Pagination: query.Pagination,
		Query:      strings.TrimSpace(query.Query),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Malfunctions, resp.PageInfo)
}

func isMalfunctionValidationError(err error) bool {
	switch err {
	case malfunctiondomain.ErrInvalidID,
		malfunctiondomain.ErrInvalidTitle,
		malfunctiondomain.ErrInvalidSeverity,
		malfunctiondomain.ErrInvalidDifficulty,
		malfunctiondomain.ErrInvalidEstimate,
		malfunctiondomain.ErrInvalidQuery:
		return true
	default:
		return false
	}
}
