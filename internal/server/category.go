package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCategories(c *gin.Context) {
	respondData(c, s.categorySvc.Registry().All())
}

func (s *Server) ListCategoriesInUse(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("active_only"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entries, err := s.categorySvc.InUse(c.Request.Context(), activeOnly != nil && *activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, entries)
}
