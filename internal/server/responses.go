package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riparohq/riparo/pkg/db/pagination"
)

type listEnvelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data"`
	Total      int64               `json:"total"`
	Pagination pagination.PageInfo `json:"pagination"`
	Timestamp  time.Time           `json:"timestamp"`
}

type mutationEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondList(c *gin.Context, data any, page pagination.PageInfo) {
	c.JSON(http.StatusOK, listEnvelope{
		Success:    true,
		Data:       data,
		Total:      page.Total,
		Pagination: page,
		Timestamp:  time.Now().UTC(),
	})
}

func respondMutation(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, mutationEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
