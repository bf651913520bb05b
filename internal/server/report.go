package server

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type topReportedView struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Title          string    `json:"title"`
	Severity       string    `json:"severity"`
	ReportCount    int       `json:"report_count"`
	LastReportedAt time.Time `json:"last_reported_at"`
}

func (s *Server) GetReportSummary(c *gin.Context) {
	respondData(c, s.reportSvc.Summary(c.Request.Context()))
}

func (s *Server) GetTopReported(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}

	items := s.reportSvc.TopReported(c.Request.Context(), n)
	views := make([]topReportedView, 0, len(items))
	for _, item := range items {
		views = append(views, topReportedView{
			ID:             snowflake.ID(item.MalfunctionID).String(),
			ProductID:      snowflake.ID(item.ProductID).String(),
			ProductName:    item.ProductName,
			Title:          item.Title,
			Severity:       item.Severity,
			ReportCount:    item.ReportCount,
			LastReportedAt: item.LastReportedAt,
		})
	}
	respondData(c, views)
}
