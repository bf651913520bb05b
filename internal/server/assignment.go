package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/riparohq/riparo/internal/assignment/domain"
)

func (s *Server) AssignProduct(c *gin.Context) {
	var req assignmentdomain.AssignProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProductID = strings.TrimSpace(c.Param("id"))

	resp, err := s.assignmentSvc.AssignProduct(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	message := "product assigned"
	if resp.StaffID == nil {
		message = "product unassigned"
	}
	respondMutation(c, message, resp)
}

func (s *Server) UnassignProduct(c *gin.Context) {
	resp, err := s.assignmentSvc.UnassignProduct(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "product unassigned", resp)
}

func (s *Server) AssignTechnician(c *gin.Context) {
	resp, err := s.assignmentSvc.AssignTechnician(c.Request.Context(), assignmentdomain.AssignTechnicianRequest{
		UserID:   strings.TrimSpace(c.Param("userID")),
		CenterID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	message := "technician assigned"
	if resp.IsTransfer {
		message = "technician transferred"
	}
	respondMutation(c, message, resp)
}

func (s *Server) RemoveTechnician(c *gin.Context) {
	err := s.assignmentSvc.RemoveTechnician(c.Request.Context(),
		strings.TrimSpace(c.Param("userID")),
		strings.TrimSpace(c.Param("id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMutation(c, "technician removed", nil)
}

type unassignedProductView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type technicianView struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Surname        string  `json:"surname"`
	Specialization *string `json:"specialization,omitempty"`
	CenterID       *string `json:"current_center_id,omitempty"`
	CenterName     *string `json:"current_center_name,omitempty"`
}

func (s *Server) ListUnassigned(c *gin.Context) {
	switch strings.TrimSpace(c.Query("type")) {
	case "", "products":
		items, err := s.assignmentSvc.UnassignedProducts(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		views := make([]unassignedProductView, 0, len(items))
		for _, item := range items {
			views = append(views, unassignedProductView{
				ID:        snowflake.ID(item.ID).String(),
				Name:      item.Name,
				Model:     item.Model,
				Category:  item.Category,
				CreatedAt: item.CreatedAt,
			})
		}
		respondData(c, views)
	case "technicians":
		items, err := s.assignmentSvc.UnassignedTechnicians(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		respondData(c, technicianViews(items))
	default:
		AbortWithError(c, invalidRequestError())
	}
}

func (s *Server) ListAvailableTechnicians(c *gin.Context) {
	items, err := s.assignmentSvc.AvailableTechnicians(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, technicianViews(items))
}

func technicianViews(items []assignmentdomain.TechnicianSummary) []technicianView {
	views := make([]technicianView, 0, len(items))
	for _, item := range items {
		view := technicianView{
			ID:             snowflake.ID(item.ID).String(),
			Name:           item.Name,
			Surname:        item.Surname,
			Specialization: item.Specialization,
			CenterName:     item.CenterName,
		}
		if item.CenterID != nil {
			id := snowflake.ID(*item.CenterID).String()
			view.CenterID = &id
		}
		views = append(views, view)
	}
	return views
}

func isAssignmentValidationError(err error) bool {
	switch err {
	case assignmentdomain.ErrInvalidID,
		assignmentdomain.ErrNotStaff,
		assignmentdomain.ErrNotTechnician:
		return true
	default:
		return false
	}
}
