package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
)

type createOrganizationRequest struct {
	Name string `json:"name" form:"name"`
	Slug string `json:"slug" form:"slug"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrganizationRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, fielderr.Form("Invalid request"))
		return
	}

	org, err := s.orgSvc.Create(c.Request.Context(), userID, organizationdomain.CreateOrganizationRequest{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.TrimSpace(req.Slug),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": org})
}
