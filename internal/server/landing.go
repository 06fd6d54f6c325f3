package server

import (
	"github.com/gin-gonic/gin"

	landingdomain "github.com/casaantigua/anticuario/internal/landing/domain"
)

func (s *Server) GetFeaturedItems(c *gin.Context) {
	sections, err := s.landingSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, sections)
}

func (s *Server) UpdateFeaturedItems(c *gin.Context) {
	var req landingdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Actor = actorLabel(c)

	sections, err := s.landingSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "landing.update", "landing", "", map[string]any{
			"assignments": len(req.Assignments),
		})
	}

	respondOK(c, sections)
}
