package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	qrdomain "github.com/casaantigua/anticuario/internal/qr/domain"
)

func (s *Server) RenderQR(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = string(qrdomain.FormatPNG)
	}

	size, err := parseOptionalInt(c.Query("size"))
	if err != nil {
		AbortWithError(c, newValidationError("size", "invalid_size", "invalid size"))
		return
	}

	req := qrdomain.RenderRequest{
		ItemID: strings.TrimSpace(c.Param("itemId")),
		Format: qrdomain.Format(format),
	}
	if size != nil {
		req.Size = *size
	}

	result, err := s.qrSvc.Render(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Codes are deterministic per item, so clients may cache them.
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Content-Disposition", `inline; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (s *Server) PublicItemView(c *gin.Context) {
	view, err := s.qrSvc.View(c.Request.Context(), strings.TrimSpace(c.Param("itemId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, view)
}
