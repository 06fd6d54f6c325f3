package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) ExportInventory(c *gin.Context) {
	data, err := s.exportSvc.Inventory(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "inventory.export", "inventory_item", "", nil)
	}

	sendWorkbook(c, "inventory", data)
}

func (s *Server) ExportSales(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("date_from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
		return
	}

	to, err := parseOptionalTime(c.Query("date_to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
		return
	}

	data, err := s.exportSvc.Sales(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "sale.export", "sale", "", nil)
	}

	sendWorkbook(c, "sales", data)
}

func sendWorkbook(c *gin.Context, prefix string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
