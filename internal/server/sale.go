package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	saledomain "github.com/casaantigua/anticuario/internal/sale/domain"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		ClientID string `form:"client_id"`
		DateFrom string `form:"date_from"`
		DateTo   string `form:"date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dateFrom, err := parseOptionalTime(query.DateFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
		return
	}

	dateTo, err := parseOptionalTime(query.DateTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
		return
	}

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSaleRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Status:    strings.TrimSpace(query.Status),
		ClientID:  strings.TrimSpace(query.ClientID),
		DateFrom:  dateFrom,
		DateTo:    dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp, len(resp.Sales))
}

func (s *Server) GetSale(c *gin.Context) {
	sale, err := s.saleSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, sale)
}

func (s *Server) CreateSale(c *gin.Context) {
	var req saledomain.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ClientID = strings.TrimSpace(req.ClientID)
	req.Actor = actorLabel(c)

	sale, err := s.saleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "sale.create", "sale", sale.ID.String(), map[string]any{
			"total_amount": sale.TotalAmount,
			"line_count":   len(sale.Items),
		})
	}

	respondCreated(c, sale)
}

func (s *Server) UpdateSale(c *gin.Context) {
	var req saledomain.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))

	sale, err := s.saleSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "sale.update", "sale", sale.ID.String(), nil)
	}

	respondOK(c, sale)
}

func (s *Server) UpdateSaleStatus(c *gin.Context) {
	var req saledomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))

	sale, err := s.saleSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "sale.status_change", "sale", sale.ID.String(), map[string]any{
			"status": string(sale.Status),
		})
	}

	respondOK(c, sale)
}

func (s *Server) SaleStats(c *gin.Context) {
	stats, err := s.saleSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, stats)
}

func (s *Server) SalePlans(c *gin.Context) {
	plans, err := s.installmentSvc.PlansBySale(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, plans, len(plans))
}
