package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	installmentdomain "github.com/casaantigua/anticuario/internal/installment/domain"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

func (s *Server) ListPlans(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		ClientID string `form:"client_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.installmentSvc.ListPlans(c.Request.Context(), installmentdomain.ListPlanRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Status:    strings.TrimSpace(query.Status),
		ClientID:  strings.TrimSpace(query.ClientID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp, len(resp.Plans))
}

func (s *Server) GetPlan(c *gin.Context) {
	plan, err := s.installmentSvc.GetPlan(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, plan)
}

// PlanSummary returns only the derived ledger state of a plan, for callers
// that want the numbers without the schedule.
func (s *Server) PlanSummary(c *gin.Context) {
	plan, err := s.installmentSvc.GetPlan(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, plan.Summary)
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req installmentdomain.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.SaleID = strings.TrimSpace(req.SaleID)
	req.ClientID = strings.TrimSpace(req.ClientID)

	plan, err := s.installmentSvc.CreatePlan(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "installment_plan.create", "installment_plan", plan.ID.String(), map[string]any{
			"sale_id":            plan.SaleID.String(),
			"total_amount":       plan.TotalAmount,
			"number_of_payments": plan.NumberOfPayments,
		})
	}

	respondCreated(c, plan)
}

func (s *Server) UpdatePlan(c *gin.Context) {
	var req installmentdomain.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))

	plan, err := s.installmentSvc.UpdatePlan(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "installment_plan.update", "installment_plan", plan.ID.String(), map[string]any{
			"status": string(plan.Status),
		})
	}

	respondOK(c, plan)
}

func (s *Server) DeletePlan(c *gin.Context) {
	planID := strings.TrimSpace(c.Param("id"))

	if err := s.installmentSvc.DeletePlan(c.Request.Context(), planID); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "installment_plan.delete", "installment_plan", planID, nil)
	}

	respondMessage(c, "plan deleted")
}

func (s *Server) OverduePlans(c *gin.Context) {
	plans, err := s.installmentSvc.Overdue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, plans, len(plans))
}

func (s *Server) ListPlanPayments(c *gin.Context) {
	payments, err := s.installmentSvc.ListPayments(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, payments, len(payments))
}

func (s *Server) RecordPlanPayment(c *gin.Context) {
	var req installmentdomain.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.PlanID = strings.TrimSpace(c.Param("id"))
	req.Actor = actorLabel(c)

	plan, err := s.installmentSvc.RecordPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "installment_payment.record", "installment_plan", plan.ID.String(), map[string]any{
			"amount": req.Amount,
			"status": string(plan.Status),
		})
	}

	respondCreated(c, plan)
}

func (s *Server) UpdatePlanPayment(c *gin.Context) {
	var req installmentdomain.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.PlanID = strings.TrimSpace(c.Param("id"))
	req.PaymentID = strings.TrimSpace(c.Param("paymentId"))

	plan, err := s.installmentSvc.UpdatePayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "installment_payment.update", "installment_plan", plan.ID.String(), map[string]any{
			"payment_id": req.PaymentID,
			"status":     string(plan.Status),
		})
	}

	respondOK(c, plan)
}

func (s *Server) DeletePlanPayment(c *gin.Context) {
	planID := strings.TrimSpace(c.Param("id"))
	paymentID := strings.TrimSpace(c.Param("paymentId"))

	plan, err := s.installmentSvc.DeletePayment(c.Request.Context(), planID, paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), "installment_payment.delete", "installment_plan", planID, map[string]any{
			"payment_id": paymentID,
		})
	}

	respondOK(c, plan)
}
