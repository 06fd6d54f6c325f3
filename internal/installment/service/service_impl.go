package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/installment/domain"
	saledomain "github.com/casaantigua/anticuario/internal/sale/domain"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	SaleRepo saledomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	saleRepo saledomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("installment.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		saleRepo: p.SaleRepo,
	}
}

func (s *Service) CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.Plan, error) {
	saleID, err := snowflake.ParseString(strings.TrimSpace(req.SaleID))
	if err != nil || saleID == 0 {
		return nil, domain.ErrInvalidSale
	}
	sale, err := s.saleRepo.FindByID(ctx, s.db, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrInvalidSale
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		// Fall back to the sale's client when the request omits one.
		if sale.ClientID == nil {
			return nil, domain.ErrInvalidClient
		}
		clientID = *sale.ClientID
	}

	if req.TotalAmount <= 0 || req.DownPayment < 0 || req.DownPayment > req.TotalAmount {
		return nil, domain.ErrInvalidAmount
	}
	if req.NumberOfPayments < 1 {
		return nil, domain.ErrInvalidSchedule
	}
	if !req.Frequency.IsValid() {
		return nil, domain.ErrInvalidFrequency
	}

	now := time.Now().UTC()
	start := now
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}

	plan := &domain.Plan{
		ID:               s.genID.Generate(),
		SaleID:           saleID,
		ClientID:         clientID,
		TotalAmount:      req.TotalAmount,
		DownPayment:      req.DownPayment,
		NumberOfPayments: req.NumberOfPayments,
		Frequency:        req.Frequency,
		StartDate:        start,
		Status:           domain.PlanActive,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.InsertPlan(ctx, s.db, plan); err != nil {
		return nil, err
	}

	plan.Summary = plan.Summarize(now)
	s.log.Info("installment plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("sale_id", saleID.String()),
		zap.Int("payments", plan.NumberOfPayments),
	)
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, rawID string) (*domain.Plan, error) {
	id, err := s.parsePlanID(rawID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.FindPlanByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	plan.Summary = plan.Summarize(time.Now().UTC())
	return plan, nil
}

func (s *Service) ListPlans(ctx context.Context, req domain.ListPlanRequest) (domain.ListPlanResponse, error) {
	filter := domain.ListPlanFilter{}
	overdueOnly := false
	switch status := strings.TrimSpace(req.Status); status {
	case "":
	case string(domain.PlanOverdue):
		// Overdue is derived, so filter on active and narrow after summarizing.
		filter.Status = domain.PlanActive
		overdueOnly = true
	case string(domain.PlanActive), string(domain.PlanCompleted), string(domain.PlanCancelled):
		filter.Status = domain.PlanStatus(status)
	default:
		return domain.ListPlanResponse{}, domain.ErrInvalidStatus
	}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListPlanResponse{}, domain.ErrInvalidClient
		}
		filter.ClientID = id.String()
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	plans, err := s.repo.ListPlans(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListPlanResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(plans, int(pageSize), func(plan *domain.Plan) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        plan.ID.String(),
			CreatedAt: plan.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(plans) > int(pageSize) {
		plans = plans[:pageSize]
	}

	now := time.Now().UTC()
	out := plans[:0]
	for _, plan := range plans {
		plan.Summary = plan.Summarize(now)
		if overdueOnly && !plan.Summary.IsOverdue {
			continue
		}
		out = append(out, plan)
	}

	resp := domain.ListPlanResponse{Plans: out}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) UpdatePlan(ctx context.Context, req domain.UpdatePlanRequest) (*domain.Plan, error) {
	id, err := s.parsePlanID(req.ID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.FindPlanByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}

	if req.Status != nil {
		switch *req.Status {
		case domain.PlanActive, domain.PlanCompleted, domain.PlanCancelled:
			plan.Status = *req.Status
		default:
			// Overdue is derived and cannot be assigned.
			return nil, domain.ErrInvalidStatus
		}
	}
	if req.Notes != nil {
		plan.Notes = strings.TrimSpace(*req.Notes)
	}
	plan.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdatePlan(ctx, s.db, plan); err != nil {
		return nil, err
	}
	plan.Summary = plan.Summarize(time.Now().UTC())
	return plan, nil
}

// DeletePlan removes a plan along with its payment ledger.
func (s *Service) DeletePlan(ctx context.Context, rawID string) error {
	id, err := s.parsePlanID(rawID)
	if err != nil {
		return err
	}
	plan, err := s.repo.FindPlanByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return domain.ErrPlanNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.DeletePlan(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("installment plan deleted",
		zap.String("plan_id", id.String()),
		zap.Int("payments_removed", len(plan.Payments)),
	)
	return nil
}

func (s *Service) PlansBySale(ctx context.Context, rawSaleID string) ([]*domain.Plan, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawSaleID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidSale
	}
	plans, err := s.repo.PlansBySale(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.summarizeAll(plans)
	return plans, nil
}

func (s *Service) PlansByClient(ctx context.Context, rawClientID string) ([]*domain.Plan, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawClientID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidClient
	}
	plans, err := s.repo.PlansByClient(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.summarizeAll(plans)
	return plans, nil
}

func (s *Service) Overdue(ctx context.Context) ([]*domain.Plan, error) {
	plans, err := s.repo.ActivePlans(ctx, s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	var overdue []*domain.Plan
	for _, plan := range plans {
		plan.Summary = plan.Summarize(now)
		if plan.Summary.IsOverdue {
			overdue = append(overdue, plan)
		}
	}
	return overdue, nil
}

// RecordPayment appends a payment and completes the plan once the balance
// reaches zero. Paying more than the remaining balance is allowed; the
// excess shows up as a credit in the summary.
func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (*domain.Plan, error) {
	id, err := s.parsePlanID(req.PlanID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.FindPlanByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	if plan.Status != domain.PlanActive {
		return nil, domain.ErrPlanNotActive
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	payDate := now
	if req.PaymentDate != nil {
		payDate = req.PaymentDate.UTC()
	}

	// Receipt numbers keep counting past deletions, so a re-recorded
	// payment never reuses a number already handed to the client.
	nextNumber := 0
	for _, pay := range plan.Payments {
		if pay.PaymentNumber > nextNumber {
			nextNumber = pay.PaymentNumber
		}
	}

	payment := &domain.Payment{
		ID:            s.genID.Generate(),
		PlanID:        id,
		PaymentNumber: nextNumber + 1,
		Amount:        req.Amount,
		PaymentDate:   payDate,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         strings.TrimSpace(req.Notes),
		RecordedBy:    req.Actor,
		CreatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			return err
		}
		plan.Payments = append(plan.Payments, *payment)
		if sum := plan.Summarize(now); sum.RemainingBalance <= 0 {
			plan.Status = domain.PlanCompleted
			plan.UpdatedAt = now
			return s.repo.UpdatePlan(ctx, tx, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan.Summary = plan.Summarize(now)
	s.log.Info("installment payment recorded",
		zap.String("plan_id", id.String()),
		zap.Int64("amount", req.Amount),
		zap.String("status", string(plan.Status)),
	)
	return plan, nil
}

func (s *Service) ListPayments(ctx context.Context, rawPlanID string) ([]*domain.Payment, error) {
	id, err := s.parsePlanID(rawPlanID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.FindPlanByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	return s.repo.ListPayments(ctx, s.db, id)
}

// UpdatePayment corrects a recorded payment and re-runs the completion
// check both ways: a raised amount can close an active plan, a lowered one
// reopens a completed plan.
func (s *Service) UpdatePayment(ctx context.Context, req domain.UpdatePaymentRequest) (*domain.Plan, error) {
	planID, err := s.parsePlanID(req.PlanID)
	if err != nil {
		return nil, err
	}
	paymentID, err := snowflake.ParseString(strings.TrimSpace(req.PaymentID))
	if err != nil || paymentID == 0 {
		return nil, domain.ErrInvalidPaymentID
	}

	plan, err := s.repo.FindPlanByID(ctx, s.db, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}

	var payment *domain.Payment
	for i := range plan.Payments {
		if plan.Payments[i].ID == paymentID {
			payment = &plan.Payments[i]
			break
		}
	}
	if payment == nil {
		return nil, domain.ErrPaymentNotFound
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, domain.ErrInvalidAmount
		}
		payment.Amount = *req.Amount
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
	}
	if req.Notes != nil {
		payment.Notes = strings.TrimSpace(*req.Notes)
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdatePayment(ctx, tx, payment); err != nil {
			return err
		}
		sum := plan.Summarize(now)
		switch {
		case plan.Status == domain.PlanActive && sum.RemainingBalance <= 0:
			plan.Status = domain.PlanCompleted
		case plan.Status == domain.PlanCompleted && sum.RemainingBalance > 0:
			plan.Status = domain.PlanActive
		default:
			return nil
		}
		plan.UpdatedAt = now
		return s.repo.UpdatePlan(ctx, tx, plan)
	})
	if err != nil {
		return nil, err
	}

	plan.Summary = plan.Summarize(now)
	s.log.Info("installment payment corrected",
		zap.String("plan_id", planID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("status", string(plan.Status)),
	)
	return plan, nil
}

// DeletePayment removes a mis-entered payment and reopens a plan that had
// auto-completed because of it.
func (s *Service) DeletePayment(ctx context.Context, rawPlanID, rawPaymentID string) (*domain.Plan, error) {
	planID, err := s.parsePlanID(rawPlanID)
	if err != nil {
		return nil, err
	}
	paymentID, err := snowflake.ParseString(strings.TrimSpace(rawPaymentID))
	if err != nil || paymentID == 0 {
		return nil, domain.ErrInvalidPaymentID
	}

	plan, err := s.repo.FindPlanByID(ctx, s.db, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.DeletePayment(ctx, tx, planID, paymentID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrPaymentNotFound
		}

		kept := plan.Payments[:0]
		for _, pay := range plan.Payments {
			if pay.ID != paymentID {
				kept = append(kept, pay)
			}
		}
		plan.Payments = kept

		if plan.Status == domain.PlanCompleted {
			if sum := plan.Summarize(now); sum.RemainingBalance > 0 {
				plan.Status = domain.PlanActive
				plan.UpdatedAt = now
				return s.repo.UpdatePlan(ctx, tx, plan)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan.Summary = plan.Summarize(now)
	return plan, nil
}

func (s *Service) summarizeAll(plans []*domain.Plan) {
	now := time.Now().UTC()
	for _, plan := range plans {
		plan.Summary = plan.Summarize(now)
	}
}

func (s *Service) parsePlanID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidPlanID
	}
	return id, nil
}
