package domain

import (
	"context"
	"errors"
	"time"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type CreatePlanRequest struct {
	SaleID           string     `json:"sale_id"`
	ClientID         string     `json:"client_id"`
	TotalAmount      int64      `json:"total_amount"`
	DownPayment      int64      `json:"down_payment"`
	NumberOfPayments int        `json:"number_of_payments"`
	Frequency        Frequency  `json:"payment_frequency"`
	StartDate        *time.Time `json:"start_date"`
	Notes            string     `json:"notes"`
}

type UpdatePlanRequest struct {
	ID     string      `json:"-"`
	Status *PlanStatus `json:"status"`
	Notes  *string     `json:"notes"`
}

type ListPlanRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	ClientID  string
}

type ListPlanFilter struct {
	Status   PlanStatus
	ClientID string
}

type ListPlanResponse struct {
	pagination.PageInfo
	Plans []*Plan `json:"plans"`
}

type RecordPaymentRequest struct {
	PlanID        string     `json:"-"`
	Amount        int64      `json:"amount"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod string     `json:"payment_method"`
	Notes         string     `json:"notes"`
	Actor         string     `json:"-"`
}

// UpdatePaymentRequest corrects a recorded payment. Nil fields are left
// unchanged.
type UpdatePaymentRequest struct {
	PlanID        string     `json:"-"`
	PaymentID     string     `json:"-"`
	Amount        *int64     `json:"amount"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod *string    `json:"payment_method"`
	Notes         *string    `json:"notes"`
}

type Service interface {
	CreatePlan(context.Context, CreatePlanRequest) (*Plan, error)
	GetPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(context.Context, ListPlanRequest) (ListPlanResponse, error)
	UpdatePlan(context.Context, UpdatePlanRequest) (*Plan, error)
	DeletePlan(ctx context.Context, id string) error
	PlansBySale(ctx context.Context, saleID string) ([]*Plan, error)
	PlansByClient(ctx context.Context, clientID string) ([]*Plan, error)
	Overdue(ctx context.Context) ([]*Plan, error)

	RecordPayment(context.Context, RecordPaymentRequest) (*Plan, error)
	ListPayments(ctx context.Context, planID string) ([]*Payment, error)
	UpdatePayment(context.Context, UpdatePaymentRequest) (*Plan, error)
	DeletePayment(ctx context.Context, planID, paymentID string) (*Plan, error)
}

var (
	ErrInvalidPlanID    = errors.New("invalid_plan_id")
	ErrInvalidPaymentID = errors.New("invalid_payment_id")
	ErrInvalidSale      = errors.New("invalid_sale_id")
	ErrInvalidClient    = errors.New("invalid_client_id")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidSchedule  = errors.New("invalid_schedule")
	ErrInvalidFrequency = errors.New("invalid_frequency")
	ErrInvalidStatus    = errors.New("invalid_plan_status")
	ErrPlanNotActive    = errors.New("plan_not_active")
	ErrPlanNotFound     = errors.New("plan_not_found")
	ErrPaymentNotFound  = errors.New("payment_not_found")
)
