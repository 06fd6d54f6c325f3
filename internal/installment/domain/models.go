// Package domain contains the installment plan models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PlanStatus is the stored lifecycle state. Overdue is never stored; it is
// derived on read from the next due date.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanOverdue   PlanStatus = "overdue"
	PlanCancelled PlanStatus = "cancelled"
)

// Frequency is the payment cadence.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyOther     Frequency = "other"
)

// IsValid reports whether the frequency is one of the known values.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyOther:
		return true
	}
	return false
}

// Schedulable reports whether due dates can be derived from the cadence.
// An ad-hoc plan has no predictable schedule, so it carries no due date
// and is never flagged overdue.
func (f Frequency) Schedulable() bool {
	return f != FrequencyOther
}

// Next returns the due date that follows from, per the cadence.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// Plan spreads a sale's balance over scheduled payments. Amounts are
// integer cents.
type Plan struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"plan_id"`
	SaleID           snowflake.ID `gorm:"not null;index" json:"sale_id"`
	ClientID         snowflake.ID `gorm:"not null;index" json:"client_id"`
	TotalAmount      int64        `gorm:"not null" json:"total_amount"`
	DownPayment      int64        `gorm:"not null;default:0" json:"down_payment"`
	NumberOfPayments int          `gorm:"not null" json:"number_of_payments"`
	Frequency        Frequency    `gorm:"column:payment_frequency;not null" json:"payment_frequency"`
	StartDate        time.Time    `gorm:"not null" json:"start_date"`
	Status           PlanStatus   `gorm:"not null;default:'active';index" json:"status"`
	Notes            string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Payments []Payment `gorm:"foreignKey:PlanID" json:"payments,omitempty"`
	Summary  *Summary  `gorm:"-" json:"summary,omitempty"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "installment_plans" }

// Payment is one recorded installment against a plan. PaymentNumber is a
// receipt sequence assigned at record time; deletions leave gaps.
type Payment struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"payment_id"`
	PlanID        snowflake.ID `gorm:"not null;index" json:"plan_id"`
	PaymentNumber int          `gorm:"not null;default:0" json:"payment_number"`
	Amount        int64        `gorm:"not null" json:"amount"`
	PaymentDate   time.Time    `gorm:"not null" json:"payment_date"`
	PaymentMethod string       `json:"payment_method,omitempty"`
	Notes         string       `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy    string       `gorm:"column:recorded_by" json:"recorded_by,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "installment_payments" }

// Summary is the derived financial state of a plan, computed on every read
// so it can never drift from the recorded payments.
type Summary struct {
	TotalPaid         int64      `json:"total_paid"`
	RemainingBalance  int64      `json:"remaining_balance"`
	InstallmentAmount int64      `json:"installment_amount"`
	PaymentsMade      int        `json:"payments_made"`
	PaymentsRemaining int        `json:"payments_remaining"`
	NextDueDate       *time.Time `json:"next_due_date,omitempty"`
	IsOverdue         bool       `json:"is_overdue"`
	EffectiveStatus   PlanStatus `json:"effective_status"`
}

// Summarize derives the plan summary at the given instant.
func (p *Plan) Summarize(now time.Time) *Summary {
	var paid int64
	for _, pay := range p.Payments {
		paid += pay.Amount
	}
	totalPaid := p.DownPayment + paid

	financed := p.TotalAmount - p.DownPayment
	installment := int64(0)
	if p.NumberOfPayments > 0 {
		n := int64(p.NumberOfPayments)
		installment = (financed + n - 1) / n
	}

	remaining := p.TotalAmount - totalPaid
	if remaining < 0 {
		remaining = 0
	}

	made := len(p.Payments)
	left := p.NumberOfPayments - made
	if left < 0 {
		left = 0
	}

	sum := &Summary{
		TotalPaid:         totalPaid,
		RemainingBalance:  remaining,
		InstallmentAmount: installment,
		PaymentsMade:      made,
		PaymentsRemaining: left,
		EffectiveStatus:   p.Status,
	}

	if p.Status == PlanActive && p.Frequency.Schedulable() {
		due := p.StartDate
		for i := 0; i < made; i++ {
			due = p.Frequency.Next(due)
		}
		sum.NextDueDate = &due
		if due.Before(now.Truncate(24 * time.Hour)) {
			sum.IsOverdue = true
			sum.EffectiveStatus = PlanOverdue
		}
	}
	return sum
}
