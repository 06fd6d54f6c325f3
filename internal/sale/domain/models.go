// Package domain contains the sale models and workflow contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	clientdomain "github.com/casaantigua/anticuario/internal/client/domain"
)

// Status tracks a sale through its lifecycle. Transitions are restricted:
// Pending moves to Completed or Cancelled, Completed moves to Refunded.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusRefunded  Status = "Refunded"
)

// CanTransitionTo reports whether the status change is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted:
		return next == StatusRefunded
	}
	return false
}

// PaymentMethod is how the sale was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentCreditCard   PaymentMethod = "Credit Card"
	PaymentDebitCard    PaymentMethod = "Debit Card"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentCheck        PaymentMethod = "Check"
	PaymentInstallments PaymentMethod = "Installments"
)

// IsValid reports whether the payment method is one of the known values.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard,
		PaymentBankTransfer, PaymentCheck, PaymentInstallments:
		return true
	}
	return false
}

// Sale is the receipt header. Amounts are integer cents.
type Sale struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"sale_id"`
	ClientID      *snowflake.ID `gorm:"index" json:"client_id,omitempty"`
	SaleDate      time.Time     `gorm:"not null;index" json:"sale_date"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"`
	PaymentMethod PaymentMethod `gorm:"not null" json:"payment_method"`
	Status        Status        `gorm:"not null;default:'Pending';index" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy     string        `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Client *clientdomain.Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []SaleItem           `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// SaleItem is one receipt line. Name, friendly ID, category and price are
// snapshots taken at sale time so later inventory edits never rewrite old
// receipts.
type SaleItem struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"sale_item_id"`
	SaleID     snowflake.ID `gorm:"not null;index" json:"sale_id"`
	ItemID     snowflake.ID `gorm:"not null;index" json:"item_id"`
	ItemName   string       `gorm:"not null" json:"item_name"`
	FriendlyID string       `gorm:"column:friendly_id" json:"friendly_id"`
	Category   string       `json:"category"`
	Quantity   int64        `gorm:"not null" json:"quantity"`
	UnitPrice  int64        `gorm:"not null" json:"unit_price"`
	Subtotal   int64        `gorm:"not null" json:"subtotal"`
}

// TableName sets the database table name.
func (SaleItem) TableName() string { return "sale_items" }
