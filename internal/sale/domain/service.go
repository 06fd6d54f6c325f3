package domain

import (
	"context"
	"errors"
	"time"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

// CreateSaleLine is one requested receipt line. UnitPrice overrides the
// item's listed price when set; otherwise the sale snapshots the current
// price from inventory.
type CreateSaleLine struct {
	ItemID    string `json:"item_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice *int64 `json:"unit_price"`
}

type CreateSaleRequest struct {
	ClientID      string           `json:"client_id"`
	SaleDate      *time.Time       `json:"sale_date"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Notes         string           `json:"notes"`
	Lines         []CreateSaleLine `json:"items"`
	Actor         string           `json:"-"`
}

// UpdateSaleRequest edits a sale header. When Lines is present the receipt
// lines are replaced wholesale and the total recomputed.
type UpdateSaleRequest struct {
	ID            string            `json:"-"`
	PaymentMethod *PaymentMethod    `json:"payment_method"`
	Notes         *string           `json:"notes"`
	Lines         *[]CreateSaleLine `json:"items"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status Status `json:"status"`
}

type ListSaleRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	ClientID  string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type ListSaleFilter struct {
	Status   Status
	ClientID string
	DateFrom *time.Time
	DateTo   *time.Time
}

type ListSaleResponse struct {
	pagination.PageInfo
	Sales []*Sale `json:"sales"`
}

// MonthRevenue is one bucket of the trailing revenue series.
type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
	Count   int64  `json:"count"`
}

// MethodBreakdown counts sales per payment method. Revenue only counts
// completed sales.
type MethodBreakdown struct {
	Method  PaymentMethod `json:"method"`
	Count   int64         `json:"count"`
	Revenue int64         `json:"revenue"`
}

// Stats is the sales dashboard rollup. AverageSaleValue is revenue per
// completed sale, in cents.
type Stats struct {
	TotalSales       int64             `json:"total_sales"`
	PendingSales     int64             `json:"pending_sales"`
	CompletedSales   int64             `json:"completed_sales"`
	CancelledSales   int64             `json:"cancelled_sales"`
	TotalRevenue     int64             `json:"total_revenue"`
	AverageSaleValue int64             `json:"average_sale_value"`
	PaymentBreakdown []MethodBreakdown `gorm:"-" json:"payment_breakdown"`
	MonthlyRevenue   []MonthRevenue    `gorm:"-" json:"monthly_revenue"`
}

type Service interface {
	Create(context.Context, CreateSaleRequest) (*Sale, error)
	List(context.Context, ListSaleRequest) (ListSaleResponse, error)
	GetByID(ctx context.Context, id string) (*Sale, error)
	Update(context.Context, UpdateSaleRequest) (*Sale, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (*Sale, error)
	ListByClient(ctx context.Context, clientID string) ([]*Sale, error)
	Stats(context.Context) (*Stats, error)
}

var (
	ErrInvalidID            = errors.New("invalid_sale_id")
	ErrInvalidClient        = errors.New("invalid_client_id")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidStatus        = errors.New("invalid_sale_status")
	ErrInvalidTransition    = errors.New("invalid_status_transition")
	ErrNoLines              = errors.New("sale_requires_items")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidPrice         = errors.New("invalid_unit_price")
	ErrNotFound             = errors.New("sale_not_found")
	ErrItemNotFound         = errors.New("sale_item_not_found")
	ErrInsufficientStock    = errors.New("insufficient_stock")
)
