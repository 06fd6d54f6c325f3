package domain

import (
	"context"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type CreateItemRequest struct {
	Name            string     `json:"item_name"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	InitialQuantity int64      `json:"initial_quantity"`
	UnitPrice       int64      `json:"unit_price"`
	ImageURLs       []ImageRef `json:"image_urls"`
	FriendlyID      string     `json:"friendly_id"`
	Actor           string     `json:"-"`
}

type UpdateItemRequest struct {
	ID              string      `json:"-"`
	Name            *string     `json:"item_name"`
	Description     *string     `json:"description"`
	Category        *string     `json:"category"`
	CurrentQuantity *int64      `json:"current_quantity"`
	UnitPrice       *int64      `json:"unit_price"`
	ImageURLs       *[]ImageRef `json:"image_urls"`
	Actor           string      `json:"-"`
}

type ListItemRequest struct {
	PageToken string
	PageSize  int32
	Category  string
	Status    string
	Featured  *bool
	Search    string
}

type ListItemFilter struct {
	Category string
	Status   ItemStatus
	Featured *bool
	Search   string
}

type ListItemResponse struct {
	pagination.PageInfo
	Items []*Item `json:"items"`
}

type GetItemRequest struct {
	ID string
}

// Stats is the inventory dashboard rollup.
type Stats struct {
	TotalItems     int64            `json:"total_items"`
	AvailableItems int64            `json:"available_items"`
	SoldOutItems   int64            `json:"sold_out_items"`
	TotalStock     int64            `json:"total_stock"`
	StockValue     int64            `json:"stock_value"`
	ByCategory     map[string]int64 `json:"by_category"`
}

type Service interface {
	Create(context.Context, CreateItemRequest) (*Item, error)
	List(context.Context, ListItemRequest) (ListItemResponse, error)
	GetByID(context.Context, GetItemRequest) (*Item, error)
	GetByFriendlyID(context.Context, string) (*Item, error)
	Update(context.Context, UpdateItemRequest) (*Item, error)
	Delete(ctx context.Context, id string, actor string) error
	Stats(context.Context) (*Stats, error)

	DecrementStock(ctx context.Context, id string, qty int64) error
	RestoreStock(ctx context.Context, id string, qty int64) error
}
