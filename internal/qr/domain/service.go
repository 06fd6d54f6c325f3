// Package domain contains the QR label contracts.
package domain

import (
	"context"
	"errors"

	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
)

// Format selects the label output.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// IsValid reports whether the format is one of the known values.
func (f Format) IsValid() bool {
	switch f {
	case FormatPNG, FormatSVG, FormatPDF:
		return true
	}
	return false
}

type RenderRequest struct {
	ItemID string
	Format Format
	Size   int
}

// RenderResult is the encoded label plus its MIME type.
type RenderResult struct {
	Data        []byte
	ContentType string
	FileName    string
}

// PublicView is the item projection exposed to anyone scanning a label.
// It is a strict allow-list: no quantities, no audit fields, no margins.
type PublicView struct {
	ItemID      string               `json:"item_id"`
	FriendlyID  string               `json:"friendly_id"`
	ItemName    string               `json:"item_name"`
	Description string               `json:"description,omitempty"`
	Category    string               `json:"category"`
	UnitPrice   int64                `json:"unit_price"`
	Status      invdomain.ItemStatus `json:"status"`
	ImageURLs   []invdomain.ImageRef `json:"image_urls,omitempty"`
}

type Service interface {
	Render(context.Context, RenderRequest) (*RenderResult, error)
	View(ctx context.Context, itemID string) (*PublicView, error)
}

var (
	ErrInvalidItemID = errors.New("invalid_item_id")
	ErrInvalidFormat = errors.New("invalid_format")
	ErrInvalidSize   = errors.New("invalid_size")
	ErrItemNotFound  = errors.New("item_not_found")
)
