// Package domain contains the landing page curation contracts.
package domain

import (
	"context"
	"errors"

	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
)

const (
	MinSection = 1
	MaxSection = 4
	MinOrder   = 1
	MaxOrder   = 12
)

// Assignment places one item on the landing page.
type Assignment struct {
	ItemID  string `json:"item_id"`
	Section int16  `json:"section"`
	Order   int16  `json:"order"`
}

// UpdateRequest replaces the entire landing layout. Items not listed lose
// their featured flag.
type UpdateRequest struct {
	Assignments []Assignment `json:"assignments"`
	Actor       string       `json:"-"`
}

// Section is one display block of the landing page, ordered by slot.
type Section struct {
	Section int16             `json:"section"`
	Items   []*invdomain.Item `json:"items"`
}

type Service interface {
	Get(ctx context.Context) ([]Section, error)
	Update(ctx context.Context, req UpdateRequest) ([]Section, error)
}

var (
	ErrInvalidItemID     = errors.New("invalid_item_id")
	ErrInvalidSection    = errors.New("invalid_section")
	ErrInvalidOrder      = errors.New("invalid_order")
	ErrDuplicatePosition = errors.New("duplicate_position")
	ErrDuplicateItem     = errors.New("duplicate_item")
	ErrSectionFull       = errors.New("section_full")
	ErrItemNotFound      = errors.New("item_not_found")
)
