package domain

import "errors"

var (
	ErrNotFound            = errors.New("item_not_found")
	ErrDuplicateFriendlyID = errors.New("duplicate_friendly_id")
	ErrInsufficientStock   = errors.New("insufficient_stock")
	ErrItemInUse           = errors.New("item_in_use")

	ErrInvalidID         = errors.New("invalid_item_id")
	ErrInvalidFriendlyID = errors.New("invalid_friendly_id")
	ErrInvalidName       = errors.New("invalid_item_name")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidPrice      = errors.New("invalid_unit_price")
)
