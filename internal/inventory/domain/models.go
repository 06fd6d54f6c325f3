// Package domain contains persistence models and contracts for inventory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemStatus is derived from the current quantity and never caller-set.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "Available"
	ItemStatusSoldOut   ItemStatus = "Sold-Out"
)

// ImageRef points at an uploaded item photo. URLs are opaque; the upload
// pipeline lives outside this service.
type ImageRef struct {
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
}

// Item is a single piece of merchandise.
type Item struct {
	ID              snowflake.ID                     `gorm:"primaryKey" json:"item_id"`
	FriendlyID      string                           `gorm:"not null;uniqueIndex" json:"friendly_id"`
	Name            string                           `gorm:"not null" json:"item_name"`
	Description     string                           `gorm:"type:text" json:"description,omitempty"`
	Category        string                           `gorm:"not null;index" json:"category"`
	InitialQuantity int64                            `gorm:"not null" json:"initial_quantity"`
	CurrentQuantity int64                            `gorm:"not null;index" json:"current_quantity"`
	UnitPrice       int64                            `gorm:"not null" json:"unit_price"`
	Status          ItemStatus                       `gorm:"-" json:"status"`
	ImageURLs       datatypes.JSONSlice[ImageRef]    `gorm:"column:image_urls" json:"image_urls,omitempty"`
	Featured        bool                             `gorm:"column:featured_on_landing;not null;default:false;index" json:"featured_on_landing"`
	LandingSection  *int16                           `gorm:"column:landing_page_section" json:"landing_page_section,omitempty"`
	LandingOrder    *int16                           `gorm:"column:landing_page_order" json:"landing_page_order,omitempty"`
	LastModifiedBy  string                           `gorm:"column:last_modified_by" json:"last_modified_by,omitempty"`
	CreatedAt       time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Item) TableName() string { return "inventory_items" }

// AfterFind derives the sold-out status from the stored quantity.
func (i *Item) AfterFind(*gorm.DB) error {
	i.Status = i.DerivedStatus()
	return nil
}

// DerivedStatus returns Sold-Out when nothing is left in stock.
func (i *Item) DerivedStatus() ItemStatus {
	if i.CurrentQuantity <= 0 {
		return ItemStatusSoldOut
	}
	return ItemStatusAvailable
}
