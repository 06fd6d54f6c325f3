// Package domain contains the client book models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is a buyer on record. Email is optional but unique when present,
// so repeat buyers are not double-entered.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"client_id"`
	Name      string       `gorm:"not null;index" json:"name"`
	Email     *string      `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// Stats is the per-client purchase rollup, computed on read.
type Stats struct {
	ClientID       string `json:"client_id"`
	TotalPurchases int64  `json:"total_purchases"`
	TotalSpent     int64  `json:"total_spent"`
	ActivePlans    int64  `json:"active_plans"`
}
