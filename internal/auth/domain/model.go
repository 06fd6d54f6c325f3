// Package domain contains the user model and authentication contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role gates write access. Viewers only read, clerks run day-to-day
// operations, admins additionally manage users and destructive actions.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClerk  Role = "clerk"
	RoleViewer Role = "viewer"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClerk, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may mutate business data.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleClerk
}

// User is a staff account.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"user_id"`
	Email        string       `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	FullName     string       `gorm:"column:full_name" json:"full_name"`
	Role         Role         `gorm:"not null;default:'viewer'" json:"role"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
