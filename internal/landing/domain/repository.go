package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
)

type Repository interface {
	// ListFeatured returns featured items ordered by section then slot.
	ListFeatured(ctx context.Context, db *gorm.DB) ([]*invdomain.Item, error)

	// ClearFeatured removes every item from the landing page.
	ClearFeatured(ctx context.Context, db *gorm.DB) error

	// SetFeatured places one item and reports rows affected; zero rows means
	// the item does not exist.
	SetFeatured(ctx context.Context, db *gorm.DB, itemID snowflake.ID, section, order int16, actor string) (int64, error)
}
