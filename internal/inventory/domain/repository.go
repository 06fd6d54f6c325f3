package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Item, error)
	FindByFriendlyID(ctx context.Context, db *gorm.DB, friendlyID string) (*Item, error)
	List(ctx context.Context, db *gorm.DB, filter ListItemFilter, page pagination.Pagination) ([]*Item, error)
	Update(ctx context.Context, db *gorm.DB, item *Item) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	// NextFriendlySequence returns the highest numeric suffix already issued
	// for the prefix, or zero when none exists.
	NextFriendlySequence(ctx context.Context, db *gorm.DB, prefix string) (int, error)

	// DecrementStock conditionally subtracts qty from current_quantity and
	// reports the number of rows affected. Zero rows means the item is
	// missing or short on stock.
	DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int64) (int64, error)
	RestoreStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int64) error

	Stats(ctx context.Context, db *gorm.DB) (*Stats, error)
}
