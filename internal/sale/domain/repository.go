package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type Repository interface {
	InsertHeader(ctx context.Context, db *gorm.DB, sale *Sale) error
	InsertItems(ctx context.Context, db *gorm.DB, items []SaleItem) error
	DeleteHeader(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteItems(ctx context.Context, db *gorm.DB, saleID snowflake.ID) error

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, filter ListSaleFilter, page pagination.Pagination) ([]*Sale, error)
	ListByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]*Sale, error)
	UpdateHeader(ctx context.Context, db *gorm.DB, sale *Sale) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error

	Stats(ctx context.Context, db *gorm.DB) (*Stats, error)
}
