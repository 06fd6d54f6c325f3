package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/landing/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListFeatured(ctx context.Context, db *gorm.DB) ([]*invdomain.Item, error) {
	var items []*invdomain.Item
	err := db.WithContext(ctx).
		Where("featured_on_landing = ?", true).
		Order("landing_page_section asc, landing_page_order asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ClearFeatured(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET featured_on_landing = ?,
		     landing_page_section = NULL,
		     landing_page_order = NULL
		 WHERE featured_on_landing = ?`,
		false, true,
	).Error
}

func (r *repo) SetFeatured(ctx context.Context, db *gorm.DB, itemID snowflake.ID, section, order int16, actor string) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET featured_on_landing = ?,
		     landing_page_section = ?,
		     landing_page_order = ?,
		     last_modified_by = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		true, section, order, actor, itemID,
	)
	return res.RowsAffected, res.Error
}
