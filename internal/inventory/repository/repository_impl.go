package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/pkg/db/option"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByFriendlyID(ctx context.Context, db *gorm.DB, friendlyID string) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).
		Where("friendly_id = ?", friendlyID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListItemFilter, page pagination.Pagination) ([]*domain.Item, error) {
	var items []*domain.Item
	stmt := db.WithContext(ctx).Model(&domain.Item{})
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	switch filter.Status {
	case domain.ItemStatusAvailable:
		stmt = stmt.Where("current_quantity > 0")
	case domain.ItemStatusSoldOut:
		stmt = stmt.Where("current_quantity <= 0")
	}
	if filter.Featured != nil {
		stmt = stmt.Where("featured_on_landing = ?", *filter.Featured)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where(
			"name LIKE ? OR description LIKE ? OR friendly_id LIKE ?",
			like, like, like,
		)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":             item.Name,
			"description":      item.Description,
			"category":         item.Category,
			"current_quantity": item.CurrentQuantity,
			"unit_price":       item.UnitPrice,
			"image_urls":       item.ImageURLs,
			"last_modified_by": item.LastModifiedBy,
			"updated_at":       item.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Item{})
	return res.RowsAffected, res.Error
}

func (r *repo) NextFriendlySequence(ctx context.Context, db *gorm.DB, prefix string) (int, error) {
	var max int
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(CAST(SUBSTR(friendly_id, 2) AS INTEGER)), 0)
		 FROM inventory_items WHERE friendly_id LIKE ?`,
		prefix+"%",
	).Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int64) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET current_quantity = current_quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND current_quantity >= ?`,
		qty, id, qty,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) RestoreStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET current_quantity = current_quantity + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		qty, id,
	).Error
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) (*domain.Stats, error) {
	stats := &domain.Stats{ByCategory: map[string]int64{}}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)                                              AS total_items,
		        COALESCE(SUM(CASE WHEN current_quantity > 0 THEN 1 ELSE 0 END), 0) AS available_items,
		        COALESCE(SUM(CASE WHEN current_quantity <= 0 THEN 1 ELSE 0 END), 0) AS sold_out_items,
		        COALESCE(SUM(current_quantity), 0)                    AS total_stock,
		        COALESCE(SUM(current_quantity * unit_price), 0)       AS stock_value
		 FROM inventory_items`,
	).Scan(stats).Error
	if err != nil {
		return nil, err
	}

	rows, err := db.WithContext(ctx).Raw(
		`SELECT category, COUNT(*) AS n FROM inventory_items GROUP BY category`,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var n int64
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = n
	}
	return stats, rows.Err()
}
