package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/client/domain"
	"github.com/casaantigua/anticuario/pkg/db/option"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Create(client).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := db.WithContext(ctx).Model(&domain.Client{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where(
			"name LIKE ? OR email LIKE ? OR phone LIKE ?",
			like, like, like,
		)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("id = ?", client.ID).
		Updates(map[string]any{
			"name":       client.Name,
			"email":      client.Email,
			"phone":      client.Phone,
			"address":    client.Address,
			"notes":      client.Notes,
			"updated_at": client.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Client{})
	return res.RowsAffected, res.Error
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Stats, error) {
	stats := &domain.Stats{ClientID: id.String()}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)                     AS total_purchases,
		        COALESCE(SUM(total_amount), 0) AS total_spent
		 FROM sales
		 WHERE client_id = ? AND status != 'Cancelled'`,
		id,
	).Row().Scan(&stats.TotalPurchases, &stats.TotalSpent)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM installment_plans
		 WHERE client_id = ? AND status = 'active'`,
		id,
	).Row().Scan(&stats.ActivePlans)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
