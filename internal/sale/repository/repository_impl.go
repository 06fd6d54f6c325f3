package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/sale/domain"
	"github.com/casaantigua/anticuario/pkg/db/option"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertHeader(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Omit("Items", "Client").Create(sale).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) DeleteHeader(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Sale{}).Error
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, saleID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Delete(&domain.SaleItem{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Client").
		Where("id = ?", id).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSaleFilter, page pagination.Pagination) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	stmt := db.WithContext(ctx).Model(&domain.Sale{}).Preload("Items").Preload("Client")
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("sale_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("sale_date <= ?", *filter.DateTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) ListByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Client").
		Where("client_id = ?", clientID).
		Order("sale_date desc, id desc").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) UpdateHeader(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"payment_method": sale.PaymentMethod,
			"notes":          sale.Notes,
			"total_amount":   sale.TotalAmount,
			"updated_at":     sale.UpdatedAt,
		}).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	return db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) (*domain.Stats, error) {
	stats := &domain.Stats{}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_sales,
		        COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0)   AS pending_sales,
		        COALESCE(SUM(CASE WHEN status = 'Completed' THEN 1 ELSE 0 END), 0) AS completed_sales,
		        COALESCE(SUM(CASE WHEN status = 'Cancelled' THEN 1 ELSE 0 END), 0) AS cancelled_sales,
		        COALESCE(SUM(CASE WHEN status = 'Completed' THEN total_amount ELSE 0 END), 0) AS total_revenue
		 FROM sales`,
	).Scan(stats).Error
	if err != nil {
		return nil, err
	}
	if stats.CompletedSales > 0 {
		stats.AverageSaleValue = stats.TotalRevenue / stats.CompletedSales
	}

	methodRows, err := db.WithContext(ctx).Raw(
		`SELECT payment_method,
		        COUNT(*) AS count,
		        COALESCE(SUM(CASE WHEN status = 'Completed' THEN total_amount ELSE 0 END), 0) AS revenue
		 FROM sales
		 GROUP BY payment_method
		 ORDER BY payment_method`,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer methodRows.Close()
	for methodRows.Next() {
		var b domain.MethodBreakdown
		if err := methodRows.Scan(&b.Method, &b.Count, &b.Revenue); err != nil {
			return nil, err
		}
		stats.PaymentBreakdown = append(stats.PaymentBreakdown, b)
	}
	if err := methodRows.Err(); err != nil {
		return nil, err
	}

	monthExpr := "strftime('%Y-%m', sale_date)"
	switch db.Dialector.Name() {
	case "postgres":
		monthExpr = "to_char(sale_date, 'YYYY-MM')"
	case "mysql":
		monthExpr = "DATE_FORMAT(sale_date, '%Y-%m')"
	}

	since := time.Now().UTC().AddDate(-1, 0, 0)
	rows, err := db.WithContext(ctx).Raw(
		`SELECT `+monthExpr+` AS month,
		        COALESCE(SUM(total_amount), 0) AS revenue,
		        COUNT(*) AS count
		 FROM sales
		 WHERE status = 'Completed' AND sale_date >= ?
		 GROUP BY month
		 ORDER BY month`,
		since,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.MonthRevenue
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Count); err != nil {
			return nil, err
		}
		stats.MonthlyRevenue = append(stats.MonthlyRevenue, m)
	}
	return stats, rows.Err()
}
