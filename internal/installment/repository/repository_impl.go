package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/installment/domain"
	"github.com/casaantigua/anticuario/pkg/db/option"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPlan(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Omit("Payments").Create(plan).Error
}

func (r *repo) FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_number asc, id asc")
		}).
		Where("id = ?", id).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repo) ListPlans(ctx context.Context, db *gorm.DB, filter domain.ListPlanFilter, page pagination.Pagination) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	stmt := db.WithContext(ctx).Model(&domain.Plan{}).Preload("Payments")
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) PlansBySale(ctx context.Context, db *gorm.DB, saleID snowflake.ID) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	err := db.WithContext(ctx).
		Preload("Payments").
		Where("sale_id = ?", saleID).
		Order("created_at desc").
		Find(&plans).Error
	return plans, err
}

func (r *repo) PlansByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	err := db.WithContext(ctx).
		Preload("Payments").
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&plans).Error
	return plans, err
}

func (r *repo) ActivePlans(ctx context.Context, db *gorm.DB) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	err := db.WithContext(ctx).
		Preload("Payments").
		Where("status = ?", domain.PlanActive).
		Order("start_date asc").
		Find(&plans).Error
	return plans, err
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).
		Model(&domain.Plan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]any{
			"status":     plan.Status,
			"notes":      plan.Notes,
			"updated_at": plan.UpdatedAt,
		}).Error
}

// DeletePlan removes the plan and its recorded payments together.
func (r *repo) DeletePlan(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).
		Where("plan_id = ?", id).
		Delete(&domain.Payment{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Plan{}).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND plan_id = ?", payment.ID, payment.PlanID).
		Updates(map[string]any{
			"amount":         payment.Amount,
			"payment_date":   payment.PaymentDate,
			"payment_method": payment.PaymentMethod,
			"notes":          payment.Notes,
		}).Error
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, planID snowflake.ID) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("payment_number asc, id asc").
		Find(&payments).Error
	return payments, err
}

func (r *repo) DeletePayment(ctx context.Context, db *gorm.DB, planID, paymentID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND plan_id = ?", paymentID, planID).
		Delete(&domain.Payment{})
	return res.RowsAffected, res.Error
}
