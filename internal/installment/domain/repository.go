package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type Repository interface {
	InsertPlan(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	ListPlans(ctx context.Context, db *gorm.DB, filter ListPlanFilter, page pagination.Pagination) ([]*Plan, error)
	PlansBySale(ctx context.Context, db *gorm.DB, saleID snowflake.ID) ([]*Plan, error)
	PlansByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]*Plan, error)
	ActivePlans(ctx context.Context, db *gorm.DB) ([]*Plan, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, plan *Plan) error
	DeletePlan(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListPayments(ctx context.Context, db *gorm.DB, planID snowflake.ID) ([]*Payment, error)
	UpdatePayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	DeletePayment(ctx context.Context, db *gorm.DB, planID, paymentID snowflake.ID) (int64, error)
}
