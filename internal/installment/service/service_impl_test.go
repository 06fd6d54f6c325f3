package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/installment/domain"
	"github.com/casaantigua/anticuario/internal/installment/repository"
	saledomain "github.com/casaantigua/anticuario/internal/sale/domain"
	salerepo "github.com/casaantigua/anticuario/internal/sale/repository"
)

type planFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&saledomain.Sale{},
		&saledomain.SaleItem{},
		&domain.Plan{},
		&domain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		SaleRepo: salerepo.Provide(),
	})

	return &planFixture{svc: svc, db: db, node: node}
}

func (f *planFixture) seedSale(t *testing.T, total int64) *saledomain.Sale {
	t.Helper()
	clientID := f.node.Generate()
	sale := &saledomain.Sale{
		ID:            f.node.Generate(),
		ClientID:      &clientID,
		SaleDate:      time.Now().UTC(),
		TotalAmount:   total,
		PaymentMethod: saledomain.PaymentInstallments,
		Status:        saledomain.StatusPending,
	}
	require.NoError(t, f.db.Create(sale).Error)
	return sale
}

func TestCreatePlan_FallsBackToSaleClient(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 600_00)

	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      600_00,
		DownPayment:      100_00,
		NumberOfPayments: 5,
		Frequency:        domain.FrequencyBiweekly,
	})
	require.NoError(t, err)

	assert.Equal(t, *sale.ClientID, plan.ClientID)
	assert.Equal(t, domain.PlanActive, plan.Status)
	require.NotNil(t, plan.Summary)
	assert.Equal(t, int64(100_00), plan.Summary.InstallmentAmount)
}

func TestCreatePlan_Validation(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 100_00)

	_, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           f.node.Generate().String(),
		TotalAmount:      100_00,
		NumberOfPayments: 2,
		Frequency:        domain.FrequencyWeekly,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSale)

	_, err = f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      100_00,
		DownPayment:      150_00,
		NumberOfPayments: 2,
		Frequency:        domain.FrequencyWeekly,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      100_00,
		NumberOfPayments: 0,
		Frequency:        domain.FrequencyWeekly,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)

	_, err = f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      100_00,
		NumberOfPayments: 2,
		Frequency:        "yearly",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
}

func TestRecordPayment_AutoCompletesAtZeroBalance(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 200_00)

	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      200_00,
		NumberOfPayments: 2,
		Frequency:        domain.FrequencyWeekly,
	})
	require.NoError(t, err)

	plan, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 100_00,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, plan.Status)
	require.NotNil(t, plan.Summary)
	assert.Equal(t, int64(100_00), plan.Summary.RemainingBalance)

	plan, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 100_00,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, plan.Status)

	// A completed plan takes no further payments.
	_, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 10_00,
	})
	assert.ErrorIs(t, err, domain.ErrPlanNotActive)
}

func TestDeletePayment_ReopensCompletedPlan(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 100_00)

	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      100_00,
		NumberOfPayments: 1,
		Frequency:        domain.FrequencyMonthly,
	})
	require.NoError(t, err)

	plan, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 100_00,
	})
	require.NoError(t, err)
	require.Equal(t, domain.PlanCompleted, plan.Status)

	payments, err := f.svc.ListPayments(ctx, plan.ID.String())
	require.NoError(t, err)
	require.Len(t, payments, 1)

	plan, err = f.svc.DeletePayment(ctx, plan.ID.String(), payments[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, plan.Status)
	require.NotNil(t, plan.Summary)
	assert.Equal(t, int64(100_00), plan.Summary.RemainingBalance)
}

func TestOverdue_DerivedFromSchedule(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 300_00)

	past := time.Now().UTC().AddDate(0, -2, 0)
	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      300_00,
		NumberOfPayments: 3,
		Frequency:        domain.FrequencyWeekly,
		StartDate:        &past,
	})
	require.NoError(t, err)

	overdue, err := f.svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, plan.ID, overdue[0].ID)
	require.NotNil(t, overdue[0].Summary)
	assert.True(t, overdue[0].Summary.IsOverdue)
	assert.Equal(t, domain.PlanOverdue, overdue[0].Summary.EffectiveStatus)
	// The stored row still says active.
	assert.Equal(t, domain.PlanActive, overdue[0].Status)
}

func TestRecordPayment_AssignsSequentialReceiptNumbers(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 500_00)

	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      500_00,
		NumberOfPayments: 5,
		Frequency:        domain.FrequencyWeekly,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
			PlanID: plan.ID.String(),
			Amount: 50_00,
		})
		require.NoError(t, err)
	}

	payments, err := f.svc.ListPayments(ctx, plan.ID.String())
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, 1, payments[0].PaymentNumber)
	assert.Equal(t, 2, payments[1].PaymentNumber)
	assert.Equal(t, 3, payments[2].PaymentNumber)

	// A deleted receipt's number is never reissued.
	_, err = f.svc.DeletePayment(ctx, plan.ID.String(), payments[1].ID.String())
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 50_00,
	})
	require.NoError(t, err)

	payments, err = f.svc.ListPayments(ctx, plan.ID.String())
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, 4, payments[len(payments)-1].PaymentNumber)
}

func TestDeletePlan_RemovesPayments(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 200_00)

	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      200_00,
		NumberOfPayments: 2,
		Frequency:        domain.FrequencyMonthly,
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 100_00,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePlan(ctx, plan.ID.String()))

	_, err = f.svc.GetPlan(ctx, plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	var orphaned int64
	require.NoError(t, f.db.Model(&domain.Payment{}).Where("plan_id = ?", plan.ID).Count(&orphaned).Error)
	assert.Zero(t, orphaned)

	err = f.svc.DeletePlan(ctx, plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestUpdatePayment_RebalancesPlanStatus(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()
	sale := f.seedSale(t, 200_00)

	plan, err := f.svc.CreatePlan(ctx, domain.CreatePlanRequest{
		SaleID:           sale.ID.String(),
		TotalAmount:      200_00,
		NumberOfPayments: 2,
		Frequency:        domain.FrequencyWeekly,
	})
	require.NoError(t, err)

	plan, err = f.svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		PlanID: plan.ID.String(),
		Amount: 150_00,
	})
	require.NoError(t, err)
	require.Equal(t, domain.PlanActive, plan.Status)

	payments, err := f.svc.ListPayments(ctx, plan.ID.String())
	require.NoError(t, err)
	require.Len(t, payments, 1)

	// Correcting the amount upward settles the balance and completes the plan.
	full := int64(200_00)
	plan, err = f.svc.UpdatePayment(ctx, domain.UpdatePaymentRequest{
		PlanID:    plan.ID.String(),
		PaymentID: payments[0].ID.String(),
		Amount:    &full,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, plan.Status)
	require.NotNil(t, plan.Summary)
	assert.Zero(t, plan.Summary.RemainingBalance)

	// Correcting it back down reopens the plan.
	partial := int64(50_00)
	plan, err = f.svc.UpdatePayment(ctx, domain.UpdatePaymentRequest{
		PlanID:    plan.ID.String(),
		PaymentID: payments[0].ID.String(),
		Amount:    &partial,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, plan.Status)
	assert.Equal(t, int64(150_00), plan.Summary.RemainingBalance)

	zero := int64(0)
	_, err = f.svc.UpdatePayment(ctx, domain.UpdatePaymentRequest{
		PlanID:    plan.ID.String(),
		PaymentID: payments[0].ID.String(),
		Amount:    &zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.UpdatePayment(ctx, domain.UpdatePaymentRequest{
		PlanID:    plan.ID.String(),
		PaymentID: f.node.Generate().String(),
		Amount:    &partial,
	})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
