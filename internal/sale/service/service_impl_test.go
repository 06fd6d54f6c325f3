package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/casaantigua/anticuario/internal/client/domain"
	clientrepo "github.com/casaantigua/anticuario/internal/client/repository"
	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	invrepo "github.com/casaantigua/anticuario/internal/inventory/repository"
	"github.com/casaantigua/anticuario/internal/sale/domain"
	"github.com/casaantigua/anticuario/internal/sale/repository"
)

type saleFixture struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	invRepo invdomain.Repository
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&invdomain.Item{},
		&clientdomain.Client{},
		&domain.Sale{},
		&domain.SaleItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ir := invrepo.Provide()
	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		InvRepo: ir,
		CliRepo: clientrepo.Provide(),
	})

	return &saleFixture{svc: svc, db: db, node: node, invRepo: ir}
}

func (f *saleFixture) seedItem(t *testing.T, name string, qty, price int64) *invdomain.Item {
	t.Helper()
	item := &invdomain.Item{
		ID:              f.node.Generate(),
		FriendlyID:      fmt.Sprintf("T%04d", f.node.Generate()%10000),
		Name:            name,
		Category:        "Decoracion",
		InitialQuantity: qty,
		CurrentQuantity: qty,
		UnitPrice:       price,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *saleFixture) stockOf(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	item, err := f.invRepo.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.CurrentQuantity
}

func TestCreateSale_SnapshotsPricesAndDecrementsStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	lamp := f.seedItem(t, "Lampara de bronce", 4, 75_00)
	mirror := f.seedItem(t, "Espejo dorado", 2, 120_00)

	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateSaleLine{
			{ItemID: lamp.ID.String(), Quantity: 2},
			{ItemID: mirror.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, sale.Status)
	assert.Equal(t, int64(2*75_00+120_00), sale.TotalAmount)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "Lampara de bronce", sale.Items[0].ItemName)
	assert.Equal(t, int64(75_00), sale.Items[0].UnitPrice)
	assert.Equal(t, int64(150_00), sale.Items[0].Subtotal)

	assert.Equal(t, int64(2), f.stockOf(t, lamp.ID))
	assert.Equal(t, int64(1), f.stockOf(t, mirror.ID))
}

func TestCreateSale_InsufficientStockLeavesNothingBehind(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	lamp := f.seedItem(t, "Lampara", 5, 50_00)
	vase := f.seedItem(t, "Jarron", 1, 80_00)

	_, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateSaleLine{
			{ItemID: lamp.ID.String(), Quantity: 3},
			{ItemID: vase.ID.String(), Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Compensation restored the first line's stock and removed all rows.
	assert.Equal(t, int64(5), f.stockOf(t, lamp.ID))
	assert.Equal(t, int64(1), f.stockOf(t, vase.ID))

	var saleCount, itemCount int64
	require.NoError(t, f.db.Model(&domain.Sale{}).Count(&saleCount).Error)
	require.NoError(t, f.db.Model(&domain.SaleItem{}).Count(&itemCount).Error)
	assert.Zero(t, saleCount)
	assert.Zero(t, itemCount)
}

func TestCreateSale_UnknownItem(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateSaleLine{
			{ItemID: f.node.Generate().String(), Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCreateSale_Validation(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: "Barter",
		Lines:         []domain.CreateSaleLine{{ItemID: "1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	_, err = f.svc.Create(ctx, domain.CreateSaleRequest{PaymentMethod: domain.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrNoLines)

	item := f.seedItem(t, "Plato", 1, 10_00)
	_, err = f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Create(ctx, domain.CreateSaleRequest{
		ClientID:      f.node.Generate().String(),
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidClient)
}

func TestUpdateStatus_CancelRestoresStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	item := f.seedItem(t, "Reloj de bolsillo", 3, 200_00)

	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.stockOf(t, item.ID))

	updated, err := f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     sale.ID.String(),
		Status: domain.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, int64(3), f.stockOf(t, item.ID))
}

func TestUpdateStatus_TransitionRules(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	item := f.seedItem(t, "Tetera", 2, 40_00)
	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// Pending cannot jump straight to Refunded.
	_, err = f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     sale.ID.String(),
		Status: domain.StatusRefunded,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     sale.ID.String(),
		Status: domain.StatusCompleted,
	})
	require.NoError(t, err)

	refunded, err := f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     sale.ID.String(),
		Status: domain.StatusRefunded,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
	// Refund puts the piece back on the floor.
	assert.Equal(t, int64(2), f.stockOf(t, item.ID))

	// Refunded is terminal.
	_, err = f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     sale.ID.String(),
		Status: domain.StatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreateSale_LineUnitPriceOverride(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	item := f.seedItem(t, "Comoda victoriana", 5, 100_00)

	agreed := int64(50_00)
	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateSaleLine{
			{ItemID: item.ID.String(), Quantity: 2, UnitPrice: &agreed},
		},
	})
	require.NoError(t, err)

	// The negotiated price wins over the listed one.
	require.Len(t, sale.Items, 1)
	assert.Equal(t, int64(50_00), sale.Items[0].UnitPrice)
	assert.Equal(t, int64(100_00), sale.Items[0].Subtotal)
	assert.Equal(t, int64(100_00), sale.TotalAmount)

	bad := int64(-1)
	_, err = f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateSaleLine{
			{ItemID: item.ID.String(), Quantity: 1, UnitPrice: &bad},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	// Without an override the listed price is snapshotted.
	sale, err = f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateSaleLine{
			{ItemID: item.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100_00), sale.Items[0].UnitPrice)
}

func TestCreateSale_ResolvesClientAndSnapshotsItemFields(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	client := &clientdomain.Client{
		ID:   f.node.Generate(),
		Name: "Dolores Vega",
	}
	require.NoError(t, f.db.Create(client).Error)

	item := f.seedItem(t, "Candelabro", 3, 60_00)

	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		ClientID:      client.ID.String(),
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	require.NotNil(t, sale.Client)
	assert.Equal(t, "Dolores Vega", sale.Client.Name)

	require.Len(t, sale.Items, 1)
	assert.Equal(t, item.FriendlyID, sale.Items[0].FriendlyID)
	assert.Equal(t, "Decoracion", sale.Items[0].Category)

	// The snapshots and the client come back on read too.
	fetched, err := f.svc.GetByID(ctx, sale.ID.String())
	require.NoError(t, err)
	require.NotNil(t, fetched.Client)
	assert.Equal(t, "Dolores Vega", fetched.Client.Name)
	assert.Equal(t, item.FriendlyID, fetched.Items[0].FriendlyID)
}

func TestUpdateSale_ReplacesLines(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	lamp := f.seedItem(t, "Lampara", 4, 75_00)
	mirror := f.seedItem(t, "Espejo", 2, 120_00)

	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: lamp.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), f.stockOf(t, lamp.ID))

	newLines := []domain.CreateSaleLine{{ItemID: mirror.ID.String(), Quantity: 1}}
	updated, err := f.svc.Update(ctx, domain.UpdateSaleRequest{
		ID:    sale.ID.String(),
		Lines: &newLines,
	})
	require.NoError(t, err)

	// Old stock restored, new stock taken, total recomputed.
	assert.Equal(t, int64(4), f.stockOf(t, lamp.ID))
	assert.Equal(t, int64(1), f.stockOf(t, mirror.ID))
	assert.Equal(t, int64(120_00), updated.TotalAmount)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Espejo", updated.Items[0].ItemName)

	var lineCount int64
	require.NoError(t, f.db.Model(&domain.SaleItem{}).Where("sale_id = ?", sale.ID).Count(&lineCount).Error)
	assert.Equal(t, int64(1), lineCount)
}

func TestUpdateSale_LinesOnlyWhilePending(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	item := f.seedItem(t, "Baul", 2, 90_00)
	sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     sale.ID.String(),
		Status: domain.StatusCompleted,
	})
	require.NoError(t, err)

	newLines := []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: 2}}
	_, err = f.svc.Update(ctx, domain.UpdateSaleRequest{
		ID:    sale.ID.String(),
		Lines: &newLines,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStats_BreakdownAndAverage(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	item := f.seedItem(t, "Vitrina", 10, 100_00)

	makeSale := func(qty int64, method domain.PaymentMethod) *domain.Sale {
		sale, err := f.svc.Create(ctx, domain.CreateSaleRequest{
			PaymentMethod: method,
			Lines:         []domain.CreateSaleLine{{ItemID: item.ID.String(), Quantity: qty}},
		})
		require.NoError(t, err)
		return sale
	}
	complete := func(sale *domain.Sale) {
		_, err := f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
			ID:     sale.ID.String(),
			Status: domain.StatusCompleted,
		})
		require.NoError(t, err)
	}

	complete(makeSale(1, domain.PaymentCash))     // 100.00
	complete(makeSale(3, domain.PaymentCash))     // 300.00
	makeSale(1, domain.PaymentCheck)              // pending
	cancelled := makeSale(1, domain.PaymentCheck) // cancelled
	_, err := f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:     cancelled.ID.String(),
		Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalSales)
	assert.Equal(t, int64(1), stats.PendingSales)
	assert.Equal(t, int64(2), stats.CompletedSales)
	assert.Equal(t, int64(1), stats.CancelledSales)
	assert.Equal(t, int64(400_00), stats.TotalRevenue)
	assert.Equal(t, int64(200_00), stats.AverageSaleValue)

	byMethod := make(map[domain.PaymentMethod]domain.MethodBreakdown, len(stats.PaymentBreakdown))
	for _, b := range stats.PaymentBreakdown {
		byMethod[b.Method] = b
	}
	assert.Equal(t, int64(2), byMethod[domain.PaymentCash].Count)
	assert.Equal(t, int64(400_00), byMethod[domain.PaymentCash].Revenue)
	assert.Equal(t, int64(2), byMethod[domain.PaymentCheck].Count)
	// Neither check sale completed, so no revenue counts toward it.
	assert.Zero(t, byMethod[domain.PaymentCheck].Revenue)
}
