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

	"github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/inventory/repository"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreate_GeneratesFriendlyIDFromCategoryPrefix(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Mesa victoriana",
		Category:        "Mobiliario",
		InitialQuantity: 2,
		UnitPrice:       450_00,
	})
	require.NoError(t, err)
	assert.Equal(t, "M0001", first.FriendlyID)
	assert.Equal(t, domain.ItemStatusAvailable, first.Status)

	second, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Silla tapizada",
		Category:        "Mobiliario",
		InitialQuantity: 1,
		UnitPrice:       120_00,
	})
	require.NoError(t, err)
	assert.Equal(t, "M0002", second.FriendlyID)

	// Different category, independent sequence.
	third, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Jarron de porcelana",
		Category:        "Porcelana",
		InitialQuantity: 1,
		UnitPrice:       80_00,
	})
	require.NoError(t, err)
	assert.Equal(t, "P0001", third.FriendlyID)
}

func TestCreate_RejectsDuplicateFriendlyID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Reloj de pared",
		Category:        "Relojes",
		FriendlyID:      "R0042",
		InitialQuantity: 1,
		UnitPrice:       300_00,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Otro reloj",
		Category:        "Relojes",
		FriendlyID:      "R0042",
		InitialQuantity: 1,
		UnitPrice:       90_00,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateFriendlyID)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateItemRequest{Category: "Arte", InitialQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateItemRequest{Name: "Cuadro", Category: "Pinturas"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = svc.Create(ctx, domain.CreateItemRequest{Name: "Cuadro", Category: "Arte", InitialQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Create(ctx, domain.CreateItemRequest{Name: "Cuadro", Category: "Arte", UnitPrice: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateItemRequest{Name: "Cuadro", Category: "Arte", FriendlyID: "bad-id"})
	assert.ErrorIs(t, err, domain.ErrInvalidFriendlyID)
}

func TestDecrementStock_ConditionalAndDisambiguated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Candelabro",
		Category:        "Decoracion",
		InitialQuantity: 3,
		UnitPrice:       60_00,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DecrementStock(ctx, item.ID.String(), 2))

	got, err := svc.GetByID(ctx, domain.GetItemRequest{ID: item.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CurrentQuantity)

	// More than remains: stock untouched.
	err = svc.DecrementStock(ctx, item.ID.String(), 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err = svc.GetByID(ctx, domain.GetItemRequest{ID: item.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CurrentQuantity)

	// Unknown item maps to not-found, not a stock conflict.
	node, _ := snowflake.NewNode(2)
	err = svc.DecrementStock(ctx, node.Generate().String(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockRoundTripDerivesStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Broche art deco",
		Category:        "Joyeria",
		InitialQuantity: 1,
		UnitPrice:       150_00,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DecrementStock(ctx, item.ID.String(), 1))
	got, err := svc.GetByID(ctx, domain.GetItemRequest{ID: item.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusSoldOut, got.Status)

	require.NoError(t, svc.RestoreStock(ctx, item.ID.String(), 1))
	got, err = svc.GetByID(ctx, domain.GetItemRequest{ID: item.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusAvailable, got.Status)
}

func TestGetByFriendlyID_NormalizesCase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Atlas antiguo",
		Category:        "Libros",
		FriendlyID:      "L0007",
		InitialQuantity: 1,
		UnitPrice:       220_00,
	})
	require.NoError(t, err)

	got, err := svc.GetByFriendlyID(ctx, " l0007 ")
	require.NoError(t, err)
	assert.Equal(t, "L0007", got.FriendlyID)

	_, err = svc.GetByFriendlyID(ctx, "L9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
