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

	"github.com/casaantigua/anticuario/internal/cache"
	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/landing/domain"
	"github.com/casaantigua/anticuario/internal/landing/repository"
)

type landingFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newLandingFixture(t *testing.T) *landingFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invdomain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Cache: &cache.Cache{},
	})

	return &landingFixture{svc: svc, db: db, node: node}
}

func (f *landingFixture) seedItem(t *testing.T, name string) *invdomain.Item {
	t.Helper()
	item := &invdomain.Item{
		ID:              f.node.Generate(),
		FriendlyID:      fmt.Sprintf("D%04d", f.node.Generate()%10000),
		Name:            name,
		Category:        "Decoracion",
		InitialQuantity: 1,
		CurrentQuantity: 1,
		UnitPrice:       50_00,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func TestUpdate_ReplacesLayout(t *testing.T) {
	f := newLandingFixture(t)
	ctx := context.Background()

	a := f.seedItem(t, "Espejo")
	b := f.seedItem(t, "Cuadro")
	c := f.seedItem(t, "Figura")

	sections, err := f.svc.Update(ctx, domain.UpdateRequest{
		Assignments: []domain.Assignment{
			{ItemID: a.ID.String(), Section: 1, Order: 1},
			{ItemID: b.ID.String(), Section: 1, Order: 2},
			{ItemID: c.ID.String(), Section: 3, Order: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, sections, domain.MaxSection)
	assert.Len(t, sections[0].Items, 2)
	assert.Len(t, sections[2].Items, 1)

	// A second update drops items not listed.
	sections, err = f.svc.Update(ctx, domain.UpdateRequest{
		Assignments: []domain.Assignment{
			{ItemID: b.ID.String(), Section: 2, Order: 5},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, sections[0].Items)
	require.Len(t, sections[1].Items, 1)
	assert.Equal(t, b.ID, sections[1].Items[0].ID)

	var cleared invdomain.Item
	require.NoError(t, f.db.First(&cleared, "id = ?", a.ID).Error)
	assert.False(t, cleared.Featured)
	assert.Nil(t, cleared.LandingSection)
}

func TestUpdate_BadAssignmentRejectsWholeBatch(t *testing.T) {
	f := newLandingFixture(t)
	ctx := context.Background()

	a := f.seedItem(t, "Espejo")

	_, err := f.svc.Update(ctx, domain.UpdateRequest{
		Assignments: []domain.Assignment{{ItemID: a.ID.String(), Section: 1, Order: 1}},
	})
	require.NoError(t, err)

	// One unknown item in the batch: the existing layout must survive.
	_, err = f.svc.Update(ctx, domain.UpdateRequest{
		Assignments: []domain.Assignment{
			{ItemID: a.ID.String(), Section: 2, Order: 1},
			{ItemID: f.node.Generate().String(), Section: 2, Order: 2},
		},
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	sections, err := f.svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, sections[0].Items, 1)
	assert.Equal(t, a.ID, sections[0].Items[0].ID)
}

func TestUpdate_Validation(t *testing.T) {
	f := newLandingFixture(t)
	ctx := context.Background()
	id := f.node.Generate().String()
	other := f.node.Generate().String()

	cases := []struct {
		name        string
		assignments []domain.Assignment
		want        error
	}{
		{"bad item id", []domain.Assignment{{ItemID: "nope", Section: 1, Order: 1}}, domain.ErrInvalidItemID},
		{"section too low", []domain.Assignment{{ItemID: id, Section: 0, Order: 1}}, domain.ErrInvalidSection},
		{"section too high", []domain.Assignment{{ItemID: id, Section: 5, Order: 1}}, domain.ErrInvalidSection},
		{"order too high", []domain.Assignment{{ItemID: id, Section: 1, Order: 13}}, domain.ErrInvalidOrder},
		{"duplicate item", []domain.Assignment{
			{ItemID: id, Section: 1, Order: 1},
			{ItemID: id, Section: 2, Order: 1},
		}, domain.ErrDuplicateItem},
		{"duplicate position", []domain.Assignment{
			{ItemID: id, Section: 1, Order: 1},
			{ItemID: other, Section: 1, Order: 1},
		}, domain.ErrDuplicatePosition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, domain.UpdateRequest{Assignments: tc.assignments})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGet_CapsSectionAtMaxOrder(t *testing.T) {
	f := newLandingFixture(t)
	ctx := context.Background()

	// Rows flagged outside the service, e.g. by a bulk import, can
	// exceed the per-section cap. Reads must still honor it.
	for i := 0; i < domain.MaxOrder+1; i++ {
		item := f.seedItem(t, fmt.Sprintf("Pieza %d", i))
		require.NoError(t, f.db.Model(item).Updates(map[string]interface{}{
			"featured_on_landing":  true,
			"landing_page_section": int16(1),
			"landing_page_order":   int16(i + 1),
		}).Error)
	}

	sections, err := f.svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, sections, domain.MaxSection)
	assert.Len(t, sections[0].Items, domain.MaxOrder)
}
