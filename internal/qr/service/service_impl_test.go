package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/config"
	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	invrepo "github.com/casaantigua/anticuario/internal/inventory/repository"
	"github.com/casaantigua/anticuario/internal/qr/domain"
)

type qrFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newQRFixture(t *testing.T) *qrFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invdomain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		Config:  config.Config{PublicBaseURL: "https://tienda.example.com"},
		DB:      db,
		Log:     zap.NewNop(),
		InvRepo: invrepo.Provide(),
	})

	return &qrFixture{svc: svc, db: db, node: node}
}

func (f *qrFixture) seedItem(t *testing.T) *invdomain.Item {
	t.Helper()
	item := &invdomain.Item{
		ID:              f.node.Generate(),
		FriendlyID:      "C0001",
		Name:            "Copa de cristal",
		Description:     "Cristal tallado, ca. 1920",
		Category:        "Cristal",
		InitialQuantity: 6,
		CurrentQuantity: 6,
		UnitPrice:       35_50,
		LastModifiedBy:  "clerk@example.com",
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func TestRender_Formats(t *testing.T) {
	f := newQRFixture(t)
	ctx := context.Background()
	item := f.seedItem(t)

	png, err := f.svc.Render(ctx, domain.RenderRequest{ItemID: item.ID.String(), Format: domain.FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, "image/png", png.ContentType)
	assert.Equal(t, "C0001.png", png.FileName)
	assert.True(t, bytes.HasPrefix(png.Data, []byte("\x89PNG")))

	svg, err := f.svc.Render(ctx, domain.RenderRequest{ItemID: item.ID.String(), Format: domain.FormatSVG})
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", svg.ContentType)
	assert.Contains(t, string(svg.Data), "<svg")

	pdf, err := f.svc.Render(ctx, domain.RenderRequest{ItemID: item.ID.String(), Format: domain.FormatPDF})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF")))
}

func TestRender_Validation(t *testing.T) {
	f := newQRFixture(t)
	ctx := context.Background()
	item := f.seedItem(t)

	_, err := f.svc.Render(ctx, domain.RenderRequest{ItemID: item.ID.String(), Format: "gif"})
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	_, err = f.svc.Render(ctx, domain.RenderRequest{ItemID: item.ID.String(), Format: domain.FormatPNG, Size: 32})
	assert.ErrorIs(t, err, domain.ErrInvalidSize)

	_, err = f.svc.Render(ctx, domain.RenderRequest{ItemID: item.ID.String(), Format: domain.FormatPNG, Size: 4096})
	assert.ErrorIs(t, err, domain.ErrInvalidSize)

	_, err = f.svc.Render(ctx, domain.RenderRequest{ItemID: f.node.Generate().String(), Format: domain.FormatPNG})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestView_ExposesOnlyPublicFields(t *testing.T) {
	f := newQRFixture(t)
	ctx := context.Background()
	item := f.seedItem(t)

	view, err := f.svc.View(ctx, item.ID.String())
	require.NoError(t, err)

	assert.Equal(t, item.ID.String(), view.ItemID)
	assert.Equal(t, "C0001", view.FriendlyID)
	assert.Equal(t, "Copa de cristal", view.ItemName)
	assert.Equal(t, int64(35_50), view.UnitPrice)
	assert.Equal(t, invdomain.ItemStatusAvailable, view.Status)

	_, err = f.svc.View(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
