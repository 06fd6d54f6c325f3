package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/johnfercher/maroto/v2"
	marotocode "github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/config"
	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/observability/metrics"
	"github.com/casaantigua/anticuario/internal/qr/domain"
)

const (
	defaultSize = 256
	maxSize     = 2048
)

type Params struct {
	fx.In

	Config  config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	InvRepo invdomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	cfg     config.Config
	db      *gorm.DB
	log     *zap.Logger
	invRepo invdomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		cfg:     p.Config,
		db:      p.DB,
		log:     p.Log.Named("qr.service"),
		invRepo: p.InvRepo,
		metrics: p.Metrics,
	}
}

func (s *Service) Render(ctx context.Context, req domain.RenderRequest) (*domain.RenderResult, error) {
	if !req.Format.IsValid() {
		return nil, domain.ErrInvalidFormat
	}
	size := req.Size
	if size == 0 {
		size = defaultSize
	}
	if size < 64 || size > maxSize {
		return nil, domain.ErrInvalidSize
	}

	item, err := s.findItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	target := s.publicURL(item.ID)
	var result *domain.RenderResult
	switch req.Format {
	case domain.FormatPNG:
		data, err := qrcode.Encode(target, qrcode.Medium, size)
		if err != nil {
			return nil, err
		}
		result = &domain.RenderResult{
			Data:        data,
			ContentType: "image/png",
			FileName:    item.FriendlyID + ".png",
		}
	case domain.FormatSVG:
		data, err := renderSVG(target, size)
		if err != nil {
			return nil, err
		}
		result = &domain.RenderResult{
			Data:        data,
			ContentType: "image/svg+xml",
			FileName:    item.FriendlyID + ".svg",
		}
	case domain.FormatPDF:
		data, err := s.renderPDF(item, target)
		if err != nil {
			return nil, err
		}
		result = &domain.RenderResult{
			Data:        data,
			ContentType: "application/pdf",
			FileName:    item.FriendlyID + ".pdf",
		}
	}

	if s.metrics != nil {
		s.metrics.RecordQRRender(ctx, string(req.Format))
	}
	return result, nil
}

func (s *Service) View(ctx context.Context, rawID string) (*domain.PublicView, error) {
	item, err := s.findItem(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return &domain.PublicView{
		ItemID:      item.ID.String(),
		FriendlyID:  item.FriendlyID,
		ItemName:    item.Name,
		Description: item.Description,
		Category:    item.Category,
		UnitPrice:   item.UnitPrice,
		Status:      item.DerivedStatus(),
		ImageURLs:   item.ImageURLs,
	}, nil
}

func (s *Service) findItem(ctx context.Context, rawID string) (*invdomain.Item, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidItemID
	}
	item, err := s.invRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *Service) publicURL(id snowflake.ID) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return fmt.Sprintf("%s/api/qr/%s/view", base, id)
}

// renderSVG emits the QR matrix as one rect per dark module. Viewers scale
// it losslessly, so the requested size only sets the viewport.
func renderSVG(content string, size int) ([]byte, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	grid := code.Bitmap()
	n := len(grid)

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, n, n,
	)
	buf.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	for y, row := range grid {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// renderPDF produces a printable shelf label: name, friendly ID, price and
// the scannable code.
func (s *Service) renderPDF(item *invdomain.Item, target string) ([]byte, error) {
	cfg := marotocfg.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(16,
		text.NewCol(12, item.Name, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, item.FriendlyID, props.Text{
			Size:  12,
			Align: align.Center,
		}),
	)
	m.AddRow(80,
		col.New(3),
		marotocode.NewQrCol(6, target, props.Rect{
			Center:  true,
			Percent: 100,
		}),
		col.New(3),
	)
	m.AddRow(12,
		text.NewCol(12, formatPrice(item.UnitPrice), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
