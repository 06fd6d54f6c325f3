// Package export builds XLSX workbooks for offline bookkeeping.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	saledomain "github.com/casaantigua/anticuario/internal/sale/domain"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

var Module = fx.Module("export",
	fx.Provide(New),
)

func New(p Params) *Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("export"),
	}
}

// Inventory writes every item to a single-sheet workbook.
func (s *Service) Inventory(ctx context.Context) ([]byte, error) {
	var items []*invdomain.Item
	err := s.db.WithContext(ctx).
		Order("friendly_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Friendly ID", "Name", "Category", "Status",
		"Initial Qty", "Current Qty", "Unit Price", "Stock Value",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, item := range items {
		values := []any{
			item.FriendlyID,
			item.Name,
			item.Category,
			string(item.DerivedStatus()),
			item.InitialQuantity,
			item.CurrentQuantity,
			cents(item.UnitPrice),
			cents(item.CurrentQuantity * item.UnitPrice),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "A", "H", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	s.log.Info("inventory exported", zap.Int("rows", len(items)))
	return buf.Bytes(), nil
}

// Sales writes sales in the window to a workbook, one row per receipt line
// so totals can be pivoted by item.
func (s *Service) Sales(ctx context.Context, from, to *time.Time) ([]byte, error) {
	stmt := s.db.WithContext(ctx).Preload("Items")
	if from != nil {
		stmt = stmt.Where("sale_date >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("sale_date <= ?", *to)
	}

	var sales []*saledomain.Sale
	if err := stmt.Order("sale_date asc").Find(&sales).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sales"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Sale ID", "Date", "Status", "Payment Method",
		"Item", "Qty", "Unit Price", "Subtotal", "Sale Total",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, sale := range sales {
		for _, it := range sale.Items {
			values := []any{
				sale.ID.String(),
				sale.SaleDate.Format("2006-01-02"),
				string(sale.Status),
				string(sale.PaymentMethod),
				it.ItemName,
				it.Quantity,
				cents(it.UnitPrice),
				cents(it.Subtotal),
				cents(sale.TotalAmount),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}
	f.SetColWidth(sheet, "A", "I", 16)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	s.log.Info("sales exported", zap.Int("sales", len(sales)))
	return buf.Bytes(), nil
}

func cents(v int64) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
