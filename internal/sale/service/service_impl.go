package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/casaantigua/anticuario/internal/client/domain"
	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/observability/metrics"
	"github.com/casaantigua/anticuario/internal/sale/domain"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	InvRepo invdomain.Repository
	CliRepo clientdomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	invRepo invdomain.Repository
	cliRepo clientdomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("sale.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		invRepo: p.InvRepo,
		cliRepo: p.CliRepo,
		metrics: p.Metrics,
	}
}

// Create runs the three-phase sale write: header, lines, then a conditional
// stock decrement per line. A failed phase rolls back everything written so
// far, so the caller either gets a fully recorded sale or none at all.
func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (*domain.Sale, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, domain.ErrInvalidPaymentMethod
	}
	if len(req.Lines) == 0 {
		return nil, domain.ErrNoLines
	}

	var (
		clientID *snowflake.ID
		client   *clientdomain.Client
	)
	if strings.TrimSpace(req.ClientID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidClient
		}
		client, err = s.cliRepo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.ErrInvalidClient
		}
		clientID = &id
	}

	saleID := s.genID.Generate()
	now := time.Now().UTC()
	saleDate := now
	if req.SaleDate != nil {
		saleDate = req.SaleDate.UTC()
	}

	items, total, err := s.buildLines(ctx, saleID, req.Lines)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:            saleID,
		ClientID:      clientID,
		Client:        client,
		SaleDate:      saleDate,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.StatusPending,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedBy:     req.Actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertHeader(ctx, s.db, sale); err != nil {
		return nil, err
	}

	if err := s.repo.InsertItems(ctx, s.db, items); err != nil {
		s.compensate(ctx, saleID, nil, "items")
		return nil, err
	}

	// Conditional decrement: zero rows affected means another sale took the
	// stock first, or the item vanished.
	var decremented []domain.SaleItem
	for _, it := range items {
		rows, err := s.invRepo.DecrementStock(ctx, s.db, it.ItemID, it.Quantity)
		if err != nil {
			s.compensate(ctx, saleID, decremented, "stock")
			return nil, err
		}
		if rows == 0 {
			s.recordStockConflict(ctx, it.ItemID)
			s.compensate(ctx, saleID, decremented, "stock")
			item, ferr := s.invRepo.FindByID(ctx, s.db, it.ItemID)
			if ferr == nil && item == nil {
				return nil, domain.ErrItemNotFound
			}
			return nil, domain.ErrInsufficientStock
		}
		decremented = append(decremented, it)
	}

	sale.Items = items
	if s.metrics != nil {
		s.metrics.RecordSaleCommitted(ctx, len(items))
	}
	s.log.Info("sale recorded",
		zap.String("sale_id", saleID.String()),
		zap.Int("lines", len(items)),
		zap.Int64("total_amount", total),
	)
	return sale, nil
}

// compensate undoes partial writes from a failed create: restores any stock
// already taken, then deletes the lines and the header. Compensation errors
// are logged and swallowed; the caller still sees the original failure.
func (s *Service) compensate(ctx context.Context, saleID snowflake.ID, decremented []domain.SaleItem, phase string) {
	if s.metrics != nil {
		s.metrics.RecordSaleRollback(ctx, phase)
	}
	for _, it := range decremented {
		if err := s.invRepo.RestoreStock(ctx, s.db, it.ItemID, it.Quantity); err != nil {
			s.log.Error("sale rollback: stock restore failed",
				zap.String("sale_id", saleID.String()),
				zap.String("item_id", it.ItemID.String()),
				zap.Error(err),
			)
		}
	}
	if err := s.repo.DeleteItems(ctx, s.db, saleID); err != nil {
		s.log.Error("sale rollback: line delete failed",
			zap.String("sale_id", saleID.String()),
			zap.Error(err),
		)
	}
	if err := s.repo.DeleteHeader(ctx, s.db, saleID); err != nil {
		s.log.Error("sale rollback: header delete failed",
			zap.String("sale_id", saleID.String()),
			zap.Error(err),
		)
	}
}

// buildLines validates the requested lines and materializes receipt rows,
// snapshotting name, friendly ID, category and price from inventory. A
// caller-supplied unit price takes precedence over the listed one.
func (s *Service) buildLines(ctx context.Context, saleID snowflake.ID, lines []domain.CreateSaleLine) ([]domain.SaleItem, int64, error) {
	var (
		items []domain.SaleItem
		total int64
	)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, domain.ErrInvalidQuantity
		}
		itemID, err := snowflake.ParseString(strings.TrimSpace(line.ItemID))
		if err != nil || itemID == 0 {
			return nil, 0, domain.ErrItemNotFound
		}
		item, err := s.invRepo.FindByID(ctx, s.db, itemID)
		if err != nil {
			return nil, 0, err
		}
		if item == nil {
			return nil, 0, domain.ErrItemNotFound
		}
		unitPrice := item.UnitPrice
		if line.UnitPrice != nil {
			if *line.UnitPrice < 0 {
				return nil, 0, domain.ErrInvalidPrice
			}
			unitPrice = *line.UnitPrice
		}
		subtotal := unitPrice * line.Quantity
		items = append(items, domain.SaleItem{
			ID:         s.genID.Generate(),
			SaleID:     saleID,
			ItemID:     itemID,
			ItemName:   item.Name,
			FriendlyID: item.FriendlyID,
			Category:   item.Category,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Subtotal:   subtotal,
		})
		total += subtotal
	}
	return items, total, nil
}

func (s *Service) recordStockConflict(ctx context.Context, itemID snowflake.ID) {
	if s.metrics != nil {
		s.metrics.RecordStockConflict(ctx, "insufficient_stock")
	}
	s.log.Warn("stock conflict during sale", zap.String("item_id", itemID.String()))
}

func (s *Service) List(ctx context.Context, req domain.ListSaleRequest) (domain.ListSaleResponse, error) {
	filter := domain.ListSaleFilter{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	switch status := strings.TrimSpace(req.Status); status {
	case "":
	case string(domain.StatusPending), string(domain.StatusCompleted),
		string(domain.StatusCancelled), string(domain.StatusRefunded):
		filter.Status = domain.Status(status)
	default:
		return domain.ListSaleResponse{}, domain.ErrInvalidStatus
	}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.ListSaleResponse{}, domain.ErrInvalidClient
		}
		filter.ClientID = id.String()
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	sales, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListSaleResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(sales, int(pageSize), func(sale *domain.Sale) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        sale.ID.String(),
			CreatedAt: sale.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(sales) > int(pageSize) {
		sales = sales[:pageSize]
	}

	resp := domain.ListSaleResponse{Sales: sales}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*domain.Sale, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return nil, err
	}
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// Update edits the header and, when lines are supplied, replaces the
// receipt wholesale: old stock goes back, new lines are priced and taken,
// and the total is recomputed, all in one transaction. Lines can only
// change while the sale is still pending.
func (s *Service) Update(ctx context.Context, req domain.UpdateSaleRequest) (*domain.Sale, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}

	if req.PaymentMethod != nil {
		if !req.PaymentMethod.IsValid() {
			return nil, domain.ErrInvalidPaymentMethod
		}
		sale.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		sale.Notes = strings.TrimSpace(*req.Notes)
	}
	sale.UpdatedAt = time.Now().UTC()

	if req.Lines == nil {
		if err := s.repo.UpdateHeader(ctx, s.db, sale); err != nil {
			return nil, err
		}
		return sale, nil
	}

	if sale.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}
	if len(*req.Lines) == 0 {
		return nil, domain.ErrNoLines
	}
	items, total, err := s.buildLines(ctx, sale.ID, *req.Lines)
	if err != nil {
		return nil, err
	}

	oldItems := sale.Items
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, old := range oldItems {
			if err := s.invRepo.RestoreStock(ctx, tx, old.ItemID, old.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteItems(ctx, tx, sale.ID); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		for _, it := range items {
			rows, err := s.invRepo.DecrementStock(ctx, tx, it.ItemID, it.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				s.recordStockConflict(ctx, it.ItemID)
				return domain.ErrInsufficientStock
			}
		}
		sale.TotalAmount = total
		return s.repo.UpdateHeader(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	sale.Items = items
	s.log.Info("sale lines replaced",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("lines", len(items)),
		zap.Int64("total_amount", total),
	)
	return sale, nil
}

// UpdateStatus applies a lifecycle transition. Cancelling or refunding puts
// the sold stock back, atomically with the status change.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Sale, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}

	next := req.Status
	switch next {
	case domain.StatusPending, domain.StatusCompleted,
		domain.StatusCancelled, domain.StatusRefunded:
	default:
		return nil, domain.ErrInvalidStatus
	}
	if !sale.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	restock := next == domain.StatusCancelled || next == domain.StatusRefunded
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if restock {
			for _, it := range sale.Items {
				if err := s.invRepo.RestoreStock(ctx, tx, it.ItemID, it.Quantity); err != nil {
					return err
				}
			}
		}
		return s.repo.UpdateStatus(ctx, tx, id, next)
	})
	if err != nil {
		return nil, err
	}

	sale.Status = next
	sale.UpdatedAt = time.Now().UTC()
	s.log.Info("sale status changed",
		zap.String("sale_id", id.String()),
		zap.String("status", string(next)),
	)
	return sale, nil
}

func (s *Service) ListByClient(ctx context.Context, rawClientID string) ([]*domain.Sale, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawClientID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidClient
	}
	return s.repo.ListByClient(ctx, s.db, id)
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.repo.Stats(ctx, s.db)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
