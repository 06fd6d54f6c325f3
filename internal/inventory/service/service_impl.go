package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/category"
	"github.com/casaantigua/anticuario/internal/inventory/domain"
	pkgdb "github.com/casaantigua/anticuario/pkg/db"
	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

var friendlyIDPattern = regexp.MustCompile(`^[A-Z][0-9]{4}$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("inventory.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (*domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if !category.IsValid(req.Category) {
		return nil, domain.ErrInvalidCategory
	}
	if req.InitialQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.UnitPrice < 0 {
		return nil, domain.ErrInvalidPrice
	}

	friendlyID := strings.ToUpper(strings.TrimSpace(req.FriendlyID))
	if friendlyID != "" {
		if !friendlyIDPattern.MatchString(friendlyID) {
			return nil, domain.ErrInvalidFriendlyID
		}
		existing, err := s.repo.FindByFriendlyID(ctx, s.db, friendlyID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateFriendlyID
		}
	} else {
		generated, err := s.nextFriendlyID(ctx, category.Category(req.Category))
		if err != nil {
			return nil, err
		}
		friendlyID = generated
	}

	now := time.Now().UTC()
	item := &domain.Item{
		ID:              s.genID.Generate(),
		FriendlyID:      friendlyID,
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		Category:        req.Category,
		InitialQuantity: req.InitialQuantity,
		CurrentQuantity: req.InitialQuantity,
		UnitPrice:       req.UnitPrice,
		ImageURLs:       req.ImageURLs,
		LastModifiedBy:  req.Actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateFriendlyID
		}
		return nil, err
	}

	item.Status = item.DerivedStatus()
	s.log.Info("item created",
		zap.String("item_id", item.ID.String()),
		zap.String("friendly_id", item.FriendlyID),
		zap.String("category", item.Category),
	)
	return item, nil
}

// nextFriendlyID issues the next identifier for the category prefix, e.g.
// M0001 for the first piece of furniture. A concurrent insert can still take
// the same suffix; the unique index is the arbiter and the caller sees a
// duplicate error.
func (s *Service) nextFriendlyID(ctx context.Context, cat category.Category) (string, error) {
	prefix := category.Prefix(cat)
	seq, err := s.repo.NextFriendlySequence(ctx, s.db, string(prefix))
	if err != nil {
		return "", err
	}
	if seq >= 9999 {
		return "", domain.ErrInvalidFriendlyID
	}
	return fmt.Sprintf("%c%04d", prefix, seq+1), nil
}

func (s *Service) List(ctx context.Context, req domain.ListItemRequest) (domain.ListItemResponse, error) {
	filter := domain.ListItemFilter{
		Category: strings.TrimSpace(req.Category),
		Featured: req.Featured,
		Search:   strings.TrimSpace(req.Search),
	}
	if filter.Category != "" && !category.IsValid(filter.Category) {
		return domain.ListItemResponse{}, domain.ErrInvalidCategory
	}
	switch strings.TrimSpace(req.Status) {
	case "":
	case string(domain.ItemStatusAvailable):
		filter.Status = domain.ItemStatusAvailable
	case string(domain.ItemStatusSoldOut):
		filter.Status = domain.ItemStatusSoldOut
	default:
		return domain.ListItemResponse{}, domain.ErrInvalidStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListItemResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(item *domain.Item) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	resp := domain.ListItemResponse{Items: items}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetItemRequest) (*domain.Item, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) GetByFriendlyID(ctx context.Context, friendlyID string) (*domain.Item, error) {
	friendlyID = strings.ToUpper(strings.TrimSpace(friendlyID))
	if !friendlyIDPattern.MatchString(friendlyID) {
		return nil, domain.ErrInvalidFriendlyID
	}
	item, err := s.repo.FindByFriendlyID(ctx, s.db, friendlyID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateItemRequest) (*domain.Item, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !category.IsValid(*req.Category) {
			return nil, domain.ErrInvalidCategory
		}
		item.Category = *req.Category
	}
	if req.CurrentQuantity != nil {
		if *req.CurrentQuantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		item.CurrentQuantity = *req.CurrentQuantity
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.ImageURLs != nil {
		item.ImageURLs = *req.ImageURLs
	}
	item.LastModifiedBy = req.Actor
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	item.Status = item.DerivedStatus()
	return item, nil
}

func (s *Service) Delete(ctx context.Context, rawID string, actor string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	rows, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		if pkgdb.IsForeignKeyErr(err) {
			return domain.ErrItemInUse
		}
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.log.Info("item deleted",
		zap.String("item_id", id.String()),
		zap.String("actor", actor),
	)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.repo.Stats(ctx, s.db)
}

func (s *Service) DecrementStock(ctx context.Context, rawID string, qty int64) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	rows, err := s.repo.DecrementStock(ctx, s.db, id, qty)
	if err != nil {
		return err
	}
	if rows == 0 {
		item, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (s *Service) RestoreStock(ctx context.Context, rawID string, qty int64) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	return s.repo.RestoreStock(ctx, s.db, id, qty)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
