package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/cache"
	invdomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	"github.com/casaantigua/anticuario/internal/landing/domain"
	"github.com/casaantigua/anticuario/internal/observability/metrics"
)

const (
	cacheKey = "landing:featured"
	cacheTTL = 5 * time.Minute
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Cache   *cache.Cache
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("landing.service"),
		repo:    p.Repo,
		cache:   p.Cache,
		metrics: p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context) ([]domain.Section, error) {
	if payload, hit, err := s.cache.Get(ctx, cacheKey); err == nil && hit {
		var sections []domain.Section
		if err := json.Unmarshal(payload, &sections); err == nil {
			s.recordCache(ctx, "hit")
			return sections, nil
		}
	}
	s.recordCache(ctx, "miss")

	items, err := s.repo.ListFeatured(ctx, s.db)
	if err != nil {
		return nil, err
	}
	sections := groupBySection(items)

	if payload, err := json.Marshal(sections); err == nil {
		if err := s.cache.Set(ctx, cacheKey, payload, cacheTTL); err != nil {
			s.log.Warn("landing cache write failed", zap.Error(err))
		}
	}
	return sections, nil
}

// Update replaces the whole layout in one transaction: every featured flag
// is cleared, then the new assignments are written. A bad assignment rejects
// the entire batch.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) ([]domain.Section, error) {
	parsed, err := validate(req.Assignments)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearFeatured(ctx, tx); err != nil {
			return err
		}
		for _, a := range parsed {
			rows, err := s.repo.SetFeatured(ctx, tx, a.itemID, a.section, a.order, req.Actor)
			if err != nil {
				return err
			}
			if rows == 0 {
				return domain.ErrItemNotFound
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Del(ctx, cacheKey); err != nil {
		s.log.Warn("landing cache invalidation failed", zap.Error(err))
	}
	s.log.Info("landing layout updated", zap.Int("assignments", len(parsed)))

	items, err := s.repo.ListFeatured(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return groupBySection(items), nil
}

type parsedAssignment struct {
	itemID  snowflake.ID
	section int16
	order   int16
}

func validate(assignments []domain.Assignment) ([]parsedAssignment, error) {
	type position struct{ section, order int16 }
	seenPos := make(map[position]bool, len(assignments))
	seenItem := make(map[snowflake.ID]bool, len(assignments))
	perSection := make(map[int16]int, domain.MaxSection)

	parsed := make([]parsedAssignment, 0, len(assignments))
	for _, a := range assignments {
		id, err := snowflake.ParseString(strings.TrimSpace(a.ItemID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidItemID
		}
		if a.Section < domain.MinSection || a.Section > domain.MaxSection {
			return nil, domain.ErrInvalidSection
		}
		if a.Order < domain.MinOrder || a.Order > domain.MaxOrder {
			return nil, domain.ErrInvalidOrder
		}
		if seenItem[id] {
			return nil, domain.ErrDuplicateItem
		}
		pos := position{a.Section, a.Order}
		if seenPos[pos] {
			return nil, domain.ErrDuplicatePosition
		}
		perSection[a.Section]++
		if perSection[a.Section] > domain.MaxOrder {
			return nil, domain.ErrSectionFull
		}
		seenItem[id] = true
		seenPos[pos] = true
		parsed = append(parsed, parsedAssignment{itemID: id, section: a.Section, order: a.Order})
	}
	return parsed, nil
}

func groupBySection(items []*invdomain.Item) []domain.Section {
	bySection := make(map[int16][]*invdomain.Item)
	for _, item := range items {
		if item.LandingSection == nil {
			continue
		}
		bySection[*item.LandingSection] = append(bySection[*item.LandingSection], item)
	}

	sections := make([]domain.Section, 0, domain.MaxSection)
	for sec := int16(domain.MinSection); sec <= domain.MaxSection; sec++ {
		items := bySection[sec]
		// Rows edited outside the curation flow can overfill a section;
		// the cap holds on read regardless.
		if len(items) > domain.MaxOrder {
			items = items[:domain.MaxOrder]
		}
		sections = append(sections, domain.Section{
			Section: sec,
			Items:   items,
		})
	}
	return sections
}

func (s *Service) recordCache(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLandingCache(ctx, outcome)
	}
}
