package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/identity"
	"github.com/tbourn/marketplace-state/internal/search"
)

// Upstream is the part of the product API the Service depends on. *Client
// implements it.
type Upstream interface {
	FetchAllProducts(ctx context.Context) ([]domain.ServerProduct, error)
	RecordVisit(ctx context.Context, id string) error
}

// ToProduct maps a server record to a Product, deriving its numeric
// identity from the opaque server id.
func ToProduct(sp domain.ServerProduct) domain.Product {
	return domain.Product{
		ID:          identity.StableIdentity(sp.ID),
		ServerID:    sp.ID,
		Name:        sp.Name,
		Price:       sp.Price,
		Description: sp.Description,
		Image:       sp.Image,
		Category:    sp.Category,
		Community:   sp.Community,
		Vendor:      sp.Vendor,
		Stock:       sp.Stock,
		Rating:      sp.Rating,
		ReviewCount: sp.ReviewCount,
		LikeCount:   sp.LikeCount,
	}
}

// Hit is a search result resolved to its product.
type Hit struct {
	Product domain.Product `json:"product"`
	Score   float64        `json:"score"`
}

// RefreshReport summarizes one Refresh.
type RefreshReport struct {
	Fetched    int
	Skipped    int
	Collisions int
}

// Service caches the identity-mapped catalog and its search index.
type Service struct {
	upstream Upstream
	validate *validator.Validate

	mu          sync.RWMutex
	products    []domain.Product
	byID        map[uint32]domain.Product
	index       search.Index
	refreshedAt time.Time
}

// NewService returns an empty service; call Refresh to populate it.
func NewService(upstream Upstream) *Service {
	return &Service{
		upstream: upstream,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		byID:     map[uint32]domain.Product{},
		index:    search.NewIndex(nil),
	}
}

// Refresh fetches every product, skips records that fail validation, maps
// the rest through the identity mapper and swaps the cache. On fetch errors
// the previous cache is kept. When two server ids map to the same identity
// the first one wins.
func (s *Service) Refresh(ctx context.Context) (RefreshReport, error) {
	ctx, span := otel.Tracer("catalog/Service").Start(ctx, "Refresh")
	defer span.End()

	records, err := s.upstream.FetchAllProducts(ctx)
	if err != nil {
		span.RecordError(err)
		return RefreshReport{}, fmt.Errorf("refresh catalog: %w", err)
	}

	rep := RefreshReport{Fetched: len(records)}
	products := make([]domain.Product, 0, len(records))
	byID := make(map[uint32]domain.Product, len(records))
	for _, r := range records {
		if err := s.validate.Struct(r); err != nil {
			rep.Skipped++
			log.Warn().Str("server_id", r.ID).Err(err).Msg("skipping invalid catalog record")
			continue
		}
		p := ToProduct(r)
		if prev, dup := byID[p.ID]; dup {
			rep.Collisions++
			log.Warn().
				Uint32("identity", p.ID).
				Str("kept", prev.ServerID).
				Str("dropped", p.ServerID).
				Msg("product identity collision")
			continue
		}
		byID[p.ID] = p
		products = append(products, p)
	}
	idx := search.NewProductIndex(products)

	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.index = idx
	s.refreshedAt = time.Now().UTC()
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("catalog.fetched", rep.Fetched),
		attribute.Int("catalog.skipped", rep.Skipped),
		attribute.Int("catalog.collisions", rep.Collisions),
	)
	return rep, nil
}

// All returns a copy of the cached products in upstream order.
func (s *Service) All() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

// Lookup returns the cached product with identity id.
func (s *Service) Lookup(id uint32) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// RefreshedAt returns the time of the last successful Refresh.
func (s *Service) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Search returns up to k products matching q, best first.
func (s *Service) Search(q string, k int) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.index.TopK(q, k)
	out := make([]Hit, 0, len(res))
	for _, r := range res {
		if p, ok := s.byID[r.ProductID]; ok {
			out = append(out, Hit{Product: p, Score: r.Score})
		}
	}
	return out
}

// RecordVisit forwards a page view of the cached product id upstream.
func (s *Service) RecordVisit(ctx context.Context, id uint32) error {
	ctx, span := otel.Tracer("catalog/Service").Start(ctx, "RecordVisit",
		trace.WithAttributes(attribute.Int64("product.id", int64(id))),
	)
	defer span.End()

	p, ok := s.Lookup(id)
	if !ok {
		return ErrProductNotFound
	}
	if err := s.upstream.RecordVisit(ctx, p.ServerID); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}
