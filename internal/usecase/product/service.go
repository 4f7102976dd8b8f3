package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/domain/link"
)

// Service handles product CRUD with automatic vectorization and link
// admission into vision top-3 sets.
type Service struct {
	repo        Repository
	visions     VisionReader
	docEmbedder domain.Embedder
	index       VectorIndex
	links       LinkMaintainer

	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
}

// New creates a product service.
func New(
	repo Repository,
	visions VisionReader,
	docEmbedder domain.Embedder,
	index VectorIndex,
	links LinkMaintainer,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:            repo,
		visions:         visions,
		docEmbedder:     docEmbedder,
		index:           index,
		links:           links,
		defaultPageSize: 20,
		maxPageSize:     100,
		logger:          logger,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// CreateInput carries the caller-supplied fields of a new product.
type CreateInput struct {
	OwnerID     string
	OwnerName   string
	OwnerEmail  string
	Description string
	FilePath    string
	URL         string
	Price       *int64
	OnSale      bool
}

// CreateResult is the outcome of Create. LinkedVision is the first vision
// that admitted the product, or nil when none did; the product may have been
// admitted by several more.
type CreateResult struct {
	Product      domain.Product
	LinkedVision *domain.LinkedVisionInfo
}

// Create validates, embeds and persists a new product, then offers it to the
// closest visions for admission into their top-3 sets. A failed admission
// search degrades to an unlinked product; the create still succeeds.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return CreateResult{}, fmt.Errorf("description is required: %w", domain.ErrValidation)
	}
	if in.OwnerID == "" {
		return CreateResult{}, fmt.Errorf("owner is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(in.URL) == "" {
		return CreateResult{}, fmt.Errorf("url is required: %w", domain.ErrValidation)
	}

	result, err := s.docEmbedder.Embed(ctx, description)
	if err != nil {
		return CreateResult{}, fmt.Errorf("vectorize product: %w", err)
	}
	vector := result.Embedding

	id := uuid.NewString()
	accepted, err := s.links.PlanProductLinks(ctx, id, vector)
	if err != nil {
		s.logger.Error("plan product links", zap.String("product_id", id), zap.Error(err))
		accepted = nil
	}

	now := time.Now().UTC()
	p := domain.Product{
		ID:            id,
		OwnerID:       in.OwnerID,
		OwnerName:     in.OwnerName,
		OwnerEmail:    in.OwnerEmail,
		Description:   description,
		FilePath:      in.FilePath,
		URL:           strings.TrimSpace(in.URL),
		Price:         in.Price,
		OnSale:        in.OnSale,
		LinkedVisions: map[string]float64{},
		Clicks:        map[string]int64{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.FilePath == "" {
		p.FilePath = domain.DefaultFilePath
	}
	for _, entry := range accepted {
		p.LinkedVisions[entry.ID] = entry.Score
		p.Clicks[entry.ID] = 0
	}
	if err := s.repo.Insert(ctx, &p); err != nil {
		return CreateResult{}, fmt.Errorf("insert product: %w", err)
	}

	// The repository holds the inserted struct; work on a copy from here on.
	out := p
	if err := s.index.UpsertProduct(ctx, id, vector, description); err != nil {
		s.logger.Error("store product embedding", zap.String("product_id", id), zap.Error(err))
	} else if err := s.repo.SetVectorID(ctx, id, id); err != nil {
		s.logger.Error("record vector id", zap.String("product_id", id), zap.Error(err))
	} else {
		out.VectorID = id
	}

	s.links.ApplyProductLinks(ctx, id, accepted)

	res := CreateResult{Product: out}
	if len(accepted) > 0 {
		res.LinkedVision = s.hydrateVision(ctx, accepted[0])
	}
	return res, nil
}

// Get fetches a product by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// ListInput selects a page of products, newest first.
type ListInput struct {
	OwnerID string // empty means all owners
	Limit   int
	Skip    int
}

// ListResult is one page plus the filtered total.
type ListResult struct {
	Products []domain.Product
	Total    int
}

// List returns a page of products, optionally filtered by owner.
func (s *Service) List(ctx context.Context, in ListInput) (ListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	filtered := all
	if in.OwnerID != "" {
		filtered = filtered[:0:0]
		for _, p := range all {
			if p.OwnerID == in.OwnerID {
				filtered = append(filtered, p)
			}
		}
	}
	return ListResult{Products: page(filtered, in.Skip, s.clampLimit(in.Limit)), Total: len(filtered)}, nil
}

// UpdateSale sets the sale flag and price. Owner only, no re-linking.
func (s *Service) UpdateSale(
	ctx context.Context, id, userID string, price *int64, onSale bool,
) (domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if p.OwnerID != userID {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrForbidden)
	}
	if err := s.repo.SetSale(ctx, id, price, onSale); err != nil {
		return domain.Product{}, fmt.Errorf("update sale: %w", err)
	}
	p.Price = price
	p.OnSale = onSale
	return p, nil
}

// Delete removes an owner's product: the embedding goes first so backfill
// searches cannot resurface it, then every linked vision drops its entry and
// gets a backfill attempt, then the document is removed.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		return fmt.Errorf("product %s: %w", id, domain.ErrForbidden)
	}

	if err := s.index.DeleteProduct(ctx, id); err != nil {
		s.logger.Error("delete product embedding", zap.String("product_id", id), zap.Error(err))
	}

	partners := make([]string, 0, len(p.LinkedVisions))
	for vid := range p.LinkedVisions {
		partners = append(partners, vid)
	}
	s.links.UnlinkDeletedProduct(ctx, id, partners)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// PrimaryVision picks the best-ranked linked vision for display, or nil when
// the product is unlinked.
func (s *Service) PrimaryVision(ctx context.Context, p *domain.Product) *domain.LinkedVisionInfo {
	ranked := link.Ranked(p.LinkedVisions)
	for _, entry := range ranked {
		if info := s.hydrateVision(ctx, entry); info != nil {
			return info
		}
	}
	return nil
}

func (s *Service) hydrateVision(ctx context.Context, entry link.Entry) *domain.LinkedVisionInfo {
	v, err := s.visions.Get(ctx, entry.ID)
	if err != nil {
		return nil
	}
	return &domain.LinkedVisionInfo{ID: v.ID, Description: v.Description, Score: entry.Score}
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultPageSize
	}
	if limit > s.maxPageSize {
		return s.maxPageSize
	}
	return limit
}

func page(items []domain.Product, skip, limit int) []domain.Product {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return nil
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
