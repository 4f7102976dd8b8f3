package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/domain/link"
	"github.com/visionverse/visionlink/internal/domain/similarity"
	"github.com/visionverse/visionlink/internal/metrics"
)

// Service handles vision CRUD with automatic vectorization, duplicate
// detection and link maintenance.
type Service struct {
	repo          Repository
	products      ProductReader
	docEmbedder   domain.Embedder
	queryEmbedder domain.Embedder
	index         VectorIndex
	links         LinkMaintainer

	dupCandidates   int // KNN width for the vector duplicate guard
	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
}

// New creates a vision service.
func New(
	repo Repository,
	products ProductReader,
	docEmbedder, queryEmbedder domain.Embedder,
	index VectorIndex,
	links LinkMaintainer,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:            repo,
		products:        products,
		docEmbedder:     docEmbedder,
		queryEmbedder:   queryEmbedder,
		index:           index,
		links:           links,
		dupCandidates:   5,
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

// WithDuplicateCandidates configures the KNN width of the duplicate guard.
func (s *Service) WithDuplicateCandidates(k int) *Service {
	if k > 0 {
		s.dupCandidates = k
	}
	return s
}

// CreateInput carries the caller-supplied fields of a new vision.
type CreateInput struct {
	OwnerID     string
	OwnerName   string
	OwnerEmail  string
	Description string
	FilePath    string
	Price       *int64
	OnSale      bool
}

// CreateResult is the outcome of Create. When IsDuplicate is set, Vision is
// the pre-existing document and no new one was written.
type CreateResult struct {
	Vision         domain.Vision
	IsDuplicate    bool
	DuplicateScore float64
}

// Create validates, embeds and persists a new vision, then links it to the
// closest products. A near-identical vision by the same owner short-circuits
// creation and is returned instead. Index failures never abort the create:
// the vision is persisted with whatever linking could be done.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return CreateResult{}, fmt.Errorf("description is required: %w", domain.ErrValidation)
	}
	if in.OwnerID == "" {
		return CreateResult{}, fmt.Errorf("owner is required: %w", domain.ErrValidation)
	}

	result, err := s.docEmbedder.Embed(ctx, description)
	if err != nil {
		return CreateResult{}, fmt.Errorf("vectorize vision: %w", err)
	}
	vector := result.Embedding

	if existing, score, ok := s.findVectorDuplicate(ctx, in.OwnerID, vector); ok {
		metrics.DuplicatesDetectedTotal.WithLabelValues("vector").Inc()
		return CreateResult{Vision: existing, IsDuplicate: true, DuplicateScore: score}, nil
	}
	if existing, ok := s.findExactDuplicate(ctx, in.OwnerID, description); ok {
		metrics.DuplicatesDetectedTotal.WithLabelValues("exact").Inc()
		return CreateResult{Vision: existing, IsDuplicate: true, DuplicateScore: 1}, nil
	}

	now := time.Now().UTC()
	v := domain.Vision{
		ID:             uuid.NewString(),
		OwnerID:        in.OwnerID,
		OwnerName:      in.OwnerName,
		OwnerEmail:     in.OwnerEmail,
		Description:    description,
		FilePath:       in.FilePath,
		Price:          in.Price,
		OnSale:         in.OnSale,
		LinkedProducts: map[string]float64{},
		Clicks:         map[string]int64{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if v.FilePath == "" {
		v.FilePath = domain.DefaultFilePath
	}
	if err := s.repo.Insert(ctx, &v); err != nil {
		return CreateResult{}, fmt.Errorf("insert vision: %w", err)
	}

	// The repository holds the inserted struct; work on a copy from here on.
	out := v
	if err := s.index.UpsertVision(ctx, v.ID, vector, description); err != nil {
		// The document stands on its own; it just stays unlinked and
		// invisible to semantic search until re-indexed.
		s.logger.Error("store vision embedding", zap.String("vision_id", v.ID), zap.Error(err))
		return CreateResult{Vision: out}, nil
	}
	if err := s.repo.SetVectorID(ctx, v.ID, v.ID); err != nil {
		s.logger.Error("record vector id", zap.String("vision_id", v.ID), zap.Error(err))
	} else {
		out.VectorID = v.ID
	}

	if err := s.links.LinkVision(ctx, v.ID, vector); err != nil {
		s.logger.Error("link vision", zap.String("vision_id", v.ID), zap.Error(err))
	}
	if fresh, err := s.repo.Get(ctx, v.ID); err == nil {
		out = fresh
	}
	return CreateResult{Vision: out}, nil
}

// findVectorDuplicate runs the KNN duplicate guard. Only the best candidate
// is considered, and only when its document survives and shares the owner.
// Any failure along the way reads as "no duplicate".
func (s *Service) findVectorDuplicate(
	ctx context.Context, ownerID string, vector []float32,
) (domain.Vision, float64, bool) {
	neighbors, err := s.index.QueryVisions(ctx, vector, s.dupCandidates)
	if err != nil {
		s.logger.Warn("duplicate search failed, proceeding", zap.Error(err))
		return domain.Vision{}, 0, false
	}
	if len(neighbors) == 0 {
		return domain.Vision{}, 0, false
	}
	best := neighbors[0]
	score := similarity.ScoreFromDistance(best.Distance)
	if !similarity.IsDuplicate(score) {
		return domain.Vision{}, 0, false
	}
	existing, err := s.repo.Get(ctx, best.ID)
	if err != nil {
		return domain.Vision{}, 0, false
	}
	if existing.OwnerID != ownerID {
		return domain.Vision{}, 0, false
	}
	return existing, score, true
}

// findExactDuplicate checks the owner-scoped description fingerprint. It
// needs no vector index, so it still catches duplicates when search is down.
func (s *Service) findExactDuplicate(
	ctx context.Context, ownerID, description string,
) (domain.Vision, bool) {
	id, ok, err := s.repo.LookupByDescription(ctx, ownerID, description)
	if err != nil {
		s.logger.Warn("description lookup failed, proceeding", zap.Error(err))
		return domain.Vision{}, false
	}
	if !ok {
		return domain.Vision{}, false
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Vision{}, false
	}
	return existing, true
}

// Get fetches a vision by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Vision, error) {
	return s.repo.Get(ctx, id)
}

// ListInput selects a page of visions, newest first.
type ListInput struct {
	OwnerID string // empty means all owners
	Limit   int
	Skip    int
}

// ListResult is one page plus the filtered total.
type ListResult struct {
	Visions []domain.Vision
	Total   int
}

// List returns a page of visions, optionally filtered by owner.
func (s *Service) List(ctx context.Context, in ListInput) (ListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("list visions: %w", err)
	}
	filtered := all
	if in.OwnerID != "" {
		filtered = filtered[:0:0]
		for _, v := range all {
			if v.OwnerID == in.OwnerID {
				filtered = append(filtered, v)
			}
		}
	}
	return ListResult{Visions: page(filtered, in.Skip, s.clampLimit(in.Limit)), Total: len(filtered)}, nil
}

// SearchResult pairs a vision with its similarity to the query.
type SearchResult struct {
	Vision domain.Vision
	Score  float64
}

// Search embeds the query and returns the closest visions with scores.
// Visions deleted since indexing are skipped.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrValidation)
	}
	result, err := s.queryEmbedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	neighbors, err := s.index.QueryVisions(ctx, result.Embedding, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search visions: %w", err)
	}
	out := make([]SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		v, err := s.repo.Get(ctx, n.ID)
		if err != nil {
			continue
		}
		out = append(out, SearchResult{Vision: v, Score: similarity.ScoreFromDistance(n.Distance)})
	}
	return out, nil
}

// UpdateSale sets the sale flag and price. Owner only, no re-linking.
func (s *Service) UpdateSale(
	ctx context.Context, id, userID string, price *int64, onSale bool,
) (domain.Vision, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Vision{}, err
	}
	if v.OwnerID != userID {
		return domain.Vision{}, fmt.Errorf("vision %s: %w", id, domain.ErrForbidden)
	}
	if err := s.repo.SetSale(ctx, id, price, onSale); err != nil {
		return domain.Vision{}, fmt.Errorf("update sale: %w", err)
	}
	v.Price = price
	v.OnSale = onSale
	return v, nil
}

// SupportStatus reports whether userID supports the vision and the total count.
func (s *Service) SupportStatus(ctx context.Context, id, userID string) (bool, int, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, 0, err
	}
	return v.IsSupportedBy(userID), v.SupportCount, nil
}

// ToggleSupport adds or removes userID from the support list.
// Returns the new supported state and count.
func (s *Service) ToggleSupport(ctx context.Context, id, userID string) (bool, int, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, 0, err
	}
	supporters := make([]string, 0, len(v.SupportedBy)+1)
	supported := false
	for _, uid := range v.SupportedBy {
		if uid == userID {
			continue
		}
		supporters = append(supporters, uid)
	}
	if !v.IsSupportedBy(userID) {
		supporters = append(supporters, userID)
		supported = true
	}
	if err := s.repo.SetSupport(ctx, id, supporters, len(supporters)); err != nil {
		return false, 0, fmt.Errorf("update support: %w", err)
	}
	return supported, len(supporters), nil
}

// Delete removes an owner's vision: partners are unlinked first, then the
// embedding, then the document. The product side is not backfilled; products
// carry no link cap, so there is no target count to recover to.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if v.OwnerID != userID {
		return fmt.Errorf("vision %s: %w", id, domain.ErrForbidden)
	}

	partners := make([]string, 0, len(v.LinkedProducts))
	for pid := range v.LinkedProducts {
		partners = append(partners, pid)
	}
	s.links.UnlinkDeletedVision(ctx, id, partners)

	if err := s.index.DeleteVision(ctx, id); err != nil {
		s.logger.Error("delete vision embedding", zap.String("vision_id", id), zap.Error(err))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete vision: %w", err)
	}
	return nil
}

// LinkedProducts hydrates a vision's link map into display entries, best
// score first. Products deleted since linking are skipped.
func (s *Service) LinkedProducts(ctx context.Context, v *domain.Vision) []domain.LinkedProductInfo {
	ranked := link.Ranked(v.LinkedProducts)
	out := make([]domain.LinkedProductInfo, 0, len(ranked))
	for _, entry := range ranked {
		p, err := s.products.Get(ctx, entry.ID)
		if err != nil {
			continue
		}
		out = append(out, domain.LinkedProductInfo{
			ID:          p.ID,
			Description: p.Description,
			Score:       entry.Score,
		})
	}
	return out
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

func page(items []domain.Vision, skip, limit int) []domain.Vision {
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
