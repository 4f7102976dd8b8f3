package linking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/domain/link"
	"github.com/visionverse/visionlink/internal/domain/similarity"
	"github.com/visionverse/visionlink/internal/metrics"
)

// Service maintains the symmetric link maps between visions and products.
// Every operation is best-effort: per-partner failures are logged and skipped
// so link maintenance never sinks the write that triggered it.
type Service struct {
	visions  VisionStore
	products ProductStore
	index    VectorIndex

	searchK        int // candidate width when a new vision searches products
	wideK          int // candidate width for product admission and backfill
	retryAttempts  int
	retryBaseDelay time.Duration

	sleep  func(time.Duration)
	logger *zap.Logger
}

// New creates a link maintainer.
func New(visions VisionStore, products ProductStore, index VectorIndex, logger *zap.Logger) *Service {
	return &Service{
		visions:        visions,
		products:       products,
		index:          index,
		searchK:        5,
		wideK:          10,
		retryAttempts:  5,
		retryBaseDelay: 2 * time.Second,
		sleep:          time.Sleep,
		logger:         logger,
	}
}

// WithCandidates configures KNN candidate widths.
func (s *Service) WithCandidates(searchK, wideK int) *Service {
	if searchK > 0 {
		s.searchK = searchK
	}
	if wideK > 0 {
		s.wideK = wideK
	}
	return s
}

// WithRetry configures the vision-side retry loop.
func (s *Service) WithRetry(attempts int, baseDelay time.Duration) *Service {
	if attempts > 0 {
		s.retryAttempts = attempts
	}
	if baseDelay > 0 {
		s.retryBaseDelay = baseDelay
	}
	return s
}

// LinkVision searches products for a freshly created vision and records up to
// MaxLinkedProducts links on both sides. The search retries with a growing
// wait because a matching product may be indexed moments later.
func (s *Service) LinkVision(ctx context.Context, visionID string, vector []float32) error {
	candidates := s.searchProductsWithRetry(ctx, vector)

	// Keep the candidates whose documents still exist, then cut the map
	// down to the cap.
	existing := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		if !s.productExists(ctx, c.ID) {
			continue
		}
		existing[c.ID] = c.Score
	}
	kept, _ := link.TruncateTopK(existing, domain.MaxLinkedProducts)
	if len(kept) == 0 {
		s.logger.Info("no linkable products found for vision", zap.String("vision_id", visionID))
		return nil
	}

	if err := s.visions.SetLinks(ctx, visionID, kept, link.MergeClicks(nil, kept)); err != nil {
		return fmt.Errorf("store vision links: %w", err)
	}

	for productID, score := range kept {
		if err := s.products.SetVisionLink(ctx, productID, visionID, score); err != nil {
			s.logger.Warn("failed to back-link product",
				zap.String("product_id", productID),
				zap.String("vision_id", visionID),
				zap.Error(err))
			continue
		}
		metrics.LinksCreatedTotal.WithLabelValues("vision_create").Inc()
	}
	return nil
}

// PlanProductLinks runs the admission trial for a product that does not exist
// yet: each nearby vision accepts the product only if it would survive into
// that vision's top-3. The accepted entries seed the product's own link map.
func (s *Service) PlanProductLinks(ctx context.Context, productID string, vector []float32) ([]link.Entry, error) {
	neighbors, err := s.index.QueryVisions(ctx, vector, s.wideK)
	if err != nil {
		return nil, fmt.Errorf("query visions: %w", err)
	}

	var accepted []link.Entry
	for _, c := range linkable(neighbors) {
		v, err := s.visions.Get(ctx, c.ID)
		if err != nil {
			s.logger.Warn("skipping vision during admission",
				zap.String("vision_id", c.ID), zap.Error(err))
			continue
		}
		if link.WouldEnterTopK(v.LinkedProducts, productID, c.Score, domain.MaxLinkedProducts) {
			accepted = append(accepted, c)
		}
	}
	return accepted, nil
}

// ApplyProductLinks commits an admission plan: each accepting vision merges
// the product into its top-3, evicting its weakest link if full. Evicted
// products lose their back-link; the new product keeps its own back-link only
// where it actually survived the merge.
func (s *Service) ApplyProductLinks(ctx context.Context, productID string, accepted []link.Entry) {
	for _, e := range accepted {
		v, err := s.visions.Get(ctx, e.ID)
		if err != nil {
			s.logger.Warn("skipping vision during link apply",
				zap.String("vision_id", e.ID), zap.Error(err))
			continue
		}

		kept, evicted := link.MergeTopK(v.LinkedProducts, productID, e.Score, domain.MaxLinkedProducts)
		if _, survived := kept[productID]; !survived {
			// A stronger product slipped in between plan and apply.
			s.unsetBackLink(ctx, productID, e.ID)
			continue
		}

		if len(evicted) == 0 {
			// Nothing fell out; touch just the one link entry.
			if err := s.visions.SetLink(ctx, e.ID, productID, e.Score); err != nil {
				s.logger.Warn("failed to store vision link",
					zap.String("vision_id", e.ID), zap.Error(err))
				continue
			}
		} else if err := s.visions.SetLinks(ctx, e.ID, kept, link.MergeClicks(v.Clicks, kept)); err != nil {
			s.logger.Warn("failed to store vision links",
				zap.String("vision_id", e.ID), zap.Error(err))
			continue
		}
		metrics.LinksCreatedTotal.WithLabelValues("product_create").Inc()

		for _, evictedID := range evicted {
			s.unsetBackLink(ctx, evictedID, e.ID)
			metrics.LinkEvictionsTotal.Inc()
		}
	}
}

// UnlinkDeletedProduct removes a deleted product from every vision that held
// it and backfills each of those visions from the surviving products.
func (s *Service) UnlinkDeletedProduct(ctx context.Context, productID string, visionIDs []string) {
	for _, visionID := range visionIDs {
		v, err := s.visions.Get(ctx, visionID)
		if err != nil {
			s.logger.Warn("skipping vision during unlink",
				zap.String("vision_id", visionID), zap.Error(err))
			continue
		}

		links := make(map[string]float64, len(v.LinkedProducts))
		for id, score := range v.LinkedProducts {
			if id != productID {
				links[id] = score
			}
		}
		_, held := v.LinkedProducts[productID]

		if len(links) < domain.MaxLinkedProducts {
			links = s.backfillLinks(ctx, visionID, links, productID)
		}

		if held && len(links) == len(v.LinkedProducts)-1 {
			// Backfill recovered nothing; drop just the one entry.
			if err := s.visions.UnsetLink(ctx, visionID, productID); err != nil {
				s.logger.Warn("failed to unset vision link",
					zap.String("vision_id", visionID), zap.Error(err))
			}
			continue
		}

		if err := s.visions.SetLinks(ctx, visionID, links, link.MergeClicks(v.Clicks, links)); err != nil {
			s.logger.Warn("failed to store vision links after unlink",
				zap.String("vision_id", visionID), zap.Error(err))
		}
	}
}

// UnlinkDeletedVision drops the back-links of a deleted vision. Products keep
// their remaining links untouched; no backfill runs in this direction.
func (s *Service) UnlinkDeletedVision(ctx context.Context, visionID string, productIDs []string) {
	for _, productID := range productIDs {
		s.unsetBackLink(ctx, productID, visionID)
	}
}

// backfillLinks refills a vision's link map up to the cap from the product
// index, excluding the product being deleted. Returns the refilled map.
func (s *Service) backfillLinks(
	ctx context.Context, visionID string, links map[string]float64, excludeID string,
) map[string]float64 {
	vector, err := s.index.GetVisionVector(ctx, visionID)
	if err != nil {
		metrics.BackfillRunsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("backfill skipped: vision embedding unavailable",
			zap.String("vision_id", visionID), zap.Error(err))
		return links
	}

	neighbors, err := s.index.QueryProducts(ctx, vector, s.wideK)
	if err != nil {
		metrics.BackfillRunsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("backfill skipped: product search failed",
			zap.String("vision_id", visionID), zap.Error(err))
		return links
	}

	recovered := 0
	for _, c := range linkable(neighbors) {
		if len(links) >= domain.MaxLinkedProducts {
			break
		}
		if c.ID == excludeID {
			continue
		}
		if _, already := links[c.ID]; already {
			continue
		}
		if !s.productExists(ctx, c.ID) {
			continue
		}
		if err := s.products.SetVisionLink(ctx, c.ID, visionID, c.Score); err != nil {
			s.logger.Warn("failed to back-link product during backfill",
				zap.String("product_id", c.ID),
				zap.String("vision_id", visionID),
				zap.Error(err))
			continue
		}
		links[c.ID] = c.Score
		recovered++
		metrics.LinksCreatedTotal.WithLabelValues("backfill").Inc()
	}

	if recovered > 0 {
		metrics.BackfillRunsTotal.WithLabelValues("recovered").Inc()
	} else {
		metrics.BackfillRunsTotal.WithLabelValues("empty").Inc()
	}
	return links
}

// searchProductsWithRetry polls the product index until any result comes back
// or the attempts run out. Waits grow linearly between attempts. The retry
// only covers the empty-index window right after startup: one non-empty
// response ends the loop even when nothing in it clears the link threshold.
func (s *Service) searchProductsWithRetry(ctx context.Context, vector []float32) []link.Entry {
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		neighbors, err := s.index.QueryProducts(ctx, vector, s.searchK)
		if err != nil {
			s.logger.Warn("product search failed", zap.Int("attempt", attempt), zap.Error(err))
		} else if len(neighbors) > 0 {
			return linkable(neighbors)
		}

		if attempt == s.retryAttempts || ctx.Err() != nil {
			break
		}
		metrics.LinkRetryAttemptsTotal.Inc()
		s.sleep(time.Duration(attempt) * s.retryBaseDelay)
	}
	return nil
}

// productExists treats lookup errors as absence so a flaky read drops one
// candidate instead of aborting the pass.
func (s *Service) productExists(ctx context.Context, id string) bool {
	exists, err := s.products.Exists(ctx, id)
	if err != nil {
		s.logger.Warn("product existence check failed", zap.String("product_id", id), zap.Error(err))
		return false
	}
	return exists
}

func (s *Service) unsetBackLink(ctx context.Context, productID, visionID string) {
	if err := s.products.UnsetVisionLink(ctx, productID, visionID); err != nil {
		s.logger.Warn("failed to unset product back-link",
			zap.String("product_id", productID),
			zap.String("vision_id", visionID),
			zap.Error(err))
	}
}

// linkable converts raw neighbors to scored entries and keeps those at or
// above the link threshold.
func linkable(neighbors []domain.Neighbor) []link.Entry {
	var entries []link.Entry
	for _, n := range neighbors {
		score := similarity.ScoreFromDistance(n.Distance)
		if similarity.IsLinkable(score) {
			entries = append(entries, link.Entry{ID: n.ID, Score: score})
		}
	}
	return entries
}
