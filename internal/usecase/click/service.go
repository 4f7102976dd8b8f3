package click

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/metrics"
)

// Service counts clicks on a vision→product link. The two counters live on
// separate documents and are bumped independently, never as a transaction.
type Service struct {
	visions  VisionClicks
	products ProductClicks
	logger   *zap.Logger
}

// New creates a click service.
func New(visions VisionClicks, products ProductClicks, logger *zap.Logger) *Service {
	return &Service{visions: visions, products: products, logger: logger}
}

// Record bumps both sides of the pair. A failure on one side does not stop
// the other; the call errors only when neither counter could be written.
func (s *Service) Record(ctx context.Context, visionID, productID string) error {
	if visionID == "" || productID == "" {
		return fmt.Errorf("vision and product ids are required: %w", domain.ErrValidation)
	}

	vErr := s.visions.IncrementClick(ctx, visionID, productID)
	if vErr != nil {
		s.logger.Error("record vision click",
			zap.String("vision_id", visionID), zap.String("product_id", productID), zap.Error(vErr))
	}
	pErr := s.products.IncrementClick(ctx, productID, visionID)
	if pErr != nil {
		s.logger.Error("record product click",
			zap.String("vision_id", visionID), zap.String("product_id", productID), zap.Error(pErr))
	}
	if vErr != nil && pErr != nil {
		return fmt.Errorf("record click: %w", vErr)
	}
	metrics.ClicksRecordedTotal.Inc()
	return nil
}
