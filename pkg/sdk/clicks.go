package visionlink

import (
	"context"
	"fmt"
	"time"
)

// ClickService records link click-throughs.
type ClickService struct {
	svc clickUseCase
	obs *observer
}

// Record bumps the click counter on both sides of a vision↔product link.
// A single side failing is tolerated; the call errors only when neither
// counter could be written.
func (s *ClickService) Record(ctx context.Context, visionID, productID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("click.record", start, err) }()

	if err = s.svc.Record(ctx, visionID, productID); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}
