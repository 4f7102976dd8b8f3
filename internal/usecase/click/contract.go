package click

import "context"

// VisionClicks increments a vision's per-product click counter.
type VisionClicks interface {
	IncrementClick(ctx context.Context, id, productID string) error
}

// ProductClicks increments a product's per-vision click counter.
type ProductClicks interface {
	IncrementClick(ctx context.Context, id, visionID string) error
}
