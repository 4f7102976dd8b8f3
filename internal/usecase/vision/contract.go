package vision

import (
	"context"

	"github.com/visionverse/visionlink/internal/domain"
)

// Repository persists vision documents plus the exact-description fingerprint.
type Repository interface {
	Insert(ctx context.Context, v *domain.Vision) error
	Get(ctx context.Context, id string) (domain.Vision, error)
	List(ctx context.Context) ([]domain.Vision, error)
	Delete(ctx context.Context, id string) error
	SetVectorID(ctx context.Context, id, vectorID string) error
	SetSale(ctx context.Context, id string, price *int64, onSale bool) error
	SetSupport(ctx context.Context, id string, supportedBy []string, count int) error
	LookupByDescription(ctx context.Context, ownerID, description string) (string, bool, error)
}

// ProductReader hydrates linked products for display.
type ProductReader interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}

// VectorIndex is the vision side of the embedding index.
type VectorIndex interface {
	UpsertVision(ctx context.Context, id string, vector []float32, content string) error
	QueryVisions(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	DeleteVision(ctx context.Context, id string) error
}

// LinkMaintainer wires a vision into the product link maps and back out.
type LinkMaintainer interface {
	LinkVision(ctx context.Context, visionID string, vector []float32) error
	UnlinkDeletedVision(ctx context.Context, visionID string, productIDs []string)
}
