package product

import (
	"context"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/domain/link"
)

// Repository persists product documents.
type Repository interface {
	Insert(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetVectorID(ctx context.Context, id, vectorID string) error
	SetSale(ctx context.Context, id string, price *int64, onSale bool) error
}

// VisionReader hydrates the linked vision for display.
type VisionReader interface {
	Get(ctx context.Context, id string) (domain.Vision, error)
}

// VectorIndex is the product side of the embedding index.
type VectorIndex interface {
	UpsertProduct(ctx context.Context, id string, vector []float32, content string) error
	DeleteProduct(ctx context.Context, id string) error
}

// LinkMaintainer decides which visions admit a new product and tears links
// down on delete.
type LinkMaintainer interface {
	PlanProductLinks(ctx context.Context, productID string, vector []float32) ([]link.Entry, error)
	ApplyProductLinks(ctx context.Context, productID string, accepted []link.Entry)
	UnlinkDeletedProduct(ctx context.Context, productID string, visionIDs []string)
}
