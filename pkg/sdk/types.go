package visionlink

import (
	"time"

	"github.com/visionverse/visionlink/internal/domain"
)

// Vision is a user's free-text want, matched against products.
type Vision struct {
	ID             string
	OwnerID        string
	OwnerName      string
	OwnerEmail     string
	Description    string
	FilePath       string
	Price          *int64 // cents
	OnSale         bool
	LinkedProducts map[string]float64 // product ID → similarity score, at most 3
	Clicks         map[string]int64
	SupportedBy    []string
	SupportCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Product is a user's free-text offer with a purchase URL.
type Product struct {
	ID            string
	OwnerID       string
	OwnerName     string
	OwnerEmail    string
	Description   string
	FilePath      string
	URL           string
	Price         *int64 // cents
	OnSale        bool
	LinkedVisions map[string]float64 // vision ID → similarity score, uncapped
	Clicks        map[string]int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LinkedProduct is a hydrated vision→product link.
type LinkedProduct struct {
	ID          string
	Description string
	Score       float64
}

// LinkedVision is a hydrated product→vision link.
type LinkedVision struct {
	ID          string
	Description string
	Score       float64
}

// CreateVision is the input to VisionService.Create.
type CreateVision struct {
	OwnerID     string
	OwnerName   string
	OwnerEmail  string
	Description string
	FilePath    string
	Price       *int64
	OnSale      bool
}

// CreateVisionResult is the outcome of VisionService.Create. When IsDuplicate
// is set, Vision is the owner's pre-existing near-identical vision and no new
// document was written.
type CreateVisionResult struct {
	Vision         Vision
	IsDuplicate    bool
	DuplicateScore float64
}

// CreateProduct is the input to ProductService.Create.
type CreateProduct struct {
	OwnerID     string
	OwnerName   string
	OwnerEmail  string
	Description string
	FilePath    string
	URL         string
	Price       *int64
	OnSale      bool
}

// CreateProductResult is the outcome of ProductService.Create. LinkedVision
// is the first vision that admitted the product, or nil when none did.
type CreateProductResult struct {
	Product      Product
	LinkedVision *LinkedVision
}

// VisionPage is one page of a vision listing.
type VisionPage struct {
	Visions []Vision
	Total   int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []Product
	Total    int
}

// SearchHit pairs a vision with its similarity to the search query.
type SearchHit struct {
	Vision Vision
	Score  float64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component → "ok"/"error"
}

func fromInternalVision(v domain.Vision) Vision {
	return Vision{
		ID:             v.ID,
		OwnerID:        v.OwnerID,
		OwnerName:      v.OwnerName,
		OwnerEmail:     v.OwnerEmail,
		Description:    v.Description,
		FilePath:       v.FilePath,
		Price:          v.Price,
		OnSale:         v.OnSale,
		LinkedProducts: v.LinkedProducts,
		Clicks:         v.Clicks,
		SupportedBy:    v.SupportedBy,
		SupportCount:   v.SupportCount,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func fromInternalProduct(p domain.Product) Product {
	return Product{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		OwnerName:     p.OwnerName,
		OwnerEmail:    p.OwnerEmail,
		Description:   p.Description,
		FilePath:      p.FilePath,
		URL:           p.URL,
		Price:         p.Price,
		OnSale:        p.OnSale,
		LinkedVisions: p.LinkedVisions,
		Clicks:        p.Clicks,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromInternalVisions(vs []domain.Vision) []Vision {
	out := make([]Vision, len(vs))
	for i, v := range vs {
		out[i] = fromInternalVision(v)
	}
	return out
}

func fromInternalProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = fromInternalProduct(p)
	}
	return out
}
