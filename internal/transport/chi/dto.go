package chi

import (
	"time"

	"github.com/visionverse/visionlink/internal/domain"
)

// ErrorCode is a machine-readable error discriminator.
type ErrorCode string

const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeVisionNotFound         ErrorCode = "vision_not_found"
	CodeProductNotFound        ErrorCode = "product_not_found"
	CodeForbidden              ErrorCode = "forbidden"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// LinkedProductItem is one hydrated vision→product link.
type LinkedProductItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// LinkedVisionItem is the hydrated primary product→vision link.
type LinkedVisionItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// VisionResponse is the API shape of a vision.
type VisionResponse struct {
	ID             string              `json:"id"`
	OwnerID        string              `json:"ownerId"`
	OwnerName      string              `json:"ownerName,omitempty"`
	Description    string              `json:"description"`
	FilePath       string              `json:"filePath,omitempty"`
	Price          *int64              `json:"price,omitempty"`
	OnSale         bool                `json:"onSale"`
	LinkedProducts []LinkedProductItem `json:"linkedProducts"`
	Clicks         map[string]int64    `json:"clicks,omitempty"`
	SupportCount   int                 `json:"supportCount"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// CreateVisionRequest is the body of POST /visions.
type CreateVisionRequest struct {
	Description string `json:"description"`
	FilePath    string `json:"filePath,omitempty"`
	Price       *int64 `json:"price,omitempty"`
	OnSale      bool   `json:"onSale,omitempty"`
}

// CreateVisionResponse reports either the new vision or the pre-existing
// near-duplicate.
type CreateVisionResponse struct {
	Vision         VisionResponse `json:"vision"`
	IsDuplicate    bool           `json:"isDuplicate"`
	DuplicateScore *float64       `json:"duplicateScore,omitempty"`
}

// VisionListResponse is one page of visions.
type VisionListResponse struct {
	Items []VisionResponse `json:"items"`
	Total int              `json:"total"`
}

// SearchVisionsRequest is the body of POST /visions/search.
type SearchVisionsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchVisionItem pairs a vision with its similarity to the query.
type SearchVisionItem struct {
	Vision VisionResponse `json:"vision"`
	Score  float64        `json:"score"`
}

// SearchVisionsResponse is the ranked search result.
type SearchVisionsResponse struct {
	Items []SearchVisionItem `json:"items"`
}

// UpdateSaleRequest is the body of PATCH /visions/{id} and /products/{id}.
type UpdateSaleRequest struct {
	OnSale bool   `json:"onSale"`
	Price  *int64 `json:"price,omitempty"`
}

// SupportResponse reports the caller's support state and the total.
type SupportResponse struct {
	Supported bool `json:"supported"`
	Count     int  `json:"count"`
}

// ProductResponse is the API shape of a product.
type ProductResponse struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"ownerId"`
	OwnerName    string            `json:"ownerName,omitempty"`
	Description  string            `json:"description"`
	URL          string            `json:"url"`
	FilePath     string            `json:"filePath,omitempty"`
	Price        *int64            `json:"price,omitempty"`
	OnSale       bool              `json:"onSale"`
	LinkedVision *LinkedVisionItem `json:"linkedVision,omitempty"`
	Clicks       map[string]int64  `json:"clicks,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Description string `json:"description"`
	URL         string `json:"url"`
	FilePath    string `json:"filePath,omitempty"`
	Price       *int64 `json:"price,omitempty"`
	OnSale      bool   `json:"onSale,omitempty"`
}

// ProductListResponse is one page of products.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// RecordClickRequest is the body of POST /clicks.
type RecordClickRequest struct {
	VisionID  string `json:"visionId"`
	ProductID string `json:"productId"`
}

// HealthResponse mirrors the health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func visionToAPI(v *domain.Vision, linked []LinkedProductItem) VisionResponse {
	if linked == nil {
		linked = []LinkedProductItem{}
	}
	return VisionResponse{
		ID:             v.ID,
		OwnerID:        v.OwnerID,
		OwnerName:      v.OwnerName,
		Description:    v.Description,
		FilePath:       v.FilePath,
		Price:          v.Price,
		OnSale:         v.OnSale,
		LinkedProducts: linked,
		Clicks:         v.Clicks,
		SupportCount:   v.SupportCount,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func productToAPI(p *domain.Product, linked *domain.LinkedVisionInfo) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		OwnerName:   p.OwnerName,
		Description: p.Description,
		URL:         p.URL,
		FilePath:    p.FilePath,
		Price:       p.Price,
		OnSale:      p.OnSale,
		Clicks:      p.Clicks,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if linked != nil {
		resp.LinkedVision = &LinkedVisionItem{
			ID:          linked.ID,
			Description: linked.Description,
			Score:       linked.Score,
		}
	}
	return resp
}

func linkedProductsToAPI(infos []domain.LinkedProductInfo) []LinkedProductItem {
	items := make([]LinkedProductItem, len(infos))
	for i, info := range infos {
		items[i] = LinkedProductItem{ID: info.ID, Description: info.Description, Score: info.Score}
	}
	return items
}
