package visionlink

import (
	"context"
	"fmt"
	"time"

	productuc "github.com/visionverse/visionlink/internal/usecase/product"
)

// ProductService manages products.
type ProductService struct {
	svc productUseCase
	obs *observer
}

// Create validates, embeds and persists a new product, then offers it to the
// closest visions for admission into their top-3 link sets.
func (s *ProductService) Create(
	ctx context.Context, in CreateProduct,
) (_ CreateProductResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product.create", start, err) }()

	res, err := s.svc.Create(ctx, productuc.CreateInput{
		OwnerID:     in.OwnerID,
		OwnerName:   in.OwnerName,
		OwnerEmail:  in.OwnerEmail,
		Description: in.Description,
		FilePath:    in.FilePath,
		URL:         in.URL,
		Price:       in.Price,
		OnSale:      in.OnSale,
	})
	if err != nil {
		return CreateProductResult{}, fmt.Errorf("create product: %w", err)
	}
	out := CreateProductResult{Product: fromInternalProduct(res.Product)}
	if res.LinkedVision != nil {
		out.LinkedVision = &LinkedVision{
			ID:          res.LinkedVision.ID,
			Description: res.LinkedVision.Description,
			Score:       res.LinkedVision.Score,
		}
	}
	return out, nil
}

// Get retrieves a product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (_ Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product.get", start, err) }()

	p, err := s.svc.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return fromInternalProduct(p), nil
}

// List returns a page of the owner's products.
func (s *ProductService) List(
	ctx context.Context, ownerID string, limit, skip int,
) (_ ProductPage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product.list", start, err) }()

	res, err := s.svc.List(ctx, productuc.ListInput{OwnerID: ownerID, Limit: limit, Skip: skip})
	if err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	return ProductPage{Products: fromInternalProducts(res.Products), Total: res.Total}, nil
}

// SetSale updates the sale flag and price. Owner only.
func (s *ProductService) SetSale(
	ctx context.Context, id, userID string, price *int64, onSale bool,
) (_ Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product.set_sale", start, err) }()

	p, err := s.svc.UpdateSale(ctx, id, userID, price, onSale)
	if err != nil {
		return Product{}, fmt.Errorf("set sale: %w", err)
	}
	return fromInternalProduct(p), nil
}

// Delete removes an owner's product. Every linked vision drops its entry and
// gets a backfill attempt at a replacement.
func (s *ProductService) Delete(ctx context.Context, id, userID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("product.delete", start, err) }()

	if err = s.svc.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// PrimaryVision returns the best-scoring vision that links this product,
// or nil when the product is unlinked.
func (s *ProductService) PrimaryVision(
	ctx context.Context, id string,
) (_ *LinkedVision, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product.primary_vision", start, err) }()

	p, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("primary vision: %w", err)
	}
	info := s.svc.PrimaryVision(ctx, &p)
	if info == nil {
		return nil, nil
	}
	return &LinkedVision{ID: info.ID, Description: info.Description, Score: info.Score}, nil
}
