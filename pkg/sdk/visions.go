package visionlink

import (
	"context"
	"fmt"
	"time"

	visionuc "github.com/visionverse/visionlink/internal/usecase/vision"
)

// VisionService manages visions.
type VisionService struct {
	svc visionUseCase
	obs *observer
}

// Create validates, embeds and persists a new vision, then links it to its
// closest products. A near-identical vision by the same owner short-circuits
// creation: the existing vision comes back with IsDuplicate set.
func (s *VisionService) Create(
	ctx context.Context, in CreateVision,
) (_ CreateVisionResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.create", start, err) }()

	res, err := s.svc.Create(ctx, visionuc.CreateInput{
		OwnerID:     in.OwnerID,
		OwnerName:   in.OwnerName,
		OwnerEmail:  in.OwnerEmail,
		Description: in.Description,
		FilePath:    in.FilePath,
		Price:       in.Price,
		OnSale:      in.OnSale,
	})
	if err != nil {
		return CreateVisionResult{}, fmt.Errorf("create vision: %w", err)
	}
	return CreateVisionResult{
		Vision:         fromInternalVision(res.Vision),
		IsDuplicate:    res.IsDuplicate,
		DuplicateScore: res.DuplicateScore,
	}, nil
}

// Get retrieves a vision by ID.
func (s *VisionService) Get(ctx context.Context, id string) (_ Vision, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.get", start, err) }()

	v, err := s.svc.Get(ctx, id)
	if err != nil {
		return Vision{}, fmt.Errorf("get vision: %w", err)
	}
	return fromInternalVision(v), nil
}

// List returns a page of visions. OwnerID narrows the listing to one owner;
// empty lists everyone's. Limit 0 uses the service default page size.
func (s *VisionService) List(
	ctx context.Context, ownerID string, limit, skip int,
) (_ VisionPage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.list", start, err) }()

	res, err := s.svc.List(ctx, visionuc.ListInput{OwnerID: ownerID, Limit: limit, Skip: skip})
	if err != nil {
		return VisionPage{}, fmt.Errorf("list visions: %w", err)
	}
	return VisionPage{Visions: fromInternalVisions(res.Visions), Total: res.Total}, nil
}

// Search embeds the query and returns the closest visions with similarity scores.
func (s *VisionService) Search(
	ctx context.Context, query string, limit int,
) (_ []SearchHit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.search", start, err) }()

	res, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search visions: %w", err)
	}
	hits := make([]SearchHit, len(res))
	for i, r := range res {
		hits[i] = SearchHit{Vision: fromInternalVision(r.Vision), Score: r.Score}
	}
	return hits, nil
}

// SetSale updates the sale flag and price. Owner only.
func (s *VisionService) SetSale(
	ctx context.Context, id, userID string, price *int64, onSale bool,
) (_ Vision, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.set_sale", start, err) }()

	v, err := s.svc.UpdateSale(ctx, id, userID, price, onSale)
	if err != nil {
		return Vision{}, fmt.Errorf("set sale: %w", err)
	}
	return fromInternalVision(v), nil
}

// Support toggles userID's support for the vision and returns the new
// supported state and total supporter count.
func (s *VisionService) Support(
	ctx context.Context, id, userID string,
) (supported bool, count int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.support", start, err) }()

	supported, count, err = s.svc.ToggleSupport(ctx, id, userID)
	if err != nil {
		return false, 0, fmt.Errorf("toggle support: %w", err)
	}
	return supported, count, nil
}

// SupportStatus reports whether userID supports the vision and the total count.
func (s *VisionService) SupportStatus(
	ctx context.Context, id, userID string,
) (supported bool, count int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.support_status", start, err) }()

	supported, count, err = s.svc.SupportStatus(ctx, id, userID)
	if err != nil {
		return false, 0, fmt.Errorf("support status: %w", err)
	}
	return supported, count, nil
}

// Delete removes an owner's vision and clears its links from partner products.
func (s *VisionService) Delete(ctx context.Context, id, userID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.delete", start, err) }()

	if err = s.svc.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete vision: %w", err)
	}
	return nil
}

// LinkedProducts hydrates a vision's link set into display entries, best first.
func (s *VisionService) LinkedProducts(
	ctx context.Context, id string,
) (_ []LinkedProduct, err error) {
	start := time.Now()
	defer func() { s.obs.observe("vision.linked_products", start, err) }()

	v, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("linked products: %w", err)
	}
	infos := s.svc.LinkedProducts(ctx, &v)
	out := make([]LinkedProduct, len(infos))
	for i, info := range infos {
		out[i] = LinkedProduct{ID: info.ID, Description: info.Description, Score: info.Score}
	}
	return out, nil
}
