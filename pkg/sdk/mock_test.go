package visionlink

import (
	"context"

	"github.com/visionverse/visionlink/internal/domain"
	healthuc "github.com/visionverse/visionlink/internal/usecase/health"
	productuc "github.com/visionverse/visionlink/internal/usecase/product"
	visionuc "github.com/visionverse/visionlink/internal/usecase/vision"
)

// --- visionUseCase mock ---

type mockVisionUC struct {
	createFn        func(ctx context.Context, in visionuc.CreateInput) (visionuc.CreateResult, error)
	getFn           func(ctx context.Context, id string) (domain.Vision, error)
	listFn          func(ctx context.Context, in visionuc.ListInput) (visionuc.ListResult, error)
	searchFn        func(ctx context.Context, query string, limit int) ([]visionuc.SearchResult, error)
	updateSaleFn    func(ctx context.Context, id, userID string, price *int64, onSale bool) (domain.Vision, error)
	supportStatusFn func(ctx context.Context, id, userID string) (bool, int, error)
	toggleSupportFn func(ctx context.Context, id, userID string) (bool, int, error)
	deleteFn        func(ctx context.Context, id, userID string) error
	linkedFn        func(ctx context.Context, v *domain.Vision) []domain.LinkedProductInfo
}

func (m *mockVisionUC) Create(ctx context.Context, in visionuc.CreateInput) (visionuc.CreateResult, error) {
	return m.createFn(ctx, in)
}

func (m *mockVisionUC) Get(ctx context.Context, id string) (domain.Vision, error) {
	return m.getFn(ctx, id)
}

func (m *mockVisionUC) List(ctx context.Context, in visionuc.ListInput) (visionuc.ListResult, error) {
	return m.listFn(ctx, in)
}

func (m *mockVisionUC) Search(ctx context.Context, query string, limit int) ([]visionuc.SearchResult, error) {
	return m.searchFn(ctx, query, limit)
}

func (m *mockVisionUC) UpdateSale(
	ctx context.Context, id, userID string, price *int64, onSale bool,
) (domain.Vision, error) {
	return m.updateSaleFn(ctx, id, userID, price, onSale)
}

func (m *mockVisionUC) SupportStatus(ctx context.Context, id, userID string) (bool, int, error) {
	return m.supportStatusFn(ctx, id, userID)
}

func (m *mockVisionUC) ToggleSupport(ctx context.Context, id, userID string) (bool, int, error) {
	return m.toggleSupportFn(ctx, id, userID)
}

func (m *mockVisionUC) Delete(ctx context.Context, id, userID string) error {
	return m.deleteFn(ctx, id, userID)
}

func (m *mockVisionUC) LinkedProducts(ctx context.Context, v *domain.Vision) []domain.LinkedProductInfo {
	return m.linkedFn(ctx, v)
}

// --- productUseCase mock ---

type mockProductUC struct {
	createFn     func(ctx context.Context, in productuc.CreateInput) (productuc.CreateResult, error)
	getFn        func(ctx context.Context, id string) (domain.Product, error)
	listFn       func(ctx context.Context, in productuc.ListInput) (productuc.ListResult, error)
	updateSaleFn func(ctx context.Context, id, userID string, price *int64, onSale bool) (domain.Product, error)
	deleteFn     func(ctx context.Context, id, userID string) error
	primaryFn    func(ctx context.Context, p *domain.Product) *domain.LinkedVisionInfo
}

func (m *mockProductUC) Create(ctx context.Context, in productuc.CreateInput) (productuc.CreateResult, error) {
	return m.createFn(ctx, in)
}

func (m *mockProductUC) Get(ctx context.Context, id string) (domain.Product, error) {
	return m.getFn(ctx, id)
}

func (m *mockProductUC) List(ctx context.Context, in productuc.ListInput) (productuc.ListResult, error) {
	return m.listFn(ctx, in)
}

func (m *mockProductUC) UpdateSale(
	ctx context.Context, id, userID string, price *int64, onSale bool,
) (domain.Product, error) {
	return m.updateSaleFn(ctx, id, userID, price, onSale)
}

func (m *mockProductUC) Delete(ctx context.Context, id, userID string) error {
	return m.deleteFn(ctx, id, userID)
}

func (m *mockProductUC) PrimaryVision(ctx context.Context, p *domain.Product) *domain.LinkedVisionInfo {
	return m.primaryFn(ctx, p)
}

// --- clickUseCase mock ---

type mockClickUC struct {
	recordFn func(ctx context.Context, visionID, productID string) error
}

func (m *mockClickUC) Record(ctx context.Context, visionID, productID string) error {
	return m.recordFn(ctx, visionID, productID)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}
