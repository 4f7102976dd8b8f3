package product

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/domain/link"
)

type mockRepo struct {
	insertFn    func(ctx context.Context, p *domain.Product) error
	getFn       func(ctx context.Context, id string) (domain.Product, error)
	listFn      func(ctx context.Context) ([]domain.Product, error)
	deleteFn    func(ctx context.Context, id string) error
	setVectorFn func(ctx context.Context, id, vectorID string) error
	setSaleFn   func(ctx context.Context, id string, price *int64, onSale bool) error
}

func (m *mockRepo) Insert(ctx context.Context, p *domain.Product) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Product{ID: id}, nil
}

func (m *mockRepo) List(ctx context.Context) ([]domain.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) SetVectorID(ctx context.Context, id, vectorID string) error {
	if m.setVectorFn != nil {
		return m.setVectorFn(ctx, id, vectorID)
	}
	return nil
}

func (m *mockRepo) SetSale(ctx context.Context, id string, price *int64, onSale bool) error {
	if m.setSaleFn != nil {
		return m.setSaleFn(ctx, id, price, onSale)
	}
	return nil
}

type mockVisions struct {
	getFn func(ctx context.Context, id string) (domain.Vision, error)
}

func (m *mockVisions) Get(ctx context.Context, id string) (domain.Vision, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Vision{ID: id}, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls = append(m.calls, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type mockIndex struct {
	upsertFn func(ctx context.Context, id string, vector []float32, content string) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockIndex) UpsertProduct(ctx context.Context, id string, vector []float32, content string) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, vector, content)
	}
	return nil
}

func (m *mockIndex) DeleteProduct(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockLinker struct {
	planFn   func(ctx context.Context, productID string, vector []float32) ([]link.Entry, error)
	applyFn  func(ctx context.Context, productID string, accepted []link.Entry)
	unlinkFn func(ctx context.Context, productID string, visionIDs []string)
}

func (m *mockLinker) PlanProductLinks(
	ctx context.Context, productID string, vector []float32,
) ([]link.Entry, error) {
	if m.planFn != nil {
		return m.planFn(ctx, productID, vector)
	}
	return nil, nil
}

func (m *mockLinker) ApplyProductLinks(ctx context.Context, productID string, accepted []link.Entry) {
	if m.applyFn != nil {
		m.applyFn(ctx, productID, accepted)
	}
}

func (m *mockLinker) UnlinkDeletedProduct(ctx context.Context, productID string, visionIDs []string) {
	if m.unlinkFn != nil {
		m.unlinkFn(ctx, productID, visionIDs)
	}
}

type testEnv struct {
	svc     *Service
	repo    *mockRepo
	visions *mockVisions
	emb     *mockEmbedder
	index   *mockIndex
	links   *mockLinker
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:    &mockRepo{},
		visions: &mockVisions{},
		emb:     &mockEmbedder{},
		index:   &mockIndex{},
		links:   &mockLinker{},
	}
	env.svc = New(env.repo, env.visions, env.emb, env.index, env.links, zap.NewNop())
	return env
}
