package vision

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
)

type mockRepo struct {
	insertFn     func(ctx context.Context, v *domain.Vision) error
	getFn        func(ctx context.Context, id string) (domain.Vision, error)
	listFn       func(ctx context.Context) ([]domain.Vision, error)
	deleteFn     func(ctx context.Context, id string) error
	setVectorFn  func(ctx context.Context, id, vectorID string) error
	setSaleFn    func(ctx context.Context, id string, price *int64, onSale bool) error
	setSupportFn func(ctx context.Context, id string, supportedBy []string, count int) error
	lookupFn     func(ctx context.Context, ownerID, description string) (string, bool, error)
}

func (m *mockRepo) Insert(ctx context.Context, v *domain.Vision) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, v)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.Vision, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Vision{ID: id}, nil
}

func (m *mockRepo) List(ctx context.Context) ([]domain.Vision, error) {
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

func (m *mockRepo) SetSupport(ctx context.Context, id string, supportedBy []string, count int) error {
	if m.setSupportFn != nil {
		return m.setSupportFn(ctx, id, supportedBy, count)
	}
	return nil
}

func (m *mockRepo) LookupByDescription(
	ctx context.Context, ownerID, description string,
) (string, bool, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, ownerID, description)
	}
	return "", false, nil
}

type mockProducts struct {
	getFn func(ctx context.Context, id string) (domain.Product, error)
}

func (m *mockProducts) Get(ctx context.Context, id string) (domain.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Product{ID: id}, nil
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
	queryFn  func(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockIndex) UpsertVision(ctx context.Context, id string, vector []float32, content string) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, vector, content)
	}
	return nil
}

func (m *mockIndex) QueryVisions(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, vector, k)
	}
	return nil, nil
}

func (m *mockIndex) DeleteVision(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockLinker struct {
	linkFn   func(ctx context.Context, visionID string, vector []float32) error
	unlinkFn func(ctx context.Context, visionID string, productIDs []string)
}

func (m *mockLinker) LinkVision(ctx context.Context, visionID string, vector []float32) error {
	if m.linkFn != nil {
		return m.linkFn(ctx, visionID, vector)
	}
	return nil
}

func (m *mockLinker) UnlinkDeletedVision(ctx context.Context, visionID string, productIDs []string) {
	if m.unlinkFn != nil {
		m.unlinkFn(ctx, visionID, productIDs)
	}
}

type testEnv struct {
	svc      *Service
	repo     *mockRepo
	products *mockProducts
	docEmb   *mockEmbedder
	queryEmb *mockEmbedder
	index    *mockIndex
	links    *mockLinker
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:     &mockRepo{},
		products: &mockProducts{},
		docEmb:   &mockEmbedder{},
		queryEmb: &mockEmbedder{},
		index:    &mockIndex{},
		links:    &mockLinker{},
	}
	env.svc = New(env.repo, env.products, env.docEmb, env.queryEmb, env.index, env.links, zap.NewNop())
	return env
}

// distFor returns the squared-L2 distance that maps onto the given score.
func distFor(score float64) float64 {
	return 2 * (1 - score)
}
