package linking

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
)

type mockVisionStore struct {
	getFn       func(ctx context.Context, id string) (domain.Vision, error)
	setLinksFn  func(ctx context.Context, id string, links map[string]float64, clicks map[string]int64) error
	setLinkFn   func(ctx context.Context, id, productID string, score float64) error
	unsetLinkFn func(ctx context.Context, id, productID string) error
}

func (m *mockVisionStore) Get(ctx context.Context, id string) (domain.Vision, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Vision{ID: id}, nil
}

func (m *mockVisionStore) SetLinks(
	ctx context.Context, id string, links map[string]float64, clicks map[string]int64,
) error {
	if m.setLinksFn != nil {
		return m.setLinksFn(ctx, id, links, clicks)
	}
	return nil
}

func (m *mockVisionStore) SetLink(ctx context.Context, id, productID string, score float64) error {
	if m.setLinkFn != nil {
		return m.setLinkFn(ctx, id, productID, score)
	}
	return nil
}

func (m *mockVisionStore) UnsetLink(ctx context.Context, id, productID string) error {
	if m.unsetLinkFn != nil {
		return m.unsetLinkFn(ctx, id, productID)
	}
	return nil
}

type mockProductStore struct {
	existsFn          func(ctx context.Context, id string) (bool, error)
	setVisionLinkFn   func(ctx context.Context, id, visionID string, score float64) error
	unsetVisionLinkFn func(ctx context.Context, id, visionID string) error
}

func (m *mockProductStore) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func (m *mockProductStore) SetVisionLink(ctx context.Context, id, visionID string, score float64) error {
	if m.setVisionLinkFn != nil {
		return m.setVisionLinkFn(ctx, id, visionID, score)
	}
	return nil
}

func (m *mockProductStore) UnsetVisionLink(ctx context.Context, id, visionID string) error {
	if m.unsetVisionLinkFn != nil {
		return m.unsetVisionLinkFn(ctx, id, visionID)
	}
	return nil
}

type mockIndex struct {
	queryVisionsFn    func(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	queryProductsFn   func(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	getVisionVectorFn func(ctx context.Context, id string) ([]float32, error)
}

func (m *mockIndex) QueryVisions(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if m.queryVisionsFn != nil {
		return m.queryVisionsFn(ctx, vector, k)
	}
	return nil, nil
}

func (m *mockIndex) QueryProducts(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if m.queryProductsFn != nil {
		return m.queryProductsFn(ctx, vector, k)
	}
	return nil, nil
}

func (m *mockIndex) GetVisionVector(ctx context.Context, id string) ([]float32, error) {
	if m.getVisionVectorFn != nil {
		return m.getVisionVectorFn(ctx, id)
	}
	return []float32{1, 0}, nil
}

type testEnv struct {
	svc      *Service
	visions  *mockVisionStore
	products *mockProductStore
	index    *mockIndex
	sleeps   []time.Duration
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		visions:  &mockVisionStore{},
		products: &mockProductStore{},
		index:    &mockIndex{},
	}
	env.svc = New(env.visions, env.products, env.index, zap.NewNop())
	env.svc.sleep = func(d time.Duration) {
		env.sleeps = append(env.sleeps, d)
	}
	return env
}

// distFor returns the squared-L2 distance that maps onto the given score.
func distFor(score float64) float64 {
	return 2 * (1 - score)
}
