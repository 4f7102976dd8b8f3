package chi

import (
	"context"
	"net/http"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/domain"
	"github.com/visionverse/visionlink/internal/domain/link"
	clickuc "github.com/visionverse/visionlink/internal/usecase/click"
	healthuc "github.com/visionverse/visionlink/internal/usecase/health"
	productuc "github.com/visionverse/visionlink/internal/usecase/product"
	visionuc "github.com/visionverse/visionlink/internal/usecase/vision"
)

type stubVisionRepo struct {
	insertFn func(ctx context.Context, v *domain.Vision) error
	getFn    func(ctx context.Context, id string) (domain.Vision, error)
	listFn   func(ctx context.Context) ([]domain.Vision, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubVisionRepo) Insert(ctx context.Context, v *domain.Vision) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, v)
	}
	return nil
}

func (s *stubVisionRepo) Get(ctx context.Context, id string) (domain.Vision, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.Vision{ID: id, OwnerID: "u1", Description: "a want"}, nil
}

func (s *stubVisionRepo) List(ctx context.Context) ([]domain.Vision, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubVisionRepo) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubVisionRepo) SetVectorID(context.Context, string, string) error { return nil }

func (s *stubVisionRepo) SetSale(context.Context, string, *int64, bool) error { return nil }

func (s *stubVisionRepo) SetSupport(context.Context, string, []string, int) error { return nil }

func (s *stubVisionRepo) LookupByDescription(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

type stubProductRepo struct {
	getFn func(ctx context.Context, id string) (domain.Product, error)
}

func (s *stubProductRepo) Insert(context.Context, *domain.Product) error { return nil }

func (s *stubProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.Product{ID: id, OwnerID: "u1", Description: "an offer", URL: "https://x"}, nil
}

func (s *stubProductRepo) List(context.Context) ([]domain.Product, error) { return nil, nil }

func (s *stubProductRepo) Delete(context.Context, string) error { return nil }

func (s *stubProductRepo) SetVectorID(context.Context, string, string) error { return nil }

func (s *stubProductRepo) SetSale(context.Context, string, *int64, bool) error { return nil }

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type stubVisionIndex struct{}

func (stubVisionIndex) UpsertVision(context.Context, string, []float32, string) error { return nil }

func (stubVisionIndex) QueryVisions(context.Context, []float32, int) ([]domain.Neighbor, error) {
	return nil, nil
}

func (stubVisionIndex) DeleteVision(context.Context, string) error { return nil }

type stubProductIndex struct{}

func (stubProductIndex) UpsertProduct(context.Context, string, []float32, string) error { return nil }

func (stubProductIndex) DeleteProduct(context.Context, string) error { return nil }

type stubVisionLinker struct{}

func (stubVisionLinker) LinkVision(context.Context, string, []float32) error { return nil }

func (stubVisionLinker) UnlinkDeletedVision(context.Context, string, []string) {}

type stubProductLinker struct {
	planFn func(ctx context.Context, productID string, vector []float32) ([]link.Entry, error)
}

func (s *stubProductLinker) PlanProductLinks(
	ctx context.Context, productID string, vector []float32,
) ([]link.Entry, error) {
	if s.planFn != nil {
		return s.planFn(ctx, productID, vector)
	}
	return nil, nil
}

func (s *stubProductLinker) ApplyProductLinks(context.Context, string, []link.Entry) {}

func (s *stubProductLinker) UnlinkDeletedProduct(context.Context, string, []string) {}

type stubClicks struct {
	err error
}

func (s *stubClicks) IncrementClick(context.Context, string, string) error { return s.err }

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

type serverEnv struct {
	handler       http.Handler
	visionRepo    *stubVisionRepo
	productRepo   *stubProductRepo
	productLinker *stubProductLinker
	visionClicks  *stubClicks
	productClicks *stubClicks
}

func newTestServer(t *testing.T) *serverEnv {
	t.Helper()
	env := &serverEnv{
		visionRepo:    &stubVisionRepo{},
		productRepo:   &stubProductRepo{},
		productLinker: &stubProductLinker{},
		visionClicks:  &stubClicks{},
		productClicks: &stubClicks{},
	}
	logger := zap.NewNop()

	visions := visionuc.New(
		env.visionRepo, env.productRepo, stubEmbedder{}, stubEmbedder{},
		stubVisionIndex{}, stubVisionLinker{}, logger,
	)
	products := productuc.New(
		env.productRepo, env.visionRepo, stubEmbedder{},
		stubProductIndex{}, env.productLinker, logger,
	)
	clicks := clickuc.New(env.visionClicks, env.productClicks, logger)
	health := healthuc.New(&stubPinger{}, nil, nil)

	server := NewServer(visions, products, clicks, health, logger)
	r := chirouter.NewRouter()
	r.Use(IdentityMiddleware())
	server.Register(r)
	env.handler = r
	return env
}
