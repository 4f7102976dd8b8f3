package visionlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visionverse/visionlink/internal/db"
	dbRedis "github.com/visionverse/visionlink/internal/db/redis"
	"github.com/visionverse/visionlink/internal/domain"
	indexrepo "github.com/visionverse/visionlink/internal/repository/index"
	productrepo "github.com/visionverse/visionlink/internal/repository/product"
	visionrepo "github.com/visionverse/visionlink/internal/repository/vision"
	clickuc "github.com/visionverse/visionlink/internal/usecase/click"
	healthuc "github.com/visionverse/visionlink/internal/usecase/health"
	linkinguc "github.com/visionverse/visionlink/internal/usecase/linking"
	productuc "github.com/visionverse/visionlink/internal/usecase/product"
	visionuc "github.com/visionverse/visionlink/internal/usecase/vision"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 1536
)

// Narrow views of the usecase layer, swappable in tests.
type visionUseCase interface {
	Create(ctx context.Context, in visionuc.CreateInput) (visionuc.CreateResult, error)
	Get(ctx context.Context, id string) (domain.Vision, error)
	List(ctx context.Context, in visionuc.ListInput) (visionuc.ListResult, error)
	Search(ctx context.Context, query string, limit int) ([]visionuc.SearchResult, error)
	UpdateSale(ctx context.Context, id, userID string, price *int64, onSale bool) (domain.Vision, error)
	SupportStatus(ctx context.Context, id, userID string) (bool, int, error)
	ToggleSupport(ctx context.Context, id, userID string) (bool, int, error)
	Delete(ctx context.Context, id, userID string) error
	LinkedProducts(ctx context.Context, v *domain.Vision) []domain.LinkedProductInfo
}

type productUseCase interface {
	Create(ctx context.Context, in productuc.CreateInput) (productuc.CreateResult, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, in productuc.ListInput) (productuc.ListResult, error)
	UpdateSale(ctx context.Context, id, userID string, price *int64, onSale bool) (domain.Product, error)
	Delete(ctx context.Context, id, userID string) error
	PrimaryVision(ctx context.Context, p *domain.Product) *domain.LinkedVisionInfo
}

type clickUseCase interface {
	Record(ctx context.Context, visionID, productID string) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the visionlink embedded client entry point.
type Client struct {
	store      db.Store
	indexRepo  *indexrepo.Repo
	visionSvc  visionUseCase
	productSvc productUseCase
	clickSvc   clickUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the database. The provided context
// bounds the initial readiness check. Missing embedding indexes are created;
// if index creation fails the client still comes up, with linking and search
// degraded until the indexes appear.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: defaultVectorDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("visionlink: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("visionlink: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("visionlink: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := wireClient(store, cfg, obs)
	if err := c.EnsureIndexes(ctx); err != nil && cfg.logger != nil {
		cfg.logger.Warn("embedding indexes unavailable", zap.Error(err))
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	indexRepo := indexrepo.New(store, cfg.vectorDimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		indexRepo = indexRepo.WithHNSW(indexrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}

	visionRepo := visionrepo.New(store)
	productRepo := productrepo.New(store)

	var docEmb domain.Embedder = missingEmbedder{}
	if cfg.embedder != nil {
		docEmb = &embedderAdapter{inner: cfg.embedder}
	}
	queryEmb := docEmb
	if cfg.queryInstruction != "" {
		queryEmb = domain.NewInstructionEmbedder(docEmb, cfg.queryInstruction)
	}

	linker := linkinguc.New(visionRepo, productRepo, indexRepo, logger)
	if cfg.searchK > 0 || cfg.wideK > 0 {
		linker = linker.WithCandidates(cfg.searchK, cfg.wideK)
	}
	if cfg.retryAttempts > 0 {
		linker = linker.WithRetry(cfg.retryAttempts, cfg.retryBaseDelay)
	}

	visionSvc := visionuc.New(visionRepo, productRepo, docEmb, queryEmb, indexRepo, linker, logger)
	productSvc := productuc.New(productRepo, visionRepo, docEmb, indexRepo, linker, logger)
	clickSvc := clickuc.New(visionRepo, productRepo, logger)
	healthSvc := healthuc.New(store, nil, indexRepo)

	return &Client{
		store:      store,
		indexRepo:  indexRepo,
		visionSvc:  visionSvc,
		productSvc: productSvc,
		clickSvc:   clickSvc,
		healthSvc:  healthSvc,
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndexes creates the vision and product embedding indexes if absent.
func (c *Client) EnsureIndexes(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_indexes", start, err) }()

	if err = c.indexRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

// Visions returns the vision service.
func (c *Client) Visions() *VisionService {
	return &VisionService{svc: c.visionSvc, obs: c.obs}
}

// Products returns the product service.
func (c *Client) Products() *ProductService {
	return &ProductService{svc: c.productSvc, obs: c.obs}
}

// Clicks returns the click recording service.
func (c *Client) Clicks() *ClickService {
	return &ClickService{svc: c.clickSvc, obs: c.obs}
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}
