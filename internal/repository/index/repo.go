package index

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/visionverse/visionlink/internal/db"
	"github.com/visionverse/visionlink/internal/domain"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo maintains the two embedding collections and answers KNN queries
// against them. Vectors are unit-normalized on write and on query, so the
// squared L2 distance reported by FT.SEARCH maps onto cosine similarity.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a vector index repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndexes creates the vision and product embedding indexes if absent.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, sub := range []string{domain.SubindexVisions, domain.SubindexProducts} {
		name := indexName(sub)
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			continue
		}
		if err := r.store.CreateIndex(ctx, r.buildIndex(sub)); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

// IndexExists reports whether the named embedding index has been created.
func (r *Repo) IndexExists(ctx context.Context, name string) (bool, error) {
	return r.store.IndexExists(ctx, name)
}

// UpsertVision indexes a vision embedding.
func (r *Repo) UpsertVision(ctx context.Context, id string, vector []float32, content string) error {
	return r.upsert(ctx, domain.SubindexVisions, id, vector, content)
}

// UpsertProduct indexes a product embedding.
func (r *Repo) UpsertProduct(ctx context.Context, id string, vector []float32, content string) error {
	return r.upsert(ctx, domain.SubindexProducts, id, vector, content)
}

// QueryVisions returns up to k nearest vision embeddings.
func (r *Repo) QueryVisions(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	return r.query(ctx, domain.SubindexVisions, vector, k)
}

// QueryProducts returns up to k nearest product embeddings.
func (r *Repo) QueryProducts(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	return r.query(ctx, domain.SubindexProducts, vector, k)
}

// GetVisionVector reads back the stored (unit-normalized) vision embedding.
// Backfill after a product deletion re-queries the product index with it.
func (r *Repo) GetVisionVector(ctx context.Context, id string) ([]float32, error) {
	key := embKey(domain.SubindexVisions, id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	raw, ok := fields["__vector"]
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("vision embedding %s: %w", id, db.ErrKeyNotFound)
	}
	vec := bytesToVector(raw)
	if vec == nil {
		return nil, fmt.Errorf("vision embedding %s: malformed vector payload", id)
	}
	return vec, nil
}

// DeleteVision drops a vision embedding from the index.
func (r *Repo) DeleteVision(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, embKey(domain.SubindexVisions, id)); err != nil {
		return fmt.Errorf("del vision embedding %s: %w", id, err)
	}
	return nil
}

// DeleteProduct drops a product embedding from the index.
func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, embKey(domain.SubindexProducts, id)); err != nil {
		return fmt.Errorf("del product embedding %s: %w", id, err)
	}
	return nil
}

func (r *Repo) upsert(ctx context.Context, sub, id string, vector []float32, content string) error {
	key := embKey(sub, id)
	fields := map[string]string{
		"__vector":  vectorToBytes(normalize(vector)),
		"__content": content,
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

func (r *Repo) query(ctx context.Context, sub string, vector []float32, k int) ([]domain.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName(sub),
		Vector:    normalize(vector),
		K:         k,
	})
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w", sub, err)
	}
	if result == nil {
		return nil, nil
	}

	prefix := embKey(sub, "")
	neighbors := make([]domain.Neighbor, 0, len(result.Entries))
	for _, entry := range result.Entries {
		neighbors = append(neighbors, domain.Neighbor{
			ID:       strings.TrimPrefix(entry.Key, prefix),
			Distance: entry.Distance,
		})
	}
	return neighbors, nil
}

func (r *Repo) buildIndex(sub string) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName(sub),
		Prefixes: []string{embKey(sub, "")},
		Fields: []db.IndexField{
			{
				Name: "__content",
				Type: db.IndexFieldText,
			},
			{
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceL2,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
}

func indexName(sub string) string {
	return fmt.Sprintf("%semb:%s:idx", domain.KeyPrefix, sub)
}

func embKey(sub, id string) string {
	return fmt.Sprintf("%semb:%s:%s", domain.KeyPrefix, sub, id)
}

// normalize scales a vector to unit length. Zero vectors pass through.
func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
