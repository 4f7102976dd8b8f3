package product

import (
	"context"
	"testing"
	"time"

	"github.com/visionverse/visionlink/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn   func(ctx context.Context, key, path string, data []byte) error
	jsonSetNXFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn   func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonDelFn   func(ctx context.Context, key, path string) error
	delFn       func(ctx context.Context, key string) error
	existsFn    func(ctx context.Context, key string) (bool, error)
	scanFn      func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetNX(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetNXFn != nil {
		return m.jsonSetNXFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return []byte("[]"), nil
}

func (m *mockStore) JSONDel(ctx context.Context, key, path string) error {
	if m.jsonDelFn != nil {
		return m.jsonDelFn(ctx, key, path)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testProduct(t *testing.T) domain.Product {
	t.Helper()
	return domain.Product{
		ID:          "prod-1",
		OwnerID:     "user-3",
		OwnerName:   "Grace",
		OwnerEmail:  "grace@example.com",
		Description: "a reliable compiler toolchain",
		FilePath:    domain.DefaultFilePath,
		URL:         "https://shop.example.com/prod-1",
		VectorID:    "vec-9",
		LinkedVisions: map[string]float64{
			"vis-1": 0.88,
		},
		Clicks:    map[string]int64{"vis-1": 2},
		CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}
