package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/visionverse/visionlink/internal/db"
	"github.com/visionverse/visionlink/internal/domain"
)

// store is the consumer interface for product documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONDel(ctx context.Context, key, path string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the product persistence contracts of the usecase layer.
type Repo struct {
	store store
}

// New creates a product repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert stores a new product document, link map included.
func (r *Repo) Insert(ctx context.Context, p *domain.Product) error {
	key := docKey(p.ID)
	data, err := json.Marshal(toDoc(p))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Product, error) {
	key := docKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseDoc(id, raw)
}

// Exists reports whether a product document is present.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", docKey(id), err)
	}
	return ok, nil
}

// Delete removes a product document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", docKey(id), err)
	}
	return nil
}

// List returns all products, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Product, error) {
	keys, err := r.store.Scan(ctx, docKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	products := make([]domain.Product, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, docKey(""))
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between SCAN and GET
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		p, err := parseDoc(id, raw)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

// SetVectorID records the embedding document ID after indexing.
func (r *Repo) SetVectorID(ctx context.Context, id, vectorID string) error {
	return r.setFields(ctx, id, map[string]any{"vectorId": vectorID})
}

// SetSale updates the asking price and sale flag.
func (r *Repo) SetSale(ctx context.Context, id string, price *int64, onSale bool) error {
	return r.setFields(ctx, id, map[string]any{"price": price, "onSale": onSale})
}

// SetVisionLink records the back-link to a vision that admitted this product
// into its top-3. The click counter is initialized only if absent.
func (r *Repo) SetVisionLink(ctx context.Context, id, visionID string, score float64) error {
	key := docKey(id)
	scoreData, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, mapPath("linkedVisions", visionID), scoreData); err != nil {
		return wrapNotFound(err, fmt.Sprintf("set vision link %s on %s", visionID, id))
	}
	if err := r.store.JSONSetNX(ctx, key, mapPath("clicks", visionID), []byte("0")); err != nil {
		return fmt.Errorf("init clicks %s on %s: %w", visionID, id, err)
	}
	return r.touch(ctx, id)
}

// UnsetVisionLink drops the back-link after a vision evicted this product
// or was deleted.
func (r *Repo) UnsetVisionLink(ctx context.Context, id, visionID string) error {
	key := docKey(id)
	if err := r.store.JSONDel(ctx, key, mapPath("linkedVisions", visionID)); err != nil {
		return wrapNotFound(err, fmt.Sprintf("unset vision link %s on %s", visionID, id))
	}
	if err := r.store.JSONDel(ctx, key, mapPath("clicks", visionID)); err != nil {
		return fmt.Errorf("unset clicks %s on %s: %w", visionID, id, err)
	}
	return r.touch(ctx, id)
}

// IncrementClick bumps the click counter for a linked vision, treating a
// missing counter as zero.
func (r *Repo) IncrementClick(ctx context.Context, id, visionID string) error {
	p, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	count := p.Clicks[visionID] + 1
	data, err := json.Marshal(count)
	if err != nil {
		return fmt.Errorf("marshal click count: %w", err)
	}
	if err := r.store.JSONSet(ctx, docKey(id), mapPath("clicks", visionID), data); err != nil {
		return wrapNotFound(err, fmt.Sprintf("set clicks %s on %s", visionID, id))
	}
	return r.touch(ctx, id)
}

func (r *Repo) setFields(ctx context.Context, id string, fields map[string]any) error {
	key := docKey(id)
	for name, value := range fields {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		if err := r.store.JSONSet(ctx, key, "$."+name, data); err != nil {
			return wrapNotFound(err, fmt.Sprintf("set %s on %s", name, id))
		}
	}
	return r.touch(ctx, id)
}

func (r *Repo) touch(ctx context.Context, id string) error {
	data, err := json.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marshal updatedAt: %w", err)
	}
	if err := r.store.JSONSet(ctx, docKey(id), "$.updatedAt", data); err != nil {
		return wrapNotFound(err, fmt.Sprintf("touch %s", id))
	}
	return nil
}

func wrapNotFound(err error, op string) error {
	if errors.Is(err, db.ErrKeyNotFound) {
		return domain.ErrProductNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseDoc(id string, raw []byte) (domain.Product, error) {
	// JSON.GET with a $ path wraps the document in an array.
	var docs []productDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Product{}, fmt.Errorf("unmarshal product %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return fromDoc(id, docs[0]), nil
}

func docKey(id string) string {
	return domain.KeyPrefix + domain.SubindexProducts + ":" + id
}

func mapPath(field, id string) string {
	return fmt.Sprintf(`$.%s["%s"]`, field, id)
}
