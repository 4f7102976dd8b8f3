package vision

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

// store is the consumer interface for vision documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONDel(ctx context.Context, key, path string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements the vision persistence contracts of the usecase layer.
type Repo struct {
	store store
}

// New creates a vision repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert stores a new vision document and registers its description
// fingerprint for the exact-duplicate guard.
func (r *Repo) Insert(ctx context.Context, v *domain.Vision) error {
	key := docKey(v.ID)
	data, err := json.Marshal(toDoc(v))
	if err != nil {
		return fmt.Errorf("marshal vision: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	if err := r.store.Set(ctx, descKey(v.OwnerID, v.Description), []byte(v.ID)); err != nil {
		return fmt.Errorf("set desc fingerprint for %s: %w", v.ID, err)
	}
	return nil
}

// Get returns a vision by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Vision, error) {
	key := docKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Vision{}, domain.ErrVisionNotFound
		}
		return domain.Vision{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseDoc(id, raw)
}

// Exists reports whether a vision document is present.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", docKey(id), err)
	}
	return ok, nil
}

// Delete removes a vision document and its description fingerprint.
// The fingerprint is dropped only while it still points at this vision.
func (r *Repo) Delete(ctx context.Context, id string) error {
	v, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	dk := descKey(v.OwnerID, v.Description)
	if owner, err := r.store.Get(ctx, dk); err == nil && string(owner) == id {
		if err := r.store.Del(ctx, dk); err != nil {
			return fmt.Errorf("del desc fingerprint %s: %w", dk, err)
		}
	}

	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", docKey(id), err)
	}
	return nil
}

// List returns all visions, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Vision, error) {
	keys, err := r.store.Scan(ctx, docKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan visions: %w", err)
	}

	visions := make([]domain.Vision, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, docKey(""))
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between SCAN and GET
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		v, err := parseDoc(id, raw)
		if err != nil {
			return nil, err
		}
		visions = append(visions, v)
	}

	sort.Slice(visions, func(i, j int) bool {
		return visions[i].CreatedAt.After(visions[j].CreatedAt)
	})
	return visions, nil
}

// SetVectorID records the embedding document ID after indexing.
func (r *Repo) SetVectorID(ctx context.Context, id, vectorID string) error {
	return r.setFields(ctx, id, map[string]any{"vectorId": vectorID})
}

// SetSale updates the asking price and sale flag.
func (r *Repo) SetSale(ctx context.Context, id string, price *int64, onSale bool) error {
	return r.setFields(ctx, id, map[string]any{"price": price, "onSale": onSale})
}

// SetSupport overwrites the supporter list and its count.
func (r *Repo) SetSupport(ctx context.Context, id string, supportedBy []string, count int) error {
	if supportedBy == nil {
		supportedBy = []string{}
	}
	return r.setFields(ctx, id, map[string]any{"supportedBy": supportedBy, "supportCount": count})
}

// SetLinks overwrites the full link map and the click map in one update.
// Used when eviction or backfill recomputes a vision's top-3.
func (r *Repo) SetLinks(ctx context.Context, id string, links map[string]float64, clicks map[string]int64) error {
	if links == nil {
		links = map[string]float64{}
	}
	if clicks == nil {
		clicks = map[string]int64{}
	}
	return r.setFields(ctx, id, map[string]any{"linkedProducts": links, "clicks": clicks})
}

// SetLink adds or rescores a single product link. The click counter for the
// product is initialized to zero only if absent.
func (r *Repo) SetLink(ctx context.Context, id, productID string, score float64) error {
	key := docKey(id)
	scoreData, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, mapPath("linkedProducts", productID), scoreData); err != nil {
		return wrapNotFound(err, fmt.Sprintf("set link %s on %s", productID, id))
	}
	if err := r.store.JSONSetNX(ctx, key, mapPath("clicks", productID), []byte("0")); err != nil {
		return fmt.Errorf("init clicks %s on %s: %w", productID, id, err)
	}
	return r.touch(ctx, id)
}

// UnsetLink removes a single product link and its click counter.
func (r *Repo) UnsetLink(ctx context.Context, id, productID string) error {
	key := docKey(id)
	if err := r.store.JSONDel(ctx, key, mapPath("linkedProducts", productID)); err != nil {
		return wrapNotFound(err, fmt.Sprintf("unset link %s on %s", productID, id))
	}
	if err := r.store.JSONDel(ctx, key, mapPath("clicks", productID)); err != nil {
		return fmt.Errorf("unset clicks %s on %s: %w", productID, id, err)
	}
	return r.touch(ctx, id)
}

// IncrementClick bumps the click counter for a linked product, treating a
// missing counter as zero.
func (r *Repo) IncrementClick(ctx context.Context, id, productID string) error {
	v, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	count := v.Clicks[productID] + 1
	data, err := json.Marshal(count)
	if err != nil {
		return fmt.Errorf("marshal click count: %w", err)
	}
	if err := r.store.JSONSet(ctx, docKey(id), mapPath("clicks", productID), data); err != nil {
		return wrapNotFound(err, fmt.Sprintf("set clicks %s on %s", productID, id))
	}
	return r.touch(ctx, id)
}

// LookupByDescription resolves the exact-duplicate fingerprint to a vision ID.
// Returns ok=false when the owner has no vision with this description.
func (r *Repo) LookupByDescription(ctx context.Context, ownerID, description string) (string, bool, error) {
	raw, err := r.store.Get(ctx, descKey(ownerID, description))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get desc fingerprint: %w", err)
	}
	return string(raw), true, nil
}

// setFields writes each field via a path-level JSON.SET and refreshes updatedAt.
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
		return domain.ErrVisionNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseDoc(id string, raw []byte) (domain.Vision, error) {
	// JSON.GET with a $ path wraps the document in an array.
	var docs []visionDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Vision{}, fmt.Errorf("unmarshal vision %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domain.Vision{}, domain.ErrVisionNotFound
	}
	return fromDoc(id, docs[0]), nil
}

func docKey(id string) string {
	return domain.KeyPrefix + domain.SubindexVisions + ":" + id
}

func descKey(ownerID, description string) string {
	return domain.KeyPrefix + "visiondesc:" + descHash(ownerID, description)
}

func mapPath(field, id string) string {
	return fmt.Sprintf(`$.%s["%s"]`, field, id)
}
