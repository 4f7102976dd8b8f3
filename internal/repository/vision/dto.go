package vision

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/visionverse/visionlink/internal/domain"
)

// visionDoc is the JSON shape stored under vv:visions:<id>.
type visionDoc struct {
	OwnerID        string             `json:"ownerId"`
	OwnerName      string             `json:"ownerName"`
	OwnerEmail     string             `json:"ownerEmail"`
	Description    string             `json:"description"`
	FilePath       string             `json:"filePath"`
	Price          *int64             `json:"price"`
	OnSale         bool               `json:"onSale"`
	VectorID       string             `json:"vectorId"`
	LinkedProducts map[string]float64 `json:"linkedProducts"`
	Clicks         map[string]int64   `json:"clicks"`
	SupportedBy    []string           `json:"supportedBy"`
	SupportCount   int                `json:"supportCount"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func toDoc(v *domain.Vision) visionDoc {
	d := visionDoc{
		OwnerID:        v.OwnerID,
		OwnerName:      v.OwnerName,
		OwnerEmail:     v.OwnerEmail,
		Description:    v.Description,
		FilePath:       v.FilePath,
		Price:          v.Price,
		OnSale:         v.OnSale,
		VectorID:       v.VectorID,
		LinkedProducts: v.LinkedProducts,
		Clicks:         v.Clicks,
		SupportedBy:    v.SupportedBy,
		SupportCount:   v.SupportCount,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	if d.LinkedProducts == nil {
		d.LinkedProducts = map[string]float64{}
	}
	if d.Clicks == nil {
		d.Clicks = map[string]int64{}
	}
	if d.SupportedBy == nil {
		d.SupportedBy = []string{}
	}
	return d
}

func fromDoc(id string, d visionDoc) domain.Vision {
	v := domain.Vision{
		ID:             id,
		OwnerID:        d.OwnerID,
		OwnerName:      d.OwnerName,
		OwnerEmail:     d.OwnerEmail,
		Description:    d.Description,
		FilePath:       d.FilePath,
		Price:          d.Price,
		OnSale:         d.OnSale,
		VectorID:       d.VectorID,
		LinkedProducts: d.LinkedProducts,
		Clicks:         d.Clicks,
		SupportedBy:    d.SupportedBy,
		SupportCount:   d.SupportCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if v.LinkedProducts == nil {
		v.LinkedProducts = map[string]float64{}
	}
	if v.Clicks == nil {
		v.Clicks = map[string]int64{}
	}
	return v
}

// descHash fingerprints an owner plus trimmed description for the
// exact-duplicate lookup key. The guard is per-owner: two users may post
// identical descriptions.
func descHash(ownerID, description string) string {
	sum := sha256.Sum256([]byte(ownerID + "\x00" + strings.TrimSpace(description)))
	return hex.EncodeToString(sum[:])
}
