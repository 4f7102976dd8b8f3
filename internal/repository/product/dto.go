package product

import (
	"time"

	"github.com/visionverse/visionlink/internal/domain"
)

// productDoc is the JSON shape stored under vv:products:<id>.
type productDoc struct {
	OwnerID       string             `json:"ownerId"`
	OwnerName     string             `json:"ownerName"`
	OwnerEmail    string             `json:"ownerEmail"`
	Description   string             `json:"description"`
	FilePath      string             `json:"filePath"`
	URL           string             `json:"url"`
	Price         *int64             `json:"price"`
	OnSale        bool               `json:"onSale"`
	VectorID      string             `json:"vectorId"`
	LinkedVisions map[string]float64 `json:"linkedVisions"`
	Clicks        map[string]int64   `json:"clicks"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func toDoc(p *domain.Product) productDoc {
	d := productDoc{
		OwnerID:       p.OwnerID,
		OwnerName:     p.OwnerName,
		OwnerEmail:    p.OwnerEmail,
		Description:   p.Description,
		FilePath:      p.FilePath,
		URL:           p.URL,
		Price:         p.Price,
		OnSale:        p.OnSale,
		VectorID:      p.VectorID,
		LinkedVisions: p.LinkedVisions,
		Clicks:        p.Clicks,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if d.LinkedVisions == nil {
		d.LinkedVisions = map[string]float64{}
	}
	if d.Clicks == nil {
		d.Clicks = map[string]int64{}
	}
	return d
}

func fromDoc(id string, d productDoc) domain.Product {
	p := domain.Product{
		ID:            id,
		OwnerID:       d.OwnerID,
		OwnerName:     d.OwnerName,
		OwnerEmail:    d.OwnerEmail,
		Description:   d.Description,
		FilePath:      d.FilePath,
		URL:           d.URL,
		Price:         d.Price,
		OnSale:        d.OnSale,
		VectorID:      d.VectorID,
		LinkedVisions: d.LinkedVisions,
		Clicks:        d.Clicks,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if p.LinkedVisions == nil {
		p.LinkedVisions = map[string]float64{}
	}
	if p.Clicks == nil {
		p.Clicks = map[string]int64{}
	}
	return p
}
