package domain

import "time"

// Product is a user's free-text offer with a purchase URL, matched against visions.
// LinkedVisions is uncapped: it holds one entry per vision that ranks this product
// in its own top-3.
type Product struct {
	ID            string
	OwnerID       string
	OwnerName     string
	OwnerEmail    string
	Description   string
	FilePath      string
	URL           string
	Price         *int64 // cents
	OnSale        bool
	VectorID      string
	LinkedVisions map[string]float64
	Clicks        map[string]int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LinkedVisionInfo is the UI-facing shape of the primary product→vision link.
type LinkedVisionInfo struct {
	ID          string
	Description string
	Score       float64
}
