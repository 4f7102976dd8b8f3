package domain

import "time"

// Vision is a user's free-text want, matched against products.
// LinkedProducts holds at most MaxLinkedProducts entries (product ID → similarity
// score); Clicks tracks per-product click counts and may retain keys for products
// that were linked at some point.
type Vision struct {
	ID             string
	OwnerID        string
	OwnerName      string
	OwnerEmail     string
	Description    string
	FilePath       string
	Price          *int64 // cents
	OnSale         bool
	VectorID       string
	LinkedProducts map[string]float64
	Clicks         map[string]int64
	SupportedBy    []string
	SupportCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsSupportedBy reports whether userID is in the support list.
func (v *Vision) IsSupportedBy(userID string) bool {
	for _, id := range v.SupportedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// LinkedProductInfo is the UI-facing shape of a single vision→product link.
type LinkedProductInfo struct {
	ID          string
	Description string
	Score       float64
}
