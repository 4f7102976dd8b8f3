package db

// KNNQuery is the input for vector similarity search. Searches are global:
// no per-owner filtering is applied (linking spans all users).
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. Distance is the raw
// __vector_score value (squared L2 for L2-metric indexes).
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
