// Package link holds the pure map algebra behind top-K link maintenance:
// ranking, admission trials, and eviction. No I/O.
package link

import "sort"

// Entry is a single (partner ID, similarity score) pair.
type Entry struct {
	ID    string
	Score float64
}

// Ranked returns the entries of links sorted by score descending.
// Ties break by ID ascending so ranking is deterministic across runs.
func Ranked(links map[string]float64) []Entry {
	entries := make([]Entry, 0, len(links))
	for id, score := range links {
		entries = append(entries, Entry{ID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// WouldEnterTopK reports whether a new entry with the given id and score would
// survive into the top k of current. Under k entries there is always room;
// otherwise the candidate must outrank the weakest incumbent under the same
// deterministic ordering MergeTopK applies.
func WouldEnterTopK(current map[string]float64, id string, score float64, k int) bool {
	if len(current) < k {
		return true
	}
	kept, _ := MergeTopK(current, id, score, k)
	_, ok := kept[id]
	return ok
}

// MergeTopK adds (id, score) to current and truncates to the k best entries.
// It returns the kept map and the IDs evicted by the addition. The candidate
// itself may be the one cut. current is not modified.
func MergeTopK(current map[string]float64, id string, score float64, k int) (kept map[string]float64, evicted []string) {
	trial := make(map[string]float64, len(current)+1)
	for cid, cscore := range current {
		trial[cid] = cscore
	}
	trial[id] = score

	ranked := Ranked(trial)
	kept = make(map[string]float64, k)
	for i, e := range ranked {
		if i < k {
			kept[e.ID] = e.Score
			continue
		}
		evicted = append(evicted, e.ID)
	}
	return kept, evicted
}

// TruncateTopK keeps the k best entries of links, returning the kept map and
// the IDs that fell out.
func TruncateTopK(links map[string]float64, k int) (kept map[string]float64, dropped []string) {
	ranked := Ranked(links)
	kept = make(map[string]float64, k)
	for i, e := range ranked {
		if i < k {
			kept[e.ID] = e.Score
			continue
		}
		dropped = append(dropped, e.ID)
	}
	return kept, dropped
}

// MergeClicks builds the click map paired with kept links: counts survive for
// kept partners, new partners start at zero, and evicted partners drop with
// their link entry.
func MergeClicks(existing map[string]int64, kept map[string]float64) map[string]int64 {
	clicks := make(map[string]int64, len(kept))
	for id := range kept {
		clicks[id] = existing[id]
	}
	return clicks
}
