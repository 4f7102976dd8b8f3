// Package similarity defines the distance→score transform and the linking
// policy thresholds shared by the duplicate guard and the link maintainer.
package similarity

// Policy thresholds over the [0,1] similarity scale.
const (
	// DuplicateThreshold gates vision-vs-vision duplicate detection.
	DuplicateThreshold = 0.6
	// LinkThreshold gates vision↔product linking in either direction.
	LinkThreshold = 0.5
)

// ScoreFromDistance converts a squared-L2 distance between unit-normalized
// embeddings into cosine similarity:
//
//	squared_L2 = 2 * (1 - cosine)  ⇒  cosine = 1 - squared_L2/2
//
// The geometry bounds the result to [-1,1]; for real text embeddings it lands
// in [0,1] and callers do not re-clamp.
func ScoreFromDistance(distance float64) float64 {
	return 1 - distance/2
}

// IsDuplicate reports whether a score strictly exceeds the duplicate threshold.
func IsDuplicate(score float64) bool {
	return score > DuplicateThreshold
}

// IsLinkable reports whether a score meets the linking threshold.
func IsLinkable(score float64) bool {
	return score >= LinkThreshold
}
