package domain

// KeyPrefix namespaces every key the service writes to the store.
const KeyPrefix = "vv:"

// Subindex names for the two embedding collections.
const (
	SubindexVisions  = "visions"
	SubindexProducts = "products"
)

// MaxLinkedProducts caps a vision's link map. Products carry no such cap:
// a product may rank in many visions' top-3 at once.
const MaxLinkedProducts = 3

// DefaultFilePath marks an entity created without an attachment.
const DefaultFilePath = "/no-file"
