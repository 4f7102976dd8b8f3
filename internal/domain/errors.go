package domain

import "errors"

var (
	// ErrVisionNotFound signals a missing vision document.
	ErrVisionNotFound = errors.New("vision not found")
	// ErrProductNotFound signals a missing product document.
	ErrProductNotFound = errors.New("product not found")
	// ErrForbidden signals an operation on an entity owned by another user.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation signals malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
