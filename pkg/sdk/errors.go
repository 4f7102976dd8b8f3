package visionlink

import "github.com/visionverse/visionlink/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrVisionNotFound         = domain.ErrVisionNotFound
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrForbidden              = domain.ErrForbidden
	ErrValidation             = domain.ErrValidation
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
