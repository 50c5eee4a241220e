package port

import (
	"context"

	"archgen/internal/domain"
)

// DocumentSource yields discovery documents ordered by relative path.
// An empty result is a valid state, not an error.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.Document, error)
}
