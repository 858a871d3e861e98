package ports

import (
	"context"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// AnalysisRepository persists finished analyses.
type AnalysisRepository interface {
	Save(ctx context.Context, a domain.Analysis) error
	// GetByID returns domain.ErrNotFound when no analysis has the ID.
	GetByID(ctx context.Context, id string) (domain.Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error)
}
