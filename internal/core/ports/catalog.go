package ports

import (
	"context"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// CatalogProvider is the external track catalog.
type CatalogProvider interface {
	// GetTrack returns domain.ErrNotFound for unknown IDs.
	GetTrack(ctx context.Context, id string) (domain.Track, error)
	// GetAudioFeatures returns (nil, nil) when the catalog has no features for the track.
	GetAudioFeatures(ctx context.Context, id string) (*domain.AudioFeatures, error)
	GetRecommendations(ctx context.Context, q domain.RecommendationQuery) ([]domain.Track, error)
	GenreSeeds(ctx context.Context) ([]string, error)
}
