package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/cache"
	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/core/mood"
	"github.com/ewilliams-labs/emotunes/internal/core/ports"
)

const (
	DefaultRecommendationLimit = 10
	MaxRecommendationLimit     = 50

	// candidateFactor over-fetches so filtering by mood ranges can still fill the limit.
	candidateFactor = 2
)

// CatalogService answers catalog questions through a shared cache.
type CatalogService struct {
	provider ports.CatalogProvider
	cache    *cache.Cache[any]
	log      *zap.Logger
}

// NewCatalogService constructs a CatalogService. The caller owns c.
func NewCatalogService(provider ports.CatalogProvider, c *cache.Cache[any], log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{provider: provider, cache: c, log: log}
}

// GetAudioFeatures returns the catalog's features for a track, or nil when
// the catalog has none.
func (s *CatalogService) GetAudioFeatures(ctx context.Context, trackID string) (*domain.AudioFeatures, error) {
	key := "audio_features_" + trackID
	if v, ok := s.cache.Get(key); ok {
		if f, ok := v.(domain.AudioFeatures); ok {
			return &f, nil
		}
	}

	f, err := s.provider.GetAudioFeatures(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("catalog: audio features for %s: %w", trackID, err)
	}
	if f == nil {
		return nil, nil
	}
	out := *f
	s.cache.Put(key, out)
	return &out, nil
}

// GetRecommendations returns up to limit tracks whose catalog features fall
// inside the mood's ranges. limit 0 means DefaultRecommendationLimit. With
// no seed genres the first five genres offered by the catalog are used.
func (s *CatalogService) GetRecommendations(ctx context.Context, m domain.Mood, limit int, seedGenres []string) ([]domain.Track, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("catalog: mood %q: %w", m, domain.ErrInvalidMood)
	}
	if limit == 0 {
		limit = DefaultRecommendationLimit
	}
	if limit < 1 || limit > MaxRecommendationLimit {
		return nil, fmt.Errorf("catalog: limit %d not in [1,%d]: %w", limit, MaxRecommendationLimit, domain.ErrInvalidLimit)
	}

	key := fmt.Sprintf("recommendations_%s_%d_%s", m, limit, strings.Join(seedGenres, ","))
	if v, ok := s.cache.Get(key); ok {
		if tracks, ok := v.([]domain.Track); ok {
			return cloneTracks(tracks), nil
		}
	}

	seeds := seedGenres
	if len(seeds) == 0 {
		available, err := s.GenreSeeds(ctx)
		if err != nil {
			return nil, err
		}
		seeds = available
	}
	if len(seeds) > domain.MaxSeedGenres {
		seeds = seeds[:domain.MaxSeedGenres]
	}

	targets := mood.Targets(m)
	candidates, err := s.provider.GetRecommendations(ctx, domain.RecommendationQuery{
		SeedGenres:    seeds,
		Limit:         limit * candidateFactor,
		TargetValence: targets[domain.FeatureValence],
		TargetEnergy:  targets[domain.FeatureEnergy],
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: recommendations: %w", err)
	}

	results := make([]domain.Track, 0, limit)
	for _, track := range candidates {
		features, err := s.GetAudioFeatures(ctx, track.ID)
		if err != nil {
			s.log.Warn("skipping candidate without features", zap.String("track_id", track.ID), zap.Error(err))
			continue
		}
		if features == nil || !mood.Matches(*features, m) {
			continue
		}
		requested := m
		track.Features = features
		track.PredictedMood = &requested
		results = append(results, track)
		if len(results) >= limit {
			break
		}
	}

	s.log.Debug("recommendations filtered",
		zap.String("mood", m.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(results)),
	)
	s.cache.Put(key, cloneTracks(results))
	return results, nil
}

// GetTrackInfo returns track metadata with catalog features and the mood
// inferred from the range table. It returns domain.ErrNotFound when either
// the track or its features are missing.
func (s *CatalogService) GetTrackInfo(ctx context.Context, trackID string) (domain.Track, error) {
	key := "track_info_" + trackID
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(domain.Track); ok {
			return cloneTrack(t), nil
		}
	}

	track, err := s.provider.GetTrack(ctx, trackID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Track{}, err
		}
		return domain.Track{}, fmt.Errorf("catalog: track %s: %w", trackID, err)
	}
	features, err := s.GetAudioFeatures(ctx, trackID)
	if err != nil {
		return domain.Track{}, err
	}
	if features == nil {
		return domain.Track{}, fmt.Errorf("catalog: features for %s: %w", trackID, domain.ErrNotFound)
	}

	track.Features = features
	if m, ok := mood.Infer(*features); ok {
		track.PredictedMood = &m
	}
	s.cache.Put(key, cloneTrack(track))
	return track, nil
}

// GenreSeeds lists the genres accepted as recommendation seeds.
func (s *CatalogService) GenreSeeds(ctx context.Context) ([]string, error) {
	const key = "genre_seeds"
	if v, ok := s.cache.Get(key); ok {
		if seeds, ok := v.([]string); ok {
			return append([]string(nil), seeds...), nil
		}
	}
	seeds, err := s.provider.GenreSeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: genre seeds: %w", err)
	}
	s.cache.Put(key, append([]string(nil), seeds...))
	return seeds, nil
}

// cloneTracks deep-copies tracks so callers cannot mutate cached entries.
func cloneTracks(in []domain.Track) []domain.Track {
	out := make([]domain.Track, len(in))
	for i, t := range in {
		out[i] = cloneTrack(t)
	}
	return out
}

// cloneTrack copies the features and mood a Track points to.
func cloneTrack(t domain.Track) domain.Track {
	if t.Features != nil {
		f := *t.Features
		t.Features = &f
	}
	if t.PredictedMood != nil {
		m := *t.PredictedMood
		t.PredictedMood = &m
	}
	return t
}
