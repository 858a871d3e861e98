package ports

import (
	"context"

	"github.com/ewilliams-labs/emotunes/internal/audio"
	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// AudioSource acquires audio into scratch files. Every returned Scratch
// must be released by the caller.
type AudioSource interface {
	Fetch(ctx context.Context, url string) (*audio.Scratch, error)
	Open(path string) (*audio.Scratch, error)
}

// FeatureExtractor computes features from mono samples.
type FeatureExtractor interface {
	Extract(samples []float64, sampleRate int) (domain.AudioFeatures, error)
}
