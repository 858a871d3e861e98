package services

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/ewilliams-labs/emotunes/internal/audio"
	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

type mockSource struct {
	scratch *audio.Scratch
	err     error
}

func (m *mockSource) Fetch(ctx context.Context, url string) (*audio.Scratch, error) {
	return m.scratch, m.err
}

func (m *mockSource) Open(path string) (*audio.Scratch, error) {
	return m.scratch, m.err
}

type mockExtractor struct {
	features domain.AudioFeatures
	err      error
	calls    int
}

func (m *mockExtractor) Extract(samples []float64, sampleRate int) (domain.AudioFeatures, error) {
	m.calls++
	return m.features, m.err
}

type mockRepo struct {
	mu      sync.Mutex
	saved   []domain.Analysis
	saveErr error
}

func (m *mockRepo) Save(ctx context.Context, a domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (domain.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.saved {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Analysis{}, domain.ErrNotFound
}

func (m *mockRepo) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Analysis(nil), m.saved...), nil
}

type mockCatalog struct {
	tracks       map[string]domain.Track
	features     map[string]*domain.AudioFeatures
	candidates   []domain.Track
	genres       []string
	recErr       error
	lastQuery    domain.RecommendationQuery
	trackCalls   int
	featureCalls int
	genreCalls   int
	recCalls     int
}

func (m *mockCatalog) GetTrack(ctx context.Context, id string) (domain.Track, error) {
	m.trackCalls++
	t, ok := m.tracks[id]
	if !ok {
		return domain.Track{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockCatalog) GetAudioFeatures(ctx context.Context, id string) (*domain.AudioFeatures, error) {
	m.featureCalls++
	if id == "broken" {
		return nil, errors.New("catalog exploded")
	}
	return m.features[id], nil
}

func (m *mockCatalog) GetRecommendations(ctx context.Context, q domain.RecommendationQuery) ([]domain.Track, error) {
	m.recCalls++
	m.lastQuery = q
	return m.candidates, m.recErr
}

func (m *mockCatalog) GenreSeeds(ctx context.Context) ([]string, error) {
	m.genreCalls++
	return m.genres, nil
}

// ownedScratch writes a throwaway file the scratch is responsible for.
func ownedScratch(dir string) (*audio.Scratch, string, error) {
	f, err := os.CreateTemp(dir, "scratch-*.wav")
	if err != nil {
		return nil, "", err
	}
	_ = f.Close()
	return audio.NewScratch(f.Name(), audio.FormatWAV, 0, true), f.Name(), nil
}
