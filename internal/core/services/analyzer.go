package services

import (
	"context"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/audio"
	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/core/mood"
	"github.com/ewilliams-labs/emotunes/internal/core/ports"
)

// SongAnalyzer runs acquisition, decoding, feature extraction and mood
// classification for one audio source.
type SongAnalyzer struct {
	source     ports.AudioSource
	extractor  ports.FeatureExtractor
	repo       ports.AnalysisRepository
	sampleRate int
	log        *zap.Logger

	decode   func(*audio.Scratch, int) (audio.Samples, error)
	readTags func(string) (audio.Tags, error)
	now      func() time.Time
}

// NewSongAnalyzer constructs a SongAnalyzer. repo may be nil, in which case
// results are not persisted.
func NewSongAnalyzer(source ports.AudioSource, extractor ports.FeatureExtractor, repo ports.AnalysisRepository, sampleRate int, log *zap.Logger) *SongAnalyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SongAnalyzer{
		source:     source,
		extractor:  extractor,
		repo:       repo,
		sampleRate: sampleRate,
		log:        log,
		decode:     audio.Decode,
		readTags:   audio.ReadTags,
		now:        time.Now,
	}
}

// Analyze fetches url and analyzes it. Failures are reported through the
// outcome, never as a panic or error return.
func (a *SongAnalyzer) Analyze(ctx context.Context, url string) domain.AnalysisOutcome {
	return a.AnalyzeAs(ctx, uuid.NewString(), url)
}

// AnalyzeAs is Analyze with a caller-chosen analysis ID, used by background
// jobs whose ID is handed out before the work runs.
func (a *SongAnalyzer) AnalyzeAs(ctx context.Context, id, url string) domain.AnalysisOutcome {
	scratch, err := a.source.Fetch(ctx, url)
	if err != nil {
		return a.fail(domain.StageFetch, url, err)
	}
	return a.run(ctx, id, url, scratch)
}

// AnalyzeFile analyzes a local file. The file itself is left in place.
func (a *SongAnalyzer) AnalyzeFile(ctx context.Context, path string) domain.AnalysisOutcome {
	scratch, err := a.source.Open(path)
	if err != nil {
		return a.fail(domain.StageFetch, path, err)
	}
	return a.run(ctx, uuid.NewString(), path, scratch)
}

func (a *SongAnalyzer) run(ctx context.Context, id, source string, scratch *audio.Scratch) domain.AnalysisOutcome {
	defer func() {
		if err := scratch.Release(); err != nil {
			a.log.Warn("scratch release failed", zap.String("source", source), zap.Error(err))
		}
	}()

	samples, err := a.decode(scratch, a.sampleRate)
	if err != nil {
		return a.fail(domain.StageDecode, source, err)
	}

	features, err := a.extractor.Extract(samples.Data, samples.SampleRate)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) {
			err = errors.Join(domain.ErrExtraction, err)
		}
		return a.fail(domain.StageExtract, source, err)
	}

	tags, err := a.readTags(scratch.Path)
	if err != nil {
		a.log.Debug("tag read failed", zap.String("source", source), zap.Error(err))
	}
	if tags.Title == "" {
		tags.Title = titleFromSource(source)
	}

	analysis := domain.Analysis{
		ID:         id,
		Source:     source,
		Title:      tags.Title,
		Artist:     tags.Artist,
		Features:   features,
		AnalyzedAt: a.now().UTC(),
	}
	if m, ok := mood.Classify(features); ok {
		analysis.PredictedMood = &m
	}

	if a.repo != nil {
		if err := a.repo.Save(ctx, analysis); err != nil {
			// Features are still valid; only persistence is lost.
			a.log.Warn("analysis not stored",
				zap.String("source", source),
				zap.String("stage", domain.StageStore),
				zap.Error(err),
			)
		}
	}

	analysisOutcomes.WithLabelValues(string(domain.AnalysisOK), string(domain.FailureNone)).Inc()
	a.log.Info("song analyzed",
		zap.String("id", analysis.ID),
		zap.String("source", source),
		zap.Float64("tempo", features.Tempo),
		zap.Float64("valence", features.Valence),
		zap.Float64("energy", features.Energy),
		zap.Stringp("mood", (*string)(analysis.PredictedMood)),
	)
	return domain.Succeeded(analysis)
}

func (a *SongAnalyzer) fail(stage, source string, err error) domain.AnalysisOutcome {
	err = &domain.AnalysisError{Stage: stage, Source: source, Err: err}
	out := domain.Unavailable(err)
	analysisOutcomes.WithLabelValues(string(out.Status), string(out.Failure)).Inc()
	a.log.Warn("song analysis unavailable",
		zap.String("source", source),
		zap.String("stage", stage),
		zap.String("failure", string(out.Failure)),
		zap.Error(err),
	)
	return out
}

// titleFromSource derives a display title from a URL or file path.
func titleFromSource(source string) string {
	var name string
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		name = path.Base(u.Path)
	} else {
		name = filepath.Base(source)
	}
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
