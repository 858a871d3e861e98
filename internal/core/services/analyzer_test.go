package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	audiopkg "github.com/ewilliams-labs/emotunes/internal/audio"
	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/features"
)

var happyFeatures = domain.AudioFeatures{Tempo: 120, Valence: 0.8, Energy: 0.7, Danceability: 0.6, Instrumentalness: 0.1}

func stubDecode(samples []float64, err error) func(*audiopkg.Scratch, int) (audiopkg.Samples, error) {
	return func(*audiopkg.Scratch, int) (audiopkg.Samples, error) {
		return audiopkg.Samples{Data: samples, SampleRate: 22050}, err
	}
}

func noTags(string) (audiopkg.Tags, error) { return audiopkg.Tags{}, nil }

func TestSongAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name        string
		sourceErr   error
		decodeErr   error
		extractErr  error
		saveErr     error
		wantStatus  domain.AnalysisStatus
		wantFailure domain.FailureKind
		wantStage   string
		wantSaved   int
	}{
		{
			name:       "success",
			wantStatus: domain.AnalysisOK,
			wantSaved:  1,
		},
		{
			name:        "size limit",
			sourceErr:   domain.ErrSizeLimitExceeded,
			wantStatus:  domain.AnalysisUnavailable,
			wantFailure: domain.FailureSizeLimit,
			wantStage:   domain.StageFetch,
		},
		{
			name:        "unsupported format",
			sourceErr:   domain.ErrUnsupportedFormat,
			wantStatus:  domain.AnalysisUnavailable,
			wantFailure: domain.FailureUnsupportedFormat,
			wantStage:   domain.StageFetch,
		},
		{
			name:        "fetch error",
			sourceErr:   domain.ErrFetch,
			wantStatus:  domain.AnalysisUnavailable,
			wantFailure: domain.FailureFetch,
			wantStage:   domain.StageFetch,
		},
		{
			name:        "decode error",
			decodeErr:   domain.ErrExtraction,
			wantStatus:  domain.AnalysisUnavailable,
			wantFailure: domain.FailureExtraction,
			wantStage:   domain.StageDecode,
		},
		{
			name:        "extract error without sentinel",
			extractErr:  errors.New("fft blew up"),
			wantStatus:  domain.AnalysisUnavailable,
			wantFailure: domain.FailureExtraction,
			wantStage:   domain.StageExtract,
		},
		{
			name:       "store error keeps result",
			saveErr:    errors.New("disk full"),
			wantStatus: domain.AnalysisOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scratch, path, err := ownedScratch(t.TempDir())
			if err != nil {
				t.Fatalf("scratch: %v", err)
			}
			src := &mockSource{scratch: scratch, err: tt.sourceErr}
			if tt.sourceErr != nil {
				src.scratch = nil
			}
			ext := &mockExtractor{features: happyFeatures, err: tt.extractErr}
			repo := &mockRepo{saveErr: tt.saveErr}

			a := NewSongAnalyzer(src, ext, repo, 22050, nil)
			a.decode = stubDecode(make([]float64, 4096), tt.decodeErr)
			a.readTags = noTags

			out := a.Analyze(context.Background(), "https://cdn.example.com/previews/sunny-day.mp3")

			if out.Status != tt.wantStatus {
				t.Fatalf("expected status %q, got %q (err %v)", tt.wantStatus, out.Status, out.Err)
			}
			if out.Failure != tt.wantFailure {
				t.Errorf("expected failure %q, got %q", tt.wantFailure, out.Failure)
			}
			if tt.wantStage != "" {
				var aerr *domain.AnalysisError
				if !errors.As(out.Err, &aerr) {
					t.Fatalf("expected AnalysisError, got %T", out.Err)
				}
				if aerr.Stage != tt.wantStage {
					t.Errorf("expected stage %q, got %q", tt.wantStage, aerr.Stage)
				}
				if out.Analysis != nil {
					t.Errorf("expected no analysis on failure")
				}
			}
			if len(repo.saved) != tt.wantSaved {
				t.Errorf("expected %d saved analyses, got %d", tt.wantSaved, len(repo.saved))
			}
			// A failed fetch never hands over a scratch file.
			if tt.sourceErr == nil {
				if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
					t.Errorf("scratch file should be removed on every path, stat err = %v", err)
				}
			}
		})
	}
}

func TestSongAnalyzer_ResultFields(t *testing.T) {
	scratch, _, err := ownedScratch(t.TempDir())
	if err != nil {
		t.Fatalf("scratch: %v", err)
	}
	repo := &mockRepo{}
	a := NewSongAnalyzer(&mockSource{scratch: scratch}, &mockExtractor{features: happyFeatures}, repo, 22050, nil)
	a.decode = stubDecode(make([]float64, 4096), nil)
	a.readTags = noTags

	out := a.Analyze(context.Background(), "https://cdn.example.com/previews/sunny-day.mp3?sig=abc")
	if !out.OK() {
		t.Fatalf("expected ok outcome, got %+v", out)
	}
	got := out.Analysis
	if got.ID == "" {
		t.Errorf("expected an ID")
	}
	if got.Title != "sunny-day" {
		t.Errorf("expected title from URL, got %q", got.Title)
	}
	if got.PredictedMood == nil || *got.PredictedMood != domain.MoodHappy {
		t.Errorf("expected happy, got %v", got.PredictedMood)
	}
	if got.Features != happyFeatures {
		t.Errorf("unexpected features %+v", got.Features)
	}
	if repo.saved[0].ID != got.ID {
		t.Errorf("stored analysis differs from returned one")
	}
}

func TestSongAnalyzer_AnalyzeFileKeepsCallerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.wav")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	scratch := audiopkg.NewScratch(path, audiopkg.FormatWAV, 1, false)

	a := NewSongAnalyzer(&mockSource{scratch: scratch}, &mockExtractor{features: happyFeatures}, nil, 22050, nil)
	a.decode = stubDecode(make([]float64, 4096), nil)
	a.readTags = noTags

	out := a.AnalyzeFile(context.Background(), path)
	if !out.OK() {
		t.Fatalf("expected ok outcome, got %+v", out)
	}
	if out.Analysis.Title != "mine" {
		t.Errorf("expected title from file name, got %q", out.Analysis.Title)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("caller's file should survive: %v", err)
	}
}

func TestSongAnalyzer_EndToEnd(t *testing.T) {
	const sr = 8000
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "clicks.wav")
	f, err := os.Create(wavPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	data := make([]int, 4*sr)
	for start := 0; start < len(data); start += sr / 2 {
		for i := 0; i < 200 && start+i < len(data); i++ {
			data[start+i] = int(20000 * math.Exp(-float64(i)/40) * math.Sin(2*math.Pi*1000*float64(i)/sr))
		}
	}
	enc := wav.NewEncoder(f, sr, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: sr}, Data: data, SourceBitDepth: 16}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	_ = f.Close()
	body, err := os.ReadFile(wavPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer server.Close()

	scratchDir := t.TempDir()
	fetcher := audiopkg.NewFetcher(audiopkg.FetcherConfig{MaxBytes: 1 << 20, ScratchDir: scratchDir}, nil)
	ext := features.NewExtractor(features.Config{SampleRate: sr, HopLength: 100, FrameLength: 512, NMels: 40})
	repo := &mockRepo{}

	out := NewSongAnalyzer(fetcher, ext, repo, sr, nil).Analyze(context.Background(), server.URL+"/clicks.wav")
	if !out.OK() {
		t.Fatalf("expected ok outcome, got %+v", out)
	}
	if !out.Analysis.Features.IsFinite() {
		t.Errorf("non-finite features %+v", out.Analysis.Features)
	}
	if out.Analysis.Features.Tempo <= 0 {
		t.Errorf("expected a tempo for a click track, got %v", out.Analysis.Features.Tempo)
	}
	if len(repo.saved) != 1 {
		t.Errorf("expected analysis to be stored")
	}
	left, _ := filepath.Glob(filepath.Join(scratchDir, "*"))
	if len(left) != 0 {
		t.Errorf("expected scratch dir to be empty, found %v", left)
	}
}

func TestTitleFromSource(t *testing.T) {
	tests := map[string]string{
		"https://p.scdn.co/mp3-preview/abc123?cid=1": "abc123",
		"https://example.com/music/song.name.mp3":    "song.name",
		"/tmp/audio/track.wav":                       "track",
		"relative.mp3":                               "relative",
		"https://example.com/":                       "",
	}
	for in, want := range tests {
		if got := titleFromSource(in); got != want {
			t.Errorf("titleFromSource(%q) = %q, want %q", in, got, want)
		}
	}
}
