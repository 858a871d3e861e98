package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewAudioFeatures_Clamps(t *testing.T) {
	tests := []struct {
		name string
		in   [5]float64
		want AudioFeatures
	}{
		{
			name: "in range values unchanged",
			in:   [5]float64{120, 0.8, 0.7, 0.6, 0.1},
			want: AudioFeatures{Tempo: 120, Valence: 0.8, Energy: 0.7, Danceability: 0.6, Instrumentalness: 0.1},
		},
		{
			name: "bounded fields clamped, tempo kept",
			in:   [5]float64{310, 1.4, -0.2, 2, math.NaN()},
			want: AudioFeatures{Tempo: 310, Valence: 1, Energy: 0, Danceability: 1, Instrumentalness: 0},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := NewAudioFeatures(tc.in[0], tc.in[1], tc.in[2], tc.in[3], tc.in[4])
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestAudioFeatures_JSONRoundTrip(t *testing.T) {
	in := AudioFeatures{Tempo: 123.456, Valence: 0.31, Energy: 0.92, Danceability: 0.5, Instrumentalness: 0.07}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var flat map[string]float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("record is not a flat numeric object: %v", err)
	}
	if len(flat) != 5 {
		t.Fatalf("expected 5 fields, got %d: %s", len(flat), raw)
	}

	var out AudioFeatures
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: want %+v, got %+v", in, out)
	}
}

func TestAudioFeatures_Value(t *testing.T) {
	f := AudioFeatures{Tempo: 90, Valence: 0.2, Energy: 0.3, Danceability: 0.4, Instrumentalness: 0.5}
	if v, ok := f.Value(FeatureEnergy); !ok || v != 0.3 {
		t.Fatalf("energy: got %v, %v", v, ok)
	}
	if _, ok := f.Value("loudness"); ok {
		t.Fatal("expected unknown feature to be reported")
	}
}

func TestParseMood(t *testing.T) {
	if m, err := ParseMood(" Happy "); err != nil || m != MoodHappy {
		t.Fatalf("expected happy, got %q, %v", m, err)
	}
	if _, err := ParseMood("melancholic"); !errors.Is(err, ErrInvalidMood) {
		t.Fatalf("expected ErrInvalidMood, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		0:      "00:00",
		59999:  "00:59",
		180000: "03:00",
		754321: "12:34",
	}
	for ms, want := range tests {
		if got := FormatDuration(ms); got != want {
			t.Errorf("FormatDuration(%d): got %q, want %q", ms, got, want)
		}
	}
}

func TestFailureKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want FailureKind
	}{
		{nil, FailureNone},
		{&AnalysisError{Stage: StageFetch, Err: ErrFetch}, FailureFetch},
		{&AnalysisError{Stage: StageFetch, Err: ErrSizeLimitExceeded}, FailureSizeLimit},
		{&AnalysisError{Stage: StageFetch, Err: ErrUnsupportedFormat}, FailureUnsupportedFormat},
		{&AnalysisError{Stage: StageExtract, Err: ErrExtraction}, FailureExtraction},
	}
	for _, tc := range tests {
		if got := FailureKindOf(tc.err); got != tc.want {
			t.Errorf("FailureKindOf(%v): got %q, want %q", tc.err, got, tc.want)
		}
	}
}
