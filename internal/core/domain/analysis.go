package domain

import (
	"errors"
	"time"
)

// Analysis is the persisted result of analyzing one audio source.
type Analysis struct {
	ID            string        `json:"id"`
	Source        string        `json:"source"`
	Title         string        `json:"title,omitempty"`
	Artist        string        `json:"artist,omitempty"`
	Features      AudioFeatures `json:"audio_features"`
	PredictedMood *Mood         `json:"predicted_mood,omitempty"`
	AnalyzedAt    time.Time     `json:"analyzed_at"`
}

// AnalysisStatus tells whether features were produced.
type AnalysisStatus string

const (
	AnalysisOK          AnalysisStatus = "ok"
	AnalysisUnavailable AnalysisStatus = "unavailable"
)

// FailureKind names why an analysis is unavailable.
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureFetch             FailureKind = "fetch"
	FailureSizeLimit         FailureKind = "size_limit"
	FailureUnsupportedFormat FailureKind = "unsupported_format"
	FailureExtraction        FailureKind = "extraction"
)

// AnalysisOutcome is returned by the song analysis flow instead of an error.
// Analysis is set only when Status is AnalysisOK.
type AnalysisOutcome struct {
	Status   AnalysisStatus `json:"status"`
	Failure  FailureKind    `json:"failure,omitempty"`
	Analysis *Analysis      `json:"analysis,omitempty"`
	Err      error          `json:"-"`
}

// Succeeded wraps a finished analysis.
func Succeeded(a Analysis) AnalysisOutcome {
	return AnalysisOutcome{Status: AnalysisOK, Analysis: &a}
}

// Unavailable classifies err into a failure kind.
func Unavailable(err error) AnalysisOutcome {
	return AnalysisOutcome{Status: AnalysisUnavailable, Failure: FailureKindOf(err), Err: err}
}

// OK reports whether the outcome carries features.
func (o AnalysisOutcome) OK() bool {
	return o.Status == AnalysisOK && o.Analysis != nil
}

// FailureKindOf maps an error from the acquisition/extraction pipeline to a FailureKind.
func FailureKindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrSizeLimitExceeded):
		return FailureSizeLimit
	case errors.Is(err, ErrUnsupportedFormat):
		return FailureUnsupportedFormat
	case errors.Is(err, ErrFetch):
		return FailureFetch
	default:
		return FailureExtraction
	}
}
