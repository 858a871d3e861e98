package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch indicates the audio source could not be downloaded.
	ErrFetch = errors.New("audio fetch failed")
	// ErrSizeLimitExceeded indicates the audio source is larger than the configured cap.
	ErrSizeLimitExceeded = errors.New("audio size limit exceeded")
	// ErrUnsupportedFormat indicates the content is not an allowed audio container.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrExtraction indicates decoding or feature analysis failed.
	ErrExtraction = errors.New("feature extraction failed")

	ErrNotFound           = errors.New("not found")
	ErrInvalidMood        = errors.New("invalid mood")
	ErrInvalidLimit       = errors.New("invalid limit")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Analysis pipeline stages, used in logs and AnalysisError.
const (
	StageFetch   = "fetch"
	StageDecode  = "decode"
	StageExtract = "extract"
	StageStore   = "store"
)

// AnalysisError records which stage of the song analysis failed for which source.
type AnalysisError struct {
	Stage  string
	Source string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s failed for %q: %v", e.Stage, e.Source, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
