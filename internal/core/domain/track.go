package domain

import "fmt"

// Track represents a catalog track in the domain layer.
type Track struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Artist        string         `json:"artist"`
	Album         string         `json:"album"`
	PreviewURL    string         `json:"preview_url,omitempty"` // optional 30s clip
	ExternalURL   string         `json:"external_url"`
	DurationMs    int            `json:"duration_ms"`
	Features      *AudioFeatures `json:"audio_features,omitempty"`
	PredictedMood *Mood          `json:"predicted_mood,omitempty"`
}

// Duration renders the track length as MM:SS.
func (t Track) Duration() string {
	return FormatDuration(t.DurationMs)
}

// FormatDuration formats a millisecond duration as zero-padded MM:SS.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
