package domain

import "math"

// AudioFeatures is the numeric descriptor vector computed for one audio source.
// Valence, Energy, Danceability and Instrumentalness are always within [0,1];
// Tempo is in BPM and is never clamped.
type AudioFeatures struct {
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Instrumentalness float64 `json:"instrumentalness"`
}

// Feature names used by mood range tables and catalog queries.
const (
	FeatureTempo            = "tempo"
	FeatureValence          = "valence"
	FeatureEnergy           = "energy"
	FeatureDanceability     = "danceability"
	FeatureInstrumentalness = "instrumentalness"
)

// NewAudioFeatures builds a vector with the bounded fields clamped to [0,1].
func NewAudioFeatures(tempo, valence, energy, danceability, instrumentalness float64) AudioFeatures {
	return AudioFeatures{
		Tempo:            tempo,
		Valence:          Clamp01(valence),
		Energy:           Clamp01(energy),
		Danceability:     Clamp01(danceability),
		Instrumentalness: Clamp01(instrumentalness),
	}
}

// Value returns the named feature. ok is false for unknown names.
func (f AudioFeatures) Value(name string) (float64, bool) {
	switch name {
	case FeatureTempo:
		return f.Tempo, true
	case FeatureValence:
		return f.Valence, true
	case FeatureEnergy:
		return f.Energy, true
	case FeatureDanceability:
		return f.Danceability, true
	case FeatureInstrumentalness:
		return f.Instrumentalness, true
	}
	return 0, false
}

// IsFinite reports whether every field is a usable number.
func (f AudioFeatures) IsFinite() bool {
	for _, v := range []float64{f.Tempo, f.Valence, f.Energy, f.Danceability, f.Instrumentalness} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Clamp01 limits v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
