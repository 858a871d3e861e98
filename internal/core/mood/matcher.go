package mood

import "github.com/ewilliams-labs/emotunes/internal/core/domain"

// Ranges is the acceptance table per mood. It is static configuration and
// must not be mutated.
var Ranges = map[domain.Mood]map[string]domain.Range{
	domain.MoodHappy: {
		domain.FeatureValence: {Min: 0.6, Max: 1.0},
		domain.FeatureEnergy:  {Min: 0.6, Max: 1.0},
	},
	domain.MoodSad: {
		domain.FeatureValence: {Min: 0.0, Max: 0.4},
		domain.FeatureEnergy:  {Min: 0.0, Max: 0.4},
	},
	domain.MoodEnergetic: {
		domain.FeatureValence: {Min: 0.5, Max: 1.0},
		domain.FeatureEnergy:  {Min: 0.8, Max: 1.0},
	},
	domain.MoodCalm: {
		domain.FeatureValence: {Min: 0.3, Max: 0.7},
		domain.FeatureEnergy:  {Min: 0.0, Max: 0.3},
	},
	domain.MoodAngry: {
		domain.FeatureValence: {Min: 0.0, Max: 0.4},
		domain.FeatureEnergy:  {Min: 0.8, Max: 1.0},
	},
	domain.MoodNeutral: {
		domain.FeatureValence: {Min: 0.4, Max: 0.6},
		domain.FeatureEnergy:  {Min: 0.4, Max: 0.6},
	},
}

// Matches reports whether every feature listed for m falls inside its
// inclusive range. Features absent from the table do not block a match.
// Unknown moods never match.
func Matches(f domain.AudioFeatures, m domain.Mood) bool {
	ranges, ok := Ranges[m]
	if !ok {
		return false
	}
	for name, r := range ranges {
		v, known := f.Value(name)
		if !known {
			continue
		}
		if !r.Contains(v) {
			return false
		}
	}
	return true
}

// Infer tests the range tables in enumeration order and returns the first
// mood that matches.
func Infer(f domain.AudioFeatures) (domain.Mood, bool) {
	for _, m := range domain.Moods {
		if Matches(f, m) {
			return m, true
		}
	}
	return "", false
}

// Targets returns the midpoint of each range for m, suitable as
// recommendation targets.
func Targets(m domain.Mood) map[string]float64 {
	ranges := Ranges[m]
	out := make(map[string]float64, len(ranges))
	for name, r := range ranges {
		out[name] = r.Midpoint()
	}
	return out
}
