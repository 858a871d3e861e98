// Package mood maps audio feature vectors to mood labels.
//
// Two independent algorithms live here. Classify is the primary ordered rule
// set. Infer walks the per-mood range tables used for catalog filtering and
// returns the first mood whose ranges accept the vector. They can disagree on
// the same input.
package mood

import (
	"math"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// Classify returns the mood for f using ordered, first-match-wins rules over
// valence and energy. ok is false when either of them is non-finite; the
// other features are not consulted.
//
// The angry rule can never fire: any vector with energy above 0.8 is labelled
// energetic first. It is kept so outputs for that region stay unchanged until
// the ordering is revisited.
func Classify(f domain.AudioFeatures) (m domain.Mood, ok bool) {
	valence, energy := f.Valence, f.Energy
	if !finite(valence) || !finite(energy) {
		return "", false
	}
	switch {
	case valence > 0.6 && energy > 0.6:
		return domain.MoodHappy, true
	case valence < 0.4 && energy < 0.4:
		return domain.MoodSad, true
	case energy > 0.8:
		return domain.MoodEnergetic, true
	case energy < 0.3:
		return domain.MoodCalm, true
	case valence < 0.4 && energy > 0.8:
		return domain.MoodAngry, true
	default:
		return domain.MoodNeutral, true
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
