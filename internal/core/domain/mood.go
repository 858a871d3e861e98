package domain

import (
	"fmt"
	"strings"
)

// Mood is a discrete emotional category assigned to a song.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodEnergetic Mood = "energetic"
	MoodCalm      Mood = "calm"
	MoodAngry     Mood = "angry"
	MoodNeutral   Mood = "neutral"
)

// Moods lists every mood in enumeration order. Range-based inference walks
// this slice and stops at the first match, so the order is significant.
var Moods = []Mood{MoodHappy, MoodSad, MoodEnergetic, MoodCalm, MoodAngry, MoodNeutral}

// Valid reports whether m is one of the enumerated moods.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mood) String() string { return string(m) }

// ParseMood converts a case-insensitive name into a Mood.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMood, s)
	}
	return m, nil
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the interval, bounds included.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Midpoint is the centre of the interval.
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}
