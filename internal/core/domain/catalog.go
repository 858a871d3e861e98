package domain

// MaxSeedGenres is the most seed genres the catalog accepts per query.
const MaxSeedGenres = 5

// RecommendationQuery asks the catalog for candidate tracks near target
// feature values.
type RecommendationQuery struct {
	SeedGenres    []string
	Limit         int
	TargetValence float64
	TargetEnergy  float64
}
