package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// GetRecommendations asks for tracks seeded by genre and steered toward the
// target valence and energy.
func (c *Client) GetRecommendations(ctx context.Context, q domain.RecommendationQuery) ([]domain.Track, error) {
	u, err := url.Parse(c.baseURL + "/recommendations")
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid recommendations url: %w", err)
	}
	params := u.Query()
	params.Set("seed_genres", strings.Join(q.SeedGenres, ","))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("target_valence", strconv.FormatFloat(q.TargetValence, 'f', -1, 64))
	params.Set("target_energy", strconv.FormatFloat(q.TargetEnergy, 'f', -1, 64))
	u.RawQuery = params.Encode()

	var body recommendationsResponse
	if err := c.getJSON(ctx, u.String(), &body); err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(body.Tracks))
	for _, st := range body.Tracks {
		tracks = append(tracks, mapTrackToDomain(st))
	}
	return tracks, nil
}

// GenreSeeds lists the genres accepted by GetRecommendations.
func (c *Client) GenreSeeds(ctx context.Context) ([]string, error) {
	var body genreSeedsResponse
	if err := c.getJSON(ctx, c.baseURL+"/recommendations/available-genre-seeds", &body); err != nil {
		return nil, err
	}
	return body.Genres, nil
}
