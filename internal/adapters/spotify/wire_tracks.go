package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// GetTrack fetches track metadata by Spotify ID.
func (c *Client) GetTrack(ctx context.Context, id string) (domain.Track, error) {
	var st spotifyTrack
	err := c.getJSON(ctx, fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(id)), &st)
	var se *StatusError
	switch {
	case errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusBadRequest):
		return domain.Track{}, fmt.Errorf("spotify adapter: track %s: %w", id, domain.ErrNotFound)
	case err != nil:
		return domain.Track{}, err
	}
	return mapTrackToDomain(st), nil
}

// GetAudioFeatures fetches Spotify's own audio features for a track. It
// returns (nil, nil) when the API has none or refuses access, which it
// does for apps created after the endpoint was restricted.
func (c *Client) GetAudioFeatures(ctx context.Context, id string) (*domain.AudioFeatures, error) {
	var f spotifyAudioFeatures
	err := c.getJSON(ctx, fmt.Sprintf("%s/audio-features/%s", c.baseURL, url.PathEscape(id)), &f)
	var se *StatusError
	switch {
	case errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusForbidden):
		c.log.Debug("audio features not available", zap.String("track_id", id), zap.Int("status", se.StatusCode))
		return nil, nil
	case err != nil:
		return nil, err
	}
	return mapFeaturesToDomain(f), nil
}
