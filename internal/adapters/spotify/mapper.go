package spotify

import "github.com/ewilliams-labs/emotunes/internal/core/domain"

// mapTrackToDomain converts a raw Spotify track. Artist is the primary
// (first listed) artist. Features are fetched separately and left nil here.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	var artist string
	if len(st.Artists) > 0 {
		artist = st.Artists[0].Name
	}

	t := domain.Track{
		ID:          st.ID,
		Name:        st.Name,
		Artist:      artist,
		Album:       st.Album.Name,
		ExternalURL: st.ExternalURLs.Spotify,
		DurationMs:  st.DurationMs,
	}
	if st.PreviewURL != nil {
		t.PreviewURL = *st.PreviewURL
	}
	return t
}

// mapFeaturesToDomain returns nil for an all-zero payload, which the API
// sends for tracks it could not analyze.
func mapFeaturesToDomain(f spotifyAudioFeatures) *domain.AudioFeatures {
	if f.Tempo == 0 && f.Valence == 0 && f.Energy == 0 && f.Danceability == 0 && f.Instrumentalness == 0 {
		return nil
	}
	out := domain.NewAudioFeatures(f.Tempo, f.Valence, f.Energy, f.Danceability, f.Instrumentalness)
	return &out
}
