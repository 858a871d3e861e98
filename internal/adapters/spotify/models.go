package spotify

// Wire types for the Spotify Web API. Only the fields the catalog needs are
// decoded.

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	Album        spotifyAlbum        `json:"album"`
	PreviewURL   *string             `json:"preview_url"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	DurationMs   int                 `json:"duration_ms"`
}

type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Instrumentalness float64 `json:"instrumentalness"`
}

type recommendationsResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

type genreSeedsResponse struct {
	Genres []string `json:"genres"`
}
