package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

const errCodeCatalogDisabled = "CATALOG_DISABLED"

type trackResponse struct {
	domain.Track
	Duration string `json:"duration"`
}

type recommendationsResponse struct {
	Mood   domain.Mood     `json:"mood"`
	Tracks []trackResponse `json:"tracks"`
	Count  int             `json:"count"`
}

type genresResponse struct {
	Genres []string `json:"genres"`
}

func toTrackResponse(t domain.Track) trackResponse {
	return trackResponse{Track: t, Duration: t.Duration()}
}

func (h *Handler) requireCatalog(w http.ResponseWriter) bool {
	if h.catalog == nil {
		writeErrorWithCode(w, http.StatusServiceUnavailable, "music catalog is not configured", errCodeCatalogDisabled)
		return false
	}
	return true
}

// GetRecommendations handles GET /recommendations?mood=&limit=&seed_genres=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}
	q := r.URL.Query()

	m, err := domain.ParseMood(q.Get("mood"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		if limit == 0 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
	}

	tracks, err := h.catalog.GetRecommendations(r.Context(), m, limit, splitGenres(q.Get("seed_genres")))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	resp := recommendationsResponse{Mood: m, Tracks: make([]trackResponse, 0, len(tracks)), Count: len(tracks)}
	for _, t := range tracks {
		resp.Tracks = append(resp.Tracks, toTrackResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTrackInfo handles GET /tracks/{id}
func (h *Handler) GetTrackInfo(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}
	track, err := h.catalog.GetTrackInfo(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toTrackResponse(track))
}

// GetGenres handles GET /genres
func (h *Handler) GetGenres(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}
	genres, err := h.catalog.GenreSeeds(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, genresResponse{Genres: genres})
}

func splitGenres(raw string) []string {
	var out []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
