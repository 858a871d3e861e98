package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/worker"
)

type analyzeSongRequest struct {
	SongURL string `json:"song_url"`
}

type analyzeSongResponse struct {
	Status   domain.AnalysisStatus `json:"status"`
	Failure  domain.FailureKind    `json:"failure,omitempty"`
	Error    string                `json:"error,omitempty"`
	Analysis *domain.Analysis      `json:"analysis,omitempty"`
}

type jobAcceptedResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

type listAnalysesResponse struct {
	Analyses []domain.Analysis `json:"analyses"`
	Count    int               `json:"count"`
}

// AnalyzeSong handles POST /analyze_song
func (h *Handler) AnalyzeSong(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req analyzeSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validSongURL(req.SongURL) {
		writeError(w, http.StatusBadRequest, "song_url must be an absolute http(s) URL")
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		h.enqueue(w, req.SongURL)
		return
	}

	outcome := h.analyzer.Analyze(r.Context(), req.SongURL)
	if outcome.OK() {
		writeJSON(w, http.StatusOK, analyzeSongResponse{Status: outcome.Status, Analysis: outcome.Analysis})
		return
	}

	resp := analyzeSongResponse{Status: outcome.Status, Failure: outcome.Failure}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}
	writeJSON(w, statusForFailure(outcome.Failure), resp)
}

func (h *Handler) enqueue(w http.ResponseWriter, songURL string) {
	if h.pool == nil {
		writeError(w, http.StatusServiceUnavailable, "background analysis is not configured")
		return
	}
	id := uuid.NewString()
	if !h.pool.Submit(worker.Job{ID: id, URL: songURL}) {
		writeError(w, http.StatusServiceUnavailable, "analysis queue is full")
		return
	}
	writeJSON(w, http.StatusAccepted, jobAcceptedResponse{JobID: id, Status: "queued", Location: "/analyses/" + id})
}

// GetAnalysis handles GET /analyses/{id}
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.analyses.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListAnalyses handles GET /analyses?limit=
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := h.analyses.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listAnalysesResponse{Analyses: list, Count: len(list)})
}

func validSongURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
