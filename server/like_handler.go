package server

import (
	"net/http"

	"resona/apperr"
)

// LikeTrackHandler records the caller's like and returns the new count.
func (h *APIHandler) LikeTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Track"))
		return
	}

	count, err := h.likes.Like(r.Context(), userID, trackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]interface{}{"like_count": count})
}

// ListTrackLikesHandler returns who liked the track. Public, like the
// track itself.
func (h *APIHandler) ListTrackLikesHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Track"))
		return
	}

	likes, err := h.likes.List(r.Context(), trackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, likes)
}

// UnlikeTrackHandler removes the caller's like and returns the new count.
func (h *APIHandler) UnlikeTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Track"))
		return
	}

	count, err := h.likes.Unlike(r.Context(), userID, trackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"like_count": count})
}
