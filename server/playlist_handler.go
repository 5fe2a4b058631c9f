package server

import (
	"encoding/json"
	"net/http"

	"resona/apperr"
)

// PlaylistRequest is the body for creating or renaming a playlist. The
// optional track_id seeds a new playlist with one track.
type PlaylistRequest struct {
	Name    string `json:"name"`
	TrackID int64  `json:"track_id,omitempty"`
}

// AddPlaylistTrackRequest is the body for adding a track to a playlist.
type AddPlaylistTrackRequest struct {
	TrackID int64 `json:"track_id"`
}

// CreatePlaylistHandler makes a new playlist for the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	playlist, err := h.playlists.Create(r.Context(), userID, req.Name, req.TrackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, playlist)
}

// ListPlaylistsHandler returns all of the caller's playlists.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	playlists, err := h.playlists.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns one of the caller's playlists with tracks.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Playlist"))
		return
	}

	playlist, err := h.playlists.Get(r.Context(), playlistID, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, playlist)
}

// RenamePlaylistHandler renames one of the caller's playlists.
func (h *APIHandler) RenamePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Playlist"))
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	playlist, err := h.playlists.Rename(r.Context(), playlistID, userID, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler deletes one of the caller's playlists. Member
// tracks are untouched.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Playlist"))
		return
	}

	if err := h.playlists.Delete(r.Context(), playlistID, userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Playlist deleted")
}

// AddPlaylistTrackHandler puts a track into the caller's playlist.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Playlist"))
		return
	}

	var req AddPlaylistTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	playlist, err := h.playlists.AddTrack(r.Context(), playlistID, userID, req.TrackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, playlist)
}

// RemovePlaylistTrackHandler takes a track out of the caller's playlist.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Playlist"))
		return
	}

	trackID, err := pathID(r, "track_id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Track"))
		return
	}

	playlist, err := h.playlists.RemoveTrack(r.Context(), playlistID, userID, trackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, playlist)
}
