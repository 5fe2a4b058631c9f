package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"resona/apperr"
	"resona/core/upload"
	"resona/logger"
	"resona/service"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing;
// larger file parts spill to disk.
const maxMultipartMemory = 32 << 20

// CreateTrackHandler handles new track uploads.
// Expected multipart form fields:
// - audio: the audio file (mp3, wav, ogg, flac, m4a)
// - title: track title
// - genre, artist_name, duration: optional metadata
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(w, r, apperr.Validation("Title and audio file are required.", nil))
		return
	}

	in := service.CreateTrackInput{
		Title:      r.FormValue("title"),
		Genre:      r.FormValue("genre"),
		ArtistName: r.FormValue("artist_name"),
	}
	if raw := r.FormValue("duration"); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			in.Duration = d
		}
	}

	file, header, err := r.FormFile("audio")
	if err == nil {
		defer file.Close()
		in.Audio = upload.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	}

	track, err := h.tracks.Create(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info("Track uploaded",
		logger.Int64("trackId", track.ID),
		logger.Int64("userId", userID),
		logger.String("title", track.Title))

	respondData(w, http.StatusCreated, track)
}

// GetTrackHandler returns one track with its like count.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Track"))
		return
	}

	track, err := h.tracks.Get(r.Context(), trackID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, track)
}

// GetUserTracksHandler returns the caller's own tracks.
func (h *APIHandler) GetUserTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	tracks, err := h.tracks.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tracks)
}

// UpdateTrackHandler applies a partial update. A JSON body patches
// metadata fields only; a multipart body may additionally carry a
// replacement audio file.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
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

	patch, err := parseTrackPatch(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	track, err := h.tracks.Update(r.Context(), trackID, userID, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, track)
}

// DeleteTrackHandler deletes a track with its comments, likes and
// playlist memberships.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.tracks.Delete(r.Context(), trackID, userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Track deleted")
}

// parseTrackPatch reads the update request once, whichever encoding the
// client chose, and resolves it into a TrackPatch.
func parseTrackPatch(r *http.Request) (service.TrackPatch, error) {
	var patch service.TrackPatch

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return patch, apperr.Validation("Invalid request body", nil)
		}

		form := r.MultipartForm.Value
		if vals, ok := form["title"]; ok && len(vals) > 0 {
			patch.Title = &vals[0]
		}
		if vals, ok := form["genre"]; ok && len(vals) > 0 {
			patch.Genre = &vals[0]
		}
		if vals, ok := form["artist_name"]; ok && len(vals) > 0 {
			patch.ArtistName = &vals[0]
		}
		if vals, ok := form["duration"]; ok && len(vals) > 0 {
			d, err := strconv.Atoi(vals[0])
			if err != nil {
				return patch, apperr.Validation("Invalid duration", map[string]string{"duration": "Must be an integer"})
			}
			patch.Duration = &d
		}

		if file, header, err := r.FormFile("audio"); err == nil {
			// The file handle stays open until the handler returns; the
			// multipart form is cleaned up by the server afterwards.
			patch.Audio = &upload.Upload{
				Filename: header.Filename,
				Size:     header.Size,
				Content:  file,
			}
		}
		return patch, nil
	}

	var body struct {
		Title      *string `json:"title"`
		Genre      *string `json:"genre"`
		ArtistName *string `json:"artist_name"`
		Duration   *int    `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return patch, apperr.Validation("Invalid request body", nil)
	}
	patch.Title = body.Title
	patch.Genre = body.Genre
	patch.ArtistName = body.ArtistName
	patch.Duration = body.Duration
	return patch, nil
}
