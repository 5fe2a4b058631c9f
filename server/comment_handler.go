package server

import (
	"encoding/json"
	"net/http"

	"resona/apperr"
)

// CommentRequest is the body for creating or editing a comment.
type CommentRequest struct {
	Text string `json:"text"`
}

// CreateCommentHandler adds a comment to a track.
func (h *APIHandler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
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

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, trackID, req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, comment)
}

// ListCommentsHandler returns one page of a track's comments.
func (h *APIHandler) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Track"))
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 0)

	comments, err := h.comments.List(r.Context(), trackID, page, perPage)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, comments)
}

// UpdateCommentHandler edits the caller's own comment.
func (h *APIHandler) UpdateCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	commentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Comment"))
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	comment, err := h.comments.Update(r.Context(), commentID, userID, req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, comment)
}

// DeleteCommentHandler deletes the caller's own comment.
func (h *APIHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondUnauthorized(w)
		return
	}

	commentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, apperr.NotFound("Comment"))
		return
	}

	if err := h.comments.Delete(r.Context(), commentID, userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Comment deleted")
}
