package server

import (
	"net/http"

	"resona/service"
)

// UltimatePlaylistHandler serves the site-wide feed: every track, with
// optional genre filter and sort by recency or like count. Public, no
// session required.
func (h *APIHandler) UltimatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	q := service.FeedQuery{
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 0),
		SortBy:  r.URL.Query().Get("sort_by"),
		Genre:   r.URL.Query().Get("genre"),
	}

	feed, err := h.feed.List(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, feed)
}
