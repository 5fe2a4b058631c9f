package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"resona/config"
	"resona/core/auth"
	"resona/service"

	"github.com/gorilla/mux"
)

// APIHandler carries the services and auth machinery behind every route.
type APIHandler struct {
	users     *service.UserService
	tracks    *service.TrackService
	likes     *service.LikeService
	comments  *service.CommentService
	playlists *service.PlaylistService
	feed      *service.FeedService

	sessions *auth.SessionManager
	csrf     *auth.CSRFIssuer
	cfg      *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	users *service.UserService,
	tracks *service.TrackService,
	likes *service.LikeService,
	comments *service.CommentService,
	playlists *service.PlaylistService,
	feed *service.FeedService,
	sessions *auth.SessionManager,
	csrf *auth.CSRFIssuer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		users:     users,
		tracks:    tracks,
		likes:     likes,
		comments:  comments,
		playlists: playlists,
		feed:      feed,
		sessions:  sessions,
		csrf:      csrf,
		cfg:       cfg,
	}
}

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware resolves the session cookie to a user id and, on
// mutating methods, additionally requires a valid CSRF token header.
// Requests without a live session get a 401.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			respondUnauthorized(w)
			return
		}

		userID, err := h.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if err == auth.ErrNoSession {
				respondUnauthorized(w)
			} else {
				respondError(w, r, err)
			}
			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !h.requireCSRF(w, r) {
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireCSRF verifies the X-CSRF-Token header. Mutating routes call it
// before doing any work; login and signup call it directly since they
// run outside AuthMiddleware. Returns false after writing the 403.
func (h *APIHandler) requireCSRF(w http.ResponseWriter, r *http.Request) bool {
	token := r.Header.Get(csrfHeaderName)
	if token == "" {
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Error: "CSRF token missing"})
		return false
	}
	if err := h.csrf.Verify(token); err != nil {
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Error: "CSRF token invalid"})
		return false
	}
	return true
}

// GetUserIDFromContext extracts the user ID set by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// pathID parses the named mux path variable as an id.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage. Pagination is lenient: a bad page is page 1, not a 400.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}
