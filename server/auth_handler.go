package server

import (
	"encoding/json"
	"net/http"
	"time"

	"resona/apperr"
	"resona/core/auth"
	"resona/logger"
	"resona/service"
)

const (
	sessionCookieName = "session_token"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"
)

// SignupRequest is the registration request body.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupHandler registers a user and opens their first session. The
// caller must echo the CSRF token handed out by GET /api/auth/.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireCSRF(w, r) {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	user, err := h.users.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.openSession(w, r, user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, user)
}

// LoginHandler checks credentials and opens a session. Like signup it
// requires the CSRF token from GET /api/auth/.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireCSRF(w, r) {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperr.Validation("Invalid request body", nil))
		return
	}

	user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.openSession(w, r, user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info("User logged in",
		logger.Int64("userId", user.ID),
		logger.String("username", user.Username))

	respondData(w, http.StatusOK, user)
}

// LogoutHandler destroys the session and clears both cookies. Logging
// out without a session is not an error.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			logger.Warn("Failed to destroy session", logger.ErrorField(err))
		}
	}

	clearCookie(w, sessionCookieName, true)
	clearCookie(w, csrfCookieName, false)

	respondMessage(w, http.StatusOK, "Logged out")
}

// SessionHandler reports whether the caller has a live session, and who
// they are. It never 401s so the frontend can poll it freely, and it
// always refreshes the CSRF cookie: anonymous callers need a token
// before they can log in or sign up.
func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	h.refreshCSRFCookie(w)

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		respondData(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}

	userID, err := h.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		if err == auth.ErrNoSession {
			respondData(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		} else {
			respondError(w, r, err)
		}
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          user,
	})
}

// UnauthorizedHandler is the landing route for unauthenticated access.
func (h *APIHandler) UnauthorizedHandler(w http.ResponseWriter, r *http.Request) {
	respondUnauthorized(w)
}

// openSession creates the Redis session and sets the session and CSRF
// cookies. The session cookie is HttpOnly; the CSRF cookie must be
// readable by the frontend so it can echo it in the header.
func (h *APIHandler) openSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.refreshCSRFCookie(w)
	return nil
}

func (h *APIHandler) refreshCSRFCookie(w http.ResponseWriter) {
	token, err := h.csrf.Issue()
	if err != nil {
		logger.Error("Failed to issue CSRF token", logger.ErrorField(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL / time.Second),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
}
