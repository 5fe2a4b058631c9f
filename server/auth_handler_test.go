package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resona/config"
	"resona/core/auth"
)

func newAuthFixture() *APIHandler {
	return &APIHandler{
		csrf: auth.NewCSRFIssuer("test-secret", time.Hour),
		cfg:  &config.Config{SessionTTL: time.Hour},
	}
}

func TestAuthRoutesRequireCSRF(t *testing.T) {
	h := newAuthFixture()

	handlers := map[string]http.HandlerFunc{
		"signup": h.SignupHandler,
		"login":  h.LoginHandler,
	}

	for name, handler := range handlers {
		t.Run(name+" without token is rejected", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/"+name, strings.NewReader(`{}`))
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}
			if !strings.Contains(rec.Body.String(), "CSRF token missing") {
				t.Errorf("body = %s, want CSRF token missing", rec.Body.String())
			}
		})

		t.Run(name+" with forged token is rejected", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/"+name, strings.NewReader(`{}`))
			req.Header.Set(csrfHeaderName, "not-a-token")
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}
			if !strings.Contains(rec.Body.String(), "CSRF token invalid") {
				t.Errorf("body = %s, want CSRF token invalid", rec.Body.String())
			}
		})
	}
}

func TestSessionHandlerIssuesCSRFToAnonymous(t *testing.T) {
	h := newAuthFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/", nil)
	rec := httptest.NewRecorder()
	h.SessionHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Errorf("body = %s, want authenticated false", rec.Body.String())
	}

	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == csrfCookieName {
			token = cookie.Value
		}
	}
	if token == "" {
		t.Fatal("anonymous caller got no csrf_token cookie")
	}
	if err := h.csrf.Verify(token); err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	// The issued token clears the login CSRF gate; the garbage body then
	// fails validation, proving the request got past the CSRF check.
	login := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("not json"))
	login.Header.Set(csrfHeaderName, token)
	loginRec := httptest.NewRecorder()
	h.LoginHandler(loginRec, login)

	if loginRec.Code == http.StatusForbidden {
		t.Errorf("valid token rejected: %d %s", loginRec.Code, loginRec.Body.String())
	}
	if loginRec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unparseable body", loginRec.Code)
	}
}
