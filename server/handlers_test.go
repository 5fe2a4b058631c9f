package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"present", "page=3", 3},
		{"absent", "", 1},
		{"garbage", "page=abc", 1},
		{"negative passes through", "page=-2", -2}, // clamping is the service's job
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ultimate_playlist?"+tt.query, nil)
			if got := queryInt(req, "page", 1); got != tt.want {
				t.Errorf("queryInt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	parse := func(t *testing.T, url string) (int64, error) {
		t.Helper()
		var id int64
		var err error
		router := mux.NewRouter()
		router.HandleFunc("/api/tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err = pathID(r, "id")
		})
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, url, nil))
		return id, err
	}

	t.Run("valid id", func(t *testing.T) {
		id, err := parse(t, "/api/tracks/42")
		if err != nil || id != 42 {
			t.Errorf("pathID = (%d, %v), want (42, nil)", id, err)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		if _, err := parse(t, "/api/tracks/abc"); err == nil {
			t.Error("pathID accepted a non-numeric id")
		}
	})

	t.Run("zero id", func(t *testing.T) {
		if _, err := parse(t, "/api/tracks/0"); err == nil {
			t.Error("pathID accepted id 0")
		}
	})
}

func TestParseTrackPatch(t *testing.T) {
	t.Run("json patch keeps absent fields nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/tracks/1",
			strings.NewReader(`{"title": "New Title"}`))
		req.Header.Set("Content-Type", "application/json")

		patch, err := parseTrackPatch(req)
		if err != nil {
			t.Fatalf("parseTrackPatch = %v", err)
		}
		if patch.Title == nil || *patch.Title != "New Title" {
			t.Errorf("title = %v, want New Title", patch.Title)
		}
		if patch.Genre != nil || patch.ArtistName != nil || patch.Duration != nil || patch.Audio != nil {
			t.Error("absent fields are not nil")
		}
	})

	t.Run("json patch distinguishes empty from absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/tracks/1",
			strings.NewReader(`{"genre": ""}`))
		req.Header.Set("Content-Type", "application/json")

		patch, err := parseTrackPatch(req)
		if err != nil {
			t.Fatalf("parseTrackPatch = %v", err)
		}
		if patch.Genre == nil || *patch.Genre != "" {
			t.Errorf("genre = %v, want explicit empty string", patch.Genre)
		}
	})

	t.Run("invalid json is a validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/tracks/1", strings.NewReader(`{broken`))
		req.Header.Set("Content-Type", "application/json")

		if _, err := parseTrackPatch(req); err == nil {
			t.Error("parseTrackPatch accepted broken json")
		}
	})

	t.Run("multipart patch with fields and audio", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		form.WriteField("title", "Multipart Title")
		form.WriteField("duration", "180")
		part, err := form.CreateFormFile("audio", "replacement.mp3")
		if err != nil {
			t.Fatalf("CreateFormFile = %v", err)
		}
		part.Write([]byte("new-audio"))
		form.Close()

		req := httptest.NewRequest(http.MethodPut, "/api/tracks/1", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())

		patch, err := parseTrackPatch(req)
		if err != nil {
			t.Fatalf("parseTrackPatch = %v", err)
		}
		if patch.Title == nil || *patch.Title != "Multipart Title" {
			t.Errorf("title = %v", patch.Title)
		}
		if patch.Duration == nil || *patch.Duration != 180 {
			t.Errorf("duration = %v", patch.Duration)
		}
		if patch.Audio == nil || patch.Audio.Filename != "replacement.mp3" {
			t.Errorf("audio = %+v", patch.Audio)
		}
		if patch.Genre != nil {
			t.Error("genre set despite absence from the form")
		}
	})

	t.Run("multipart patch without audio", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		form.WriteField("genre", "techno")
		form.Close()

		req := httptest.NewRequest(http.MethodPut, "/api/tracks/1", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())

		patch, err := parseTrackPatch(req)
		if err != nil {
			t.Fatalf("parseTrackPatch = %v", err)
		}
		if patch.Audio != nil {
			t.Error("audio set despite absence from the form")
		}
		if patch.Genre == nil || *patch.Genre != "techno" {
			t.Errorf("genre = %v", patch.Genre)
		}
	})

	t.Run("bad duration in multipart is a validation error", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		form.WriteField("duration", "three minutes")
		form.Close()

		req := httptest.NewRequest(http.MethodPut, "/api/tracks/1", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())

		if _, err := parseTrackPatch(req); err == nil {
			t.Error("parseTrackPatch accepted a non-numeric duration")
		}
	})
}
