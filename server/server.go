package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resona/config"
	"resona/core/auth"
	"resona/core/upload"
	"resona/db"
	"resona/logger"
	"resona/repository"
	"resona/service"
	"resona/storage"

	"github.com/gorilla/mux"
)

// Start wires the application together and runs the HTTP server until
// an interrupt, then shuts down gracefully.
func Start() error {
	cfg := config.Load()

	if err := db.ConnectDB(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.CloseDB()

	if err := db.ConnectRedis(cfg); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer db.CloseRedis()

	store, err := buildBlobStore(cfg)
	if err != nil {
		return err
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	likeRepo := repository.NewMySQLLikeRepository(db.DB)
	commentRepo := repository.NewMySQLCommentRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)

	coordinator := upload.NewCoordinator(store, cfg.MaxUploadBytes)
	sessions := auth.NewSessionManager(db.RedisClient, cfg.SessionTTL)
	csrf := auth.NewCSRFIssuer(cfg.SecretKey, cfg.SessionTTL)

	apiHandler := NewAPIHandler(
		service.NewUserService(userRepo),
		service.NewTrackService(trackRepo, commentRepo, likeRepo, playlistRepo, coordinator),
		service.NewLikeService(likeRepo, trackRepo),
		service.NewCommentService(commentRepo, trackRepo),
		service.NewPlaylistService(playlistRepo, trackRepo),
		service.NewFeedService(trackRepo),
		sessions,
		csrf,
		cfg,
	)

	router := NewRouter(apiHandler, cfg)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// NewRouter builds the full route table.
func NewRouter(h *APIHandler, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/", h.SessionHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/signup", h.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.LogoutHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/unauthorized", h.UnauthorizedHandler).Methods(http.MethodGet)

	// Feed
	router.HandleFunc("/api/ultimate_playlist", h.UltimatePlaylistHandler).Methods(http.MethodGet)

	// Tracks. The /user route is registered before the {id} route so it
	// is never captured as an id.
	router.HandleFunc("/api/tracks/user", h.AuthMiddleware(h.GetUserTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", h.AuthMiddleware(h.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.UpdateTrackHandler)).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.DeleteTrackHandler)).Methods(http.MethodDelete)

	// Likes
	router.HandleFunc("/api/tracks/{id}/like", h.AuthMiddleware(h.LikeTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/like", h.AuthMiddleware(h.UnlikeTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/likes", h.ListTrackLikesHandler).Methods(http.MethodGet)

	// Comments
	router.HandleFunc("/api/tracks/{id}/comments", h.ListCommentsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}/comments", h.AuthMiddleware(h.CreateCommentHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/comments/{id}", h.AuthMiddleware(h.UpdateCommentHandler)).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc("/api/comments/{id}", h.AuthMiddleware(h.DeleteCommentHandler)).Methods(http.MethodDelete)

	// Playlists
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.RenamePlaylistHandler)).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/tracks", h.AuthMiddleware(h.AddPlaylistTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks/{track_id}", h.AuthMiddleware(h.RemovePlaylistTrackHandler)).Methods(http.MethodDelete)

	// Blob serving, one URL space per backend.
	switch cfg.StorageBackend {
	case "minio":
		router.PathPrefix("/static/").HandlerFunc(minioProxyHandler(cfg.MinioBucket))
	default:
		fileServer := http.FileServer(http.Dir(cfg.UploadDir))
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", fileServer))
	}

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// buildBlobStore picks the audio blob backend from config.
func buildBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		if err := storage.InitMinio(cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		return storage.NewMinioStore(storage.GetMinioClient(), cfg.MinioBucket), nil
	case "local", "":
		store, err := storage.NewLocalStore(cfg.AudioUploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
