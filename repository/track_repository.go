package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resona/model"
)

// FeedFilter describes the ultimate-playlist query: optional genre
// substring filter, sort order and a pagination window.
type FeedFilter struct {
	Genre  string // case-insensitive substring match, empty = no filter
	SortBy string // "likes" or "created_at" (default)
	Limit  int
	Offset int
}

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(ctx context.Context, track *model.Track) (int64, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error)
	UpdateTrack(ctx context.Context, track *model.Track) error
	ListFeed(ctx context.Context, filter FeedFilter) ([]*model.TrackWithCount, error)
	CountFeed(ctx context.Context, genre string) (int64, error)

	BeginTx(ctx context.Context) (*sql.Tx, error)
	RollbackTx(tx *sql.Tx)
	CommitTx(tx *sql.Tx) error
	DeleteTrackTx(tx *sql.Tx, trackID int64) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

const trackColumns = "id, user_id, title, audio_url, genre, duration, artist_name, created_at"

func scanTrack(scan func(dest ...interface{}) error) (*model.Track, error) {
	track := &model.Track{}
	err := scan(&track.ID, &track.UserID, &track.Title, &track.AudioURL, &track.Genre, &track.Duration, &track.ArtistName, &track.CreatedAt)
	if err != nil {
		return nil, err
	}
	return track, nil
}

// CreateTrack adds a new track to the database. On success the track's
// CreatedAt is populated, so callers can return it without a re-read.
func (r *mysqlTrackRepository) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	track.CreatedAt = time.Now()
	query := `INSERT INTO tracks (user_id, title, audio_url, genre, duration, artist_name, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, track.UserID, track.Title, track.AudioURL, track.Genre, track.Duration, track.ArtistName, track.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) when absent.
func (r *mysqlTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)

	track, err := scanTrack(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetTracksByUserID retrieves a user's tracks, newest first.
func (r *mysqlTrackRepository) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetTracksByUserID: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetTracksByUserID: %w", err)
	}

	return tracks, nil
}

// UpdateTrack persists the track's mutable fields in a single write.
func (r *mysqlTrackRepository) UpdateTrack(ctx context.Context, track *model.Track) error {
	query := `UPDATE tracks SET title = ?, audio_url = ?, genre = ?, duration = ?, artist_name = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, track.Title, track.AudioURL, track.Genre, track.Duration, track.ArtistName, track.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrack for track ID %d: %w", track.ID, err)
	}
	return nil
}

// ListFeed returns one page of the ultimate playlist. Like counts come
// from an outer join so tracks with zero likes still appear, ranked last
// when sorting by likes.
func (r *mysqlTrackRepository) ListFeed(ctx context.Context, filter FeedFilter) ([]*model.TrackWithCount, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT t.id, t.user_id, t.title, t.audio_url, t.genre, t.duration, t.artist_name, t.created_at, COUNT(l.user_id)
	FROM tracks t LEFT JOIN likes l ON l.track_id = t.id`)

	args := make([]interface{}, 0, 3)
	if filter.Genre != "" {
		sb.WriteString(" WHERE LOWER(t.genre) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Genre)+"%")
	}
	sb.WriteString(" GROUP BY t.id")

	if filter.SortBy == "likes" {
		sb.WriteString(" ORDER BY COUNT(l.user_id) DESC, t.created_at DESC")
	} else {
		sb.WriteString(" ORDER BY t.created_at DESC")
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.TrackWithCount, 0)
	for rows.Next() {
		tc := &model.TrackWithCount{}
		err := rows.Scan(&tc.ID, &tc.UserID, &tc.Title, &tc.AudioURL, &tc.Genre, &tc.Duration, &tc.ArtistName, &tc.CreatedAt, &tc.LikeCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		tracks = append(tracks, tc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListFeed: %w", err)
	}

	return tracks, nil
}

// CountFeed returns the total number of tracks matching the genre filter.
func (r *mysqlTrackRepository) CountFeed(ctx context.Context, genre string) (int64, error) {
	query := "SELECT COUNT(*) FROM tracks"
	args := make([]interface{}, 0, 1)
	if genre != "" {
		query += " WHERE LOWER(genre) LIKE ?"
		args = append(args, "%"+strings.ToLower(genre)+"%")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count feed tracks: %w", err)
	}
	return total, nil
}

// BeginTx starts a new transaction.
func (r *mysqlTrackRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// RollbackTx rolls back the transaction. A no-op after commit.
func (r *mysqlTrackRepository) RollbackTx(tx *sql.Tx) {
	if tx != nil {
		tx.Rollback()
	}
}

// CommitTx commits the transaction.
func (r *mysqlTrackRepository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// DeleteTrackTx deletes the track row inside the transaction. Dependent
// comment, like and membership rows are deleted by their own repositories
// before this runs.
func (r *mysqlTrackRepository) DeleteTrackTx(tx *sql.Tx, trackID int64) error {
	if _, err := tx.Exec("DELETE FROM tracks WHERE id = ?", trackID); err != nil {
		return fmt.Errorf("failed to execute DeleteTrackTx: %w", err)
	}
	return nil
}
