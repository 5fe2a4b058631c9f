package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resona/model"

	"github.com/go-sql-driver/mysql"
)

// ErrAlreadyInPlaylist is returned when the composite primary key
// rejects a duplicate membership row.
var ErrAlreadyInPlaylist = errors.New("track already in playlist")

// PlaylistRepository defines the interface for playlist data operations,
// including the playlist_tracks membership rows.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error)
	RenamePlaylist(ctx context.Context, id int64, name string) error

	AddTrack(ctx context.Context, playlistID, trackID int64) error
	RemoveTrack(ctx context.Context, playlistID, trackID int64) (bool, error)
	HasTrack(ctx context.Context, playlistID, trackID int64) (bool, error)
	GetPlaylistTracks(ctx context.Context, playlistID int64) ([]*model.Track, error)

	BeginTx(ctx context.Context) (*sql.Tx, error)
	RollbackTx(tx *sql.Tx)
	CommitTx(tx *sql.Tx) error
	DeletePlaylistTx(tx *sql.Tx, playlistID int64) error
	DeleteMembershipsTx(tx *sql.Tx, playlistID int64) error
	RemoveTrackEverywhereTx(tx *sql.Tx, trackID int64) error
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylist adds a new playlist to the database.
func (r *mysqlPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error) {
	query := `INSERT INTO playlists (user_id, name, created_at) VALUES (?, ?, NOW())`
	res, err := r.db.ExecContext(ctx, query, playlist.UserID, playlist.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreatePlaylist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreatePlaylist: %w", err)
	}
	return id, nil
}

// GetPlaylistByID retrieves a playlist by its ID. Returns (nil, nil) when absent.
func (r *mysqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	query := "SELECT id, user_id, name, created_at FROM playlists WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)

	playlist := &model.Playlist{}
	err := row.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	return playlist, nil
}

// GetPlaylistsByUserID retrieves a user's playlists, newest first.
func (r *mysqlPlaylistRepository) GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	query := "SELECT id, user_id, name, created_at FROM playlists WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist := &model.Playlist{}
		if err := rows.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetPlaylistsByUserID: %w", err)
	}

	return playlists, nil
}

// RenamePlaylist updates the playlist's name.
func (r *mysqlPlaylistRepository) RenamePlaylist(ctx context.Context, id int64, name string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE playlists SET name = ? WHERE id = ?", name, id); err != nil {
		return fmt.Errorf("failed to execute RenamePlaylist for playlist ID %d: %w", id, err)
	}
	return nil
}

// AddTrack inserts a membership row. A concurrent duplicate that
// slipped past HasTrack surfaces as ErrAlreadyInPlaylist.
func (r *mysqlPlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID int64) error {
	query := `INSERT INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, playlistID, trackID); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrAlreadyInPlaylist
		}
		return fmt.Errorf("failed to execute AddTrack: %w", err)
	}
	return nil
}

// RemoveTrack deletes a membership row; reports whether a row was
// actually deleted.
func (r *mysqlPlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to execute RemoveTrack: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for RemoveTrack: %w", err)
	}
	return affected > 0, nil
}

// HasTrack reports whether a track is already a member of the playlist.
func (r *mysqlPlaylistRepository) HasTrack(ctx context.Context, playlistID, trackID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check playlist membership: %w", err)
	}
	return true, nil
}

// GetPlaylistTracks returns the playlist's tracks via the join table.
func (r *mysqlPlaylistRepository) GetPlaylistTracks(ctx context.Context, playlistID int64) ([]*model.Track, error) {
	query := `SELECT t.id, t.user_id, t.title, t.audio_url, t.genre, t.duration, t.artist_name, t.created_at
	FROM tracks t
	INNER JOIN playlist_tracks pt ON pt.track_id = t.id
	WHERE pt.playlist_id = ?
	ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetPlaylistTracks: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetPlaylistTracks: %w", err)
	}

	return tracks, nil
}

// BeginTx starts a new transaction.
func (r *mysqlPlaylistRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// RollbackTx rolls back the transaction. A no-op after commit.
func (r *mysqlPlaylistRepository) RollbackTx(tx *sql.Tx) {
	if tx != nil {
		tx.Rollback()
	}
}

// CommitTx commits the transaction.
func (r *mysqlPlaylistRepository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// DeletePlaylistTx deletes the playlist row inside the transaction.
func (r *mysqlPlaylistRepository) DeletePlaylistTx(tx *sql.Tx, playlistID int64) error {
	if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to execute DeletePlaylistTx: %w", err)
	}
	return nil
}

// DeleteMembershipsTx deletes the playlist's membership rows inside the
// transaction. The tracks themselves are untouched.
func (r *mysqlPlaylistRepository) DeleteMembershipsTx(tx *sql.Tx, playlistID int64) error {
	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to execute DeleteMembershipsTx: %w", err)
	}
	return nil
}

// RemoveTrackEverywhereTx removes a track from every playlist inside the
// transaction. Used when the track itself is deleted.
func (r *mysqlPlaylistRepository) RemoveTrackEverywhereTx(tx *sql.Tx, trackID int64) error {
	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("failed to execute RemoveTrackEverywhereTx: %w", err)
	}
	return nil
}
