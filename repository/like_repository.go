package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resona/model"

	"github.com/go-sql-driver/mysql"
)

// ErrAlreadyLiked is returned when the composite primary key rejects a
// duplicate like row.
var ErrAlreadyLiked = errors.New("track already liked")

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	CreateLike(ctx context.Context, userID, trackID int64) error
	DeleteLike(ctx context.Context, userID, trackID int64) (bool, error)
	LikeExists(ctx context.Context, userID, trackID int64) (bool, error)
	CountByTrack(ctx context.Context, trackID int64) (int64, error)
	ListByTrack(ctx context.Context, trackID int64) ([]*model.Like, error)
	DeleteByTrackTx(tx *sql.Tx, trackID int64) error
}

// mysqlLikeRepository implements LikeRepository for MySQL.
type mysqlLikeRepository struct {
	db *sql.DB
}

// NewMySQLLikeRepository creates a new mysqlLikeRepository.
func NewMySQLLikeRepository(db *sql.DB) LikeRepository {
	return &mysqlLikeRepository{db: db}
}

// CreateLike inserts a like row. The composite primary key rejects
// concurrent duplicates that slipped past the existence check; those
// surface as ErrAlreadyLiked.
func (r *mysqlLikeRepository) CreateLike(ctx context.Context, userID, trackID int64) error {
	query := `INSERT INTO likes (user_id, track_id, created_at) VALUES (?, ?, NOW())`
	if _, err := r.db.ExecContext(ctx, query, userID, trackID); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("failed to execute CreateLike: %w", err)
	}
	return nil
}

// DeleteLike removes the like for (userID, trackID); reports whether a
// row was actually deleted.
func (r *mysqlLikeRepository) DeleteLike(ctx context.Context, userID, trackID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM likes WHERE user_id = ? AND track_id = ?", userID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to execute DeleteLike: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for DeleteLike: %w", err)
	}
	return affected > 0, nil
}

// LikeExists reports whether the (userID, trackID) pair is already liked.
func (r *mysqlLikeRepository) LikeExists(ctx context.Context, userID, trackID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM likes WHERE user_id = ? AND track_id = ?", userID, trackID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return true, nil
}

// CountByTrack counts like rows for a track. This is the only source of
// a track's like count.
func (r *mysqlLikeRepository) CountByTrack(ctx context.Context, trackID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM likes WHERE track_id = ?", trackID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes for track %d: %w", trackID, err)
	}
	return count, nil
}

// ListByTrack returns the like rows for a track, oldest first.
func (r *mysqlLikeRepository) ListByTrack(ctx context.Context, trackID int64) ([]*model.Like, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, track_id, created_at FROM likes WHERE track_id = ? ORDER BY created_at", trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes for track %d: %w", trackID, err)
	}
	defer rows.Close()

	likes := make([]*model.Like, 0)
	for rows.Next() {
		like := &model.Like{}
		if err := rows.Scan(&like.UserID, &like.TrackID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		likes = append(likes, like)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListByTrack: %w", err)
	}

	return likes, nil
}

// DeleteByTrackTx removes all likes of a track inside the transaction.
func (r *mysqlLikeRepository) DeleteByTrackTx(tx *sql.Tx, trackID int64) error {
	if _, err := tx.Exec("DELETE FROM likes WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("failed to execute DeleteByTrackTx: %w", err)
	}
	return nil
}
