package repository

import (
	"context"
	"database/sql"
	"fmt"

	"resona/model"
)

// CommentRepository defines the interface for comment data operations.
// Mutations are filtered by (id, user_id) so a non-owner cannot tell a
// foreign comment from a missing one.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) (int64, error)
	GetCommentByIDAndUser(ctx context.Context, id, userID int64) (*model.Comment, error)
	ListByTrack(ctx context.Context, trackID int64, limit, offset int) ([]*model.Comment, error)
	CountByTrack(ctx context.Context, trackID int64) (int64, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id, userID int64) (bool, error)
	DeleteByTrackTx(tx *sql.Tx, trackID int64) error
}

// mysqlCommentRepository implements CommentRepository for MySQL.
type mysqlCommentRepository struct {
	db *sql.DB
}

// NewMySQLCommentRepository creates a new mysqlCommentRepository.
func NewMySQLCommentRepository(db *sql.DB) CommentRepository {
	return &mysqlCommentRepository{db: db}
}

const commentColumns = "id, text, user_id, track_id, created_at"

// CreateComment adds a new comment to the database.
func (r *mysqlCommentRepository) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	query := `INSERT INTO comments (text, user_id, track_id, created_at) VALUES (?, ?, ?, NOW())`
	res, err := r.db.ExecContext(ctx, query, comment.Text, comment.UserID, comment.TrackID)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateComment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateComment: %w", err)
	}
	return id, nil
}

// GetCommentByIDAndUser retrieves a comment only when it belongs to the
// given user. Returns (nil, nil) when absent or foreign.
func (r *mysqlCommentRepository) GetCommentByIDAndUser(ctx context.Context, id, userID int64) (*model.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE id = ? AND user_id = ?"
	row := r.db.QueryRowContext(ctx, query, id, userID)

	comment := &model.Comment{}
	err := row.Scan(&comment.ID, &comment.Text, &comment.UserID, &comment.TrackID, &comment.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan comment by ID %d: %w", id, err)
	}
	return comment, nil
}

// ListByTrack returns one page of a track's comments in insertion order.
func (r *mysqlCommentRepository) ListByTrack(ctx context.Context, trackID int64, limit, offset int) ([]*model.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE track_id = ? ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, trackID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for track %d: %w", trackID, err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		comment := &model.Comment{}
		if err := rows.Scan(&comment.ID, &comment.Text, &comment.UserID, &comment.TrackID, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListByTrack: %w", err)
	}

	return comments, nil
}

// CountByTrack counts a track's comments.
func (r *mysqlCommentRepository) CountByTrack(ctx context.Context, trackID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE track_id = ?", trackID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments for track %d: %w", trackID, err)
	}
	return count, nil
}

// UpdateComment persists the comment's text.
func (r *mysqlCommentRepository) UpdateComment(ctx context.Context, comment *model.Comment) error {
	query := `UPDATE comments SET text = ? WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, query, comment.Text, comment.ID, comment.UserID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateComment for comment ID %d: %w", comment.ID, err)
	}
	return nil
}

// DeleteComment removes a comment owned by userID; reports whether a row
// was actually deleted.
func (r *mysqlCommentRepository) DeleteComment(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to execute DeleteComment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for DeleteComment: %w", err)
	}
	return affected > 0, nil
}

// DeleteByTrackTx removes all comments of a track inside the transaction.
func (r *mysqlCommentRepository) DeleteByTrackTx(tx *sql.Tx, trackID int64) error {
	if _, err := tx.Exec("DELETE FROM comments WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("failed to execute DeleteByTrackTx: %w", err)
	}
	return nil
}
