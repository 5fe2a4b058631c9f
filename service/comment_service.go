package service

import (
	"context"
	"strings"

	"resona/apperr"
	"resona/model"
	"resona/repository"
)

// CommentService manages comments on tracks. Edits and deletions go
// through an ownership-scoped lookup, so a foreign comment is
// indistinguishable from a missing one.
type CommentService struct {
	comments repository.CommentRepository
	tracks   repository.TrackRepository
}

// NewCommentService creates a CommentService.
func NewCommentService(comments repository.CommentRepository, tracks repository.TrackRepository) *CommentService {
	return &CommentService{comments: comments, tracks: tracks}
}

// CommentPage is one page of a track's comments.
type CommentPage struct {
	Items      []*model.Comment `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// Create adds a comment to an existing track.
func (s *CommentService) Create(ctx context.Context, userID, trackID int64, text string) (*model.Comment, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}

	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("Comment text is required", map[string]string{"text": "Required field"})
	}

	comment := &model.Comment{Text: text, UserID: userID, TrackID: trackID}
	id, err := s.comments.CreateComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	return s.comments.GetCommentByIDAndUser(ctx, id, userID)
}

// List returns one page of a track's comments in stable insertion order.
func (s *CommentService) List(ctx context.Context, trackID int64, page, perPage int) (*CommentPage, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}

	page, perPage = clampPage(page, perPage)

	total, err := s.comments.CountByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	items, err := s.comments.ListByTrack(ctx, trackID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Comment{}
	}

	return &CommentPage{
		Items:      items,
		Pagination: paginationFor(page, perPage, total),
	}, nil
}

// Update rewrites the text of the caller's own comment.
func (s *CommentService) Update(ctx context.Context, commentID, userID int64, text string) (*model.Comment, error) {
	comment, err := s.comments.GetCommentByIDAndUser(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperr.NotFound("Comment")
	}

	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("Comment text is required", map[string]string{"text": "Required field"})
	}

	comment.Text = text
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the caller's own comment.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	removed, err := s.comments.DeleteComment(ctx, commentID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Comment")
	}
	return nil
}
