package service

import (
	"context"
	"errors"

	"resona/apperr"
	"resona/model"
	"resona/repository"
)

// LikeService manages per-user track likes. Counts are always computed
// from the likes table, never cached on the track row.
type LikeService struct {
	likes  repository.LikeRepository
	tracks repository.TrackRepository
}

// NewLikeService creates a LikeService.
func NewLikeService(likes repository.LikeRepository, tracks repository.TrackRepository) *LikeService {
	return &LikeService{likes: likes, tracks: tracks}
}

// Like records a like and returns the fresh count. Liking twice is a
// validation error rather than a silent no-op.
func (s *LikeService) Like(ctx context.Context, userID, trackID int64) (int64, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if track == nil {
		return 0, apperr.NotFound("Track")
	}

	exists, err := s.likes.LikeExists(ctx, userID, trackID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperr.Validation("Track already liked", nil)
	}

	if err := s.likes.CreateLike(ctx, userID, trackID); err != nil {
		// A concurrent like can still slip past the existence check; the
		// composite key is the real guard.
		if errors.Is(err, repository.ErrAlreadyLiked) {
			return 0, apperr.Validation("Track already liked", nil)
		}
		return 0, err
	}

	return s.likes.CountByTrack(ctx, trackID)
}

// Unlike removes the caller's like and returns the fresh count.
func (s *LikeService) Unlike(ctx context.Context, userID, trackID int64) (int64, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if track == nil {
		return 0, apperr.NotFound("Track")
	}

	removed, err := s.likes.DeleteLike(ctx, userID, trackID)
	if err != nil {
		return 0, err
	}
	if !removed {
		return 0, apperr.NotFound("Like")
	}

	return s.likes.CountByTrack(ctx, trackID)
}

// List returns who liked the track, oldest first.
func (s *LikeService) List(ctx context.Context, trackID int64) ([]*model.Like, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}

	likes, err := s.likes.ListByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []*model.Like{}
	}
	return likes, nil
}

// Count returns the like count of an existing track.
func (s *LikeService) Count(ctx context.Context, trackID int64) (int64, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if track == nil {
		return 0, apperr.NotFound("Track")
	}
	return s.likes.CountByTrack(ctx, trackID)
}
