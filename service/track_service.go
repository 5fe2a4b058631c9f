package service

import (
	"context"
	"fmt"

	"resona/apperr"
	"resona/core/upload"
	"resona/logger"
	"resona/model"
	"resona/repository"
)

// CreateTrackInput carries the metadata and audio blob of a new track.
type CreateTrackInput struct {
	Title      string
	Genre      string
	ArtistName string
	Duration   int
	Audio      upload.Upload
}

// TrackPatch is the resolved update request: nil fields are untouched,
// a non-nil Audio triggers the blob replace protocol.
type TrackPatch struct {
	Title      *string
	Genre      *string
	ArtistName *string
	Duration   *int
	Audio      *upload.Upload
}

// TrackService owns track CRUD, the ownership checks and the explicit
// cascade delete of comments, likes and playlist memberships.
type TrackService struct {
	tracks      repository.TrackRepository
	comments    repository.CommentRepository
	likes       repository.LikeRepository
	playlists   repository.PlaylistRepository
	coordinator *upload.Coordinator
}

// NewTrackService creates a TrackService.
func NewTrackService(
	tracks repository.TrackRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	playlists repository.PlaylistRepository,
	coordinator *upload.Coordinator,
) *TrackService {
	return &TrackService{
		tracks:      tracks,
		comments:    comments,
		likes:       likes,
		playlists:   playlists,
		coordinator: coordinator,
	}
}

// Create validates the input, stores the audio blob and persists the
// track record, rolling the blob back if persistence fails.
func (s *TrackService) Create(ctx context.Context, ownerID int64, in CreateTrackInput) (*model.TrackWithCount, error) {
	if in.Title == "" || in.Audio.Content == nil {
		return nil, apperr.Validation("Title and audio file are required.", nil)
	}

	track := &model.Track{
		UserID:     ownerID,
		Title:      in.Title,
		Genre:      in.Genre,
		ArtistName: in.ArtistName,
		Duration:   in.Duration,
	}

	_, err := s.coordinator.Create(ctx, in.Audio, func(url string) error {
		track.AudioURL = url
		id, err := s.tracks.CreateTrack(ctx, track)
		if err != nil {
			return fmt.Errorf("failed to persist track: %w", err)
		}
		track.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	// CreateTrack filled in ID and CreatedAt; re-reading the row here
	// could turn an already committed create into an error.
	return &model.TrackWithCount{Track: *track, LikeCount: 0}, nil
}

// Get returns a track with its computed like count.
func (s *TrackService) Get(ctx context.Context, trackID int64) (*model.TrackWithCount, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}

	count, err := s.likes.CountByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	return &model.TrackWithCount{Track: *track, LikeCount: count}, nil
}

// ListByUser returns all of a user's tracks, newest first.
func (s *TrackService) ListByUser(ctx context.Context, ownerID int64) ([]*model.Track, error) {
	return s.tracks.GetTracksByUserID(ctx, ownerID)
}

// Update applies a partial patch. Field-only patches are one atomic
// write; a patch carrying new audio follows the replace protocol, so the
// old blob is released only after the new reference committed.
func (s *TrackService) Update(ctx context.Context, trackID, requesterID int64, patch TrackPatch) (*model.TrackWithCount, error) {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}
	if track.UserID != requesterID {
		return nil, apperr.Authorization("Access denied")
	}

	if patch.Title != nil {
		track.Title = *patch.Title
	}
	if patch.Genre != nil {
		track.Genre = *patch.Genre
	}
	if patch.ArtistName != nil {
		track.ArtistName = *patch.ArtistName
	}
	if patch.Duration != nil {
		track.Duration = *patch.Duration
	}

	if patch.Audio == nil {
		if err := s.tracks.UpdateTrack(ctx, track); err != nil {
			return nil, err
		}
	} else {
		_, err := s.coordinator.Replace(ctx, *patch.Audio, track.AudioURL, func(newURL string) error {
			track.AudioURL = newURL
			return s.tracks.UpdateTrack(ctx, track)
		})
		if err != nil {
			return nil, err
		}
	}

	count, err := s.likes.CountByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	return &model.TrackWithCount{Track: *track, LikeCount: count}, nil
}

// Delete removes the track with its comments, likes and playlist
// memberships in one transaction, then releases the audio blob. A
// blob-release failure after the committed delete is logged, not
// surfaced: the record deletion already happened.
func (s *TrackService) Delete(ctx context.Context, trackID, requesterID int64) error {
	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return err
	}
	if track == nil {
		return apperr.NotFound("Track")
	}
	if track.UserID != requesterID {
		return apperr.Authorization("Access denied")
	}

	tx, err := s.tracks.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer s.tracks.RollbackTx(tx)

	if err := s.comments.DeleteByTrackTx(tx, trackID); err != nil {
		return err
	}
	if err := s.likes.DeleteByTrackTx(tx, trackID); err != nil {
		return err
	}
	if err := s.playlists.RemoveTrackEverywhereTx(tx, trackID); err != nil {
		return err
	}
	if err := s.tracks.DeleteTrackTx(tx, trackID); err != nil {
		return err
	}

	if err := s.tracks.CommitTx(tx); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	logger.Info("Track deleted",
		logger.Int64("trackId", trackID),
		logger.Int64("userId", requesterID))

	s.coordinator.Release(ctx, track.AudioURL)
	return nil
}
