package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resona/apperr"
	"resona/logger"
	"resona/model"
	"resona/repository"
)

// PlaylistService manages playlists and their track memberships. All
// mutations require ownership; reads of a single playlist do too, since
// playlists are private to their creator.
type PlaylistService struct {
	playlists repository.PlaylistRepository
	tracks    repository.TrackRepository
}

// NewPlaylistService creates a PlaylistService.
func NewPlaylistService(playlists repository.PlaylistRepository, tracks repository.TrackRepository) *PlaylistService {
	return &PlaylistService{playlists: playlists, tracks: tracks}
}

// Create makes a playlist, optionally seeding it with one track. A seed
// track that does not exist is skipped rather than failing the create.
func (s *PlaylistService) Create(ctx context.Context, userID int64, name string, initialTrackID int64) (*model.PlaylistWithTracks, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("Playlist name is required", map[string]string{"name": "Required field"})
	}

	playlist := &model.Playlist{UserID: userID, Name: name}
	id, err := s.playlists.CreatePlaylist(ctx, playlist)
	if err != nil {
		return nil, err
	}
	playlist.ID = id

	if initialTrackID > 0 {
		track, err := s.tracks.GetTrackByID(ctx, initialTrackID)
		if err != nil {
			return nil, err
		}
		if track != nil {
			if err := s.playlists.AddTrack(ctx, id, initialTrackID); err != nil {
				return nil, err
			}
		} else {
			logger.Warn("Playlist seed track not found, skipping",
				logger.Int64("playlistId", id),
				logger.Int64("trackId", initialTrackID))
		}
	}

	return s.loadWithTracks(ctx, playlist)
}

// Get returns the caller's playlist with its tracks.
func (s *PlaylistService) Get(ctx context.Context, playlistID, userID int64) (*model.PlaylistWithTracks, error) {
	playlist, err := s.ownedPlaylist(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}
	return s.loadWithTracks(ctx, playlist)
}

// List returns all of the caller's playlists, each with its tracks.
func (s *PlaylistService) List(ctx context.Context, userID int64) ([]*model.PlaylistWithTracks, error) {
	playlists, err := s.playlists.GetPlaylistsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*model.PlaylistWithTracks, 0, len(playlists))
	for _, p := range playlists {
		loaded, err := s.loadWithTracks(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	return out, nil
}

// Rename changes the playlist's name.
func (s *PlaylistService) Rename(ctx context.Context, playlistID, userID int64, name string) (*model.PlaylistWithTracks, error) {
	playlist, err := s.ownedPlaylist(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("Playlist name is required", map[string]string{"name": "Required field"})
	}

	if err := s.playlists.RenamePlaylist(ctx, playlistID, name); err != nil {
		return nil, err
	}
	playlist.Name = name

	return s.loadWithTracks(ctx, playlist)
}

// Delete removes the playlist and its membership rows in one
// transaction. Member tracks themselves are untouched.
func (s *PlaylistService) Delete(ctx context.Context, playlistID, userID int64) error {
	if _, err := s.ownedPlaylist(ctx, playlistID, userID); err != nil {
		return err
	}

	tx, err := s.playlists.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer s.playlists.RollbackTx(tx)

	if err := s.playlists.DeleteMembershipsTx(tx, playlistID); err != nil {
		return err
	}
	if err := s.playlists.DeletePlaylistTx(tx, playlistID); err != nil {
		return err
	}

	return s.playlists.CommitTx(tx)
}

// AddTrack puts a track into the playlist. Duplicate membership is a
// validation error.
func (s *PlaylistService) AddTrack(ctx context.Context, playlistID, userID, trackID int64) (*model.PlaylistWithTracks, error) {
	playlist, err := s.ownedPlaylist(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}

	present, err := s.playlists.HasTrack(ctx, playlistID, trackID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, apperr.Validation("Track already in playlist", nil)
	}

	if err := s.playlists.AddTrack(ctx, playlistID, trackID); err != nil {
		if errors.Is(err, repository.ErrAlreadyInPlaylist) {
			return nil, apperr.Validation("Track already in playlist", nil)
		}
		return nil, err
	}

	return s.loadWithTracks(ctx, playlist)
}

// RemoveTrack takes a track out of the playlist.
func (s *PlaylistService) RemoveTrack(ctx context.Context, playlistID, userID, trackID int64) (*model.PlaylistWithTracks, error) {
	playlist, err := s.ownedPlaylist(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	track, err := s.tracks.GetTrackByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, apperr.NotFound("Track")
	}

	removed, err := s.playlists.RemoveTrack(ctx, playlistID, trackID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperr.Validation("Track not in playlist", nil)
	}

	return s.loadWithTracks(ctx, playlist)
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, playlistID, userID int64) (*model.Playlist, error) {
	playlist, err := s.playlists.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, apperr.NotFound("Playlist")
	}
	if playlist.UserID != userID {
		return nil, apperr.Authorization("Access denied")
	}
	return playlist, nil
}

func (s *PlaylistService) loadWithTracks(ctx context.Context, playlist *model.Playlist) (*model.PlaylistWithTracks, error) {
	tracks, err := s.playlists.GetPlaylistTracks(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []*model.Track{}
	}
	return &model.PlaylistWithTracks{Playlist: *playlist, Tracks: tracks}, nil
}
