package model

import "time"

// Playlist is a named set of track references owned by one user. Tracks
// are shared, not owned: a track may belong to playlists of other users.
type Playlist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PlaylistWithTracks pairs a playlist with its member tracks, loaded
// explicitly by the playlist service.
type PlaylistWithTracks struct {
	Playlist
	Tracks []*Track `json:"tracks"`
}

// PlaylistTrack is a playlist membership row. The composite primary key
// makes membership adds idempotent-rejecting at the storage layer.
type PlaylistTrack struct {
	PlaylistID int64 `gorm:"primaryKey"`
	TrackID    int64 `gorm:"primaryKey"`
}

// TableName keeps the join table name the repositories query against.
func (PlaylistTrack) TableName() string {
	return "playlist_tracks"
}
