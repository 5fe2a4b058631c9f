package model

import "time"

// Track represents an uploaded audio track. AudioURL points into the
// blob store (local path or object-store URL); the blob is released when
// the track is deleted.
type Track struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"user_id" gorm:"not null;index"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	AudioURL   string    `json:"audio_url" gorm:"size:767;not null"`
	Genre      string    `json:"genre" gorm:"size:255"`
	Duration   int       `json:"duration"` // Duration in seconds
	ArtistName string    `json:"artist_name" gorm:"size:255"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TrackWithCount pairs a track with its like count, computed by counting
// like rows at read time so it can never drift.
type TrackWithCount struct {
	Track
	LikeCount int64 `json:"like_count"`
}
