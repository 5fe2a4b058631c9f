package model

import "time"

// Like records that a user liked a track. The composite primary key
// enforces at most one like per (user, track) pair.
type Like struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey"`
	TrackID   int64     `json:"track_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
