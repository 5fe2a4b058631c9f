package model

import "time"

// Comment is a user's comment on a track. Comments are deleted together
// with their track.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	TrackID   int64     `json:"track_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
