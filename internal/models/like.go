package models

import "time"

// Like is the (post, profile) edge; a profile likes a given post at most once.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_post_profile_like;not null"`
	Post      *Post     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ProfileID uint      `json:"profile_id" gorm:"index;uniqueIndex:idx_post_profile_like;not null"`
	Profile   *Profile  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"created_at"`
}
