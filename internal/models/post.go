package models

import (
	"time"
)

// Post is owned by exactly one Profile and removed with it.
// LikeCount is derived from the likes table and never written.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProfileID   uint      `json:"-" gorm:"index;not null"`
	Profile     *Profile  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Image       string    `json:"image" gorm:"size:255;not null"` // blob store key
	Description *string   `json:"description"`
	LikeCount   int64     `json:"like_count" gorm:"->;-:migration"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostResponse is the wire form of a post, with author and image URL.
type PostResponse struct {
	ID          uint           `json:"id"`
	Profile     ProfileCompact `json:"profile"`
	Image       string         `json:"image"`
	ImageURL    string         `json:"image_url"`
	Description *string        `json:"description"`
	LikeCount   int64          `json:"like_count"`
	IsLiked     *bool          `json:"is_liked,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (p *Post) ToResponse() PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Image:       p.Image,
		ImageURL:    "/media/" + p.Image,
		Description: p.Description,
		LikeCount:   p.LikeCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Profile != nil {
		resp.Profile = p.Profile.ToCompact()
	} else {
		resp.Profile = ProfileCompact{ID: p.ProfileID}
	}
	return resp
}

type UpdatePostRequest struct {
	Description *string `json:"description" validate:"omitempty,max=2200"`
}
