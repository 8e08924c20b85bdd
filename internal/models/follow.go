package models

import "time"

// Follower is a directed edge: FollowerID follows FollowingID.
// The unique index and the check constraint are the store-level guards
// against duplicate edges and self-follows.
type Follower struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	FollowerID       uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following;not null;check:chk_followers_no_self,follower_id <> following_id"`
	FollowerProfile  *Profile  `json:"-" gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FollowingID      uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	FollowingProfile *Profile  `json:"-" gorm:"foreignKey:FollowingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt        time.Time `json:"created_at"`
}
