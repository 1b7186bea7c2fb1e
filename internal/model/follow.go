package model

import (
	"time"
)

// Follow is a directed edge: FollowerID follows FolloweeID.
type Follow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID string `gorm:"type:varchar(36);index:idx_follow_follower;index:idx_follow_pair,unique;not null" json:"followerId"`
	FolloweeID string `gorm:"type:varchar(36);index:idx_follow_followee;index:idx_follow_pair,unique;not null" json:"followeeId"`
	// idx_follow_pair = (follower_id, followee_id); a second follow of the same pair is a no-op insert
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Follow) TableName() string { return "follows" }
