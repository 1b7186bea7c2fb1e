package model

import "time"

// TargetKind tags what a like or notification points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
	TargetUser    TargetKind = "user"
)

// Likeable reports whether k can be the target of a like.
func (k TargetKind) Likeable() bool {
	return k == TargetPost || k == TargetComment
}

// Like is a ledger row; its existence is the liked state.
type Like struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string     `gorm:"type:varchar(36);not null;index:idx_like_pair,unique,priority:1;index:idx_like_user" json:"userId"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;index:idx_like_pair,unique,priority:2;index:idx_like_target,priority:1" json:"targetKind"`
	TargetID   string     `gorm:"type:varchar(36);not null;index:idx_like_pair,unique,priority:3;index:idx_like_target,priority:2" json:"targetId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }
