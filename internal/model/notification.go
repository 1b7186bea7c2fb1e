package model

import "time"

type NotificationKind string

const (
	NotifyPostLike    NotificationKind = "post_like"
	NotifyCommentLike NotificationKind = "comment_like"
	NotifyPostComment NotificationKind = "post_comment"
	NotifyFollow      NotificationKind = "follow"
)

// TargetKind returns the kind of entity a notification of kind k points at.
func (k NotificationKind) TargetKind() TargetKind {
	switch k {
	case NotifyPostLike, NotifyPostComment:
		return TargetPost
	case NotifyCommentLike:
		return TargetComment
	default:
		return TargetUser
	}
}

// Notification is derived from an interaction; only Read ever changes.
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RecipientID string           `gorm:"type:varchar(36);not null;index:idx_notification_recipient,priority:1" json:"recipientId"`
	ActorID     string           `gorm:"type:varchar(36);not null" json:"actorId"`
	Kind        NotificationKind `gorm:"type:varchar(16);not null" json:"kind"`
	TargetKind  TargetKind       `gorm:"type:varchar(16);not null" json:"targetKind"`
	TargetID    string           `gorm:"type:varchar(36);not null" json:"targetId"`
	Read        bool             `gorm:"not null;index" json:"read"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_recipient,priority:2" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
