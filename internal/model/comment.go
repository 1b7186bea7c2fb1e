package model

import "time"

// Comment belongs to a post. Root comments have a nil ParentID; a reply's ParentID
// names a comment of the same post. Parents are set once at insert.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);index:idx_comment_post;not null" json:"postId"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_comment_author;not null" json:"authorId"`
	ParentID  *string   `gorm:"type:varchar(36);index:idx_comment_parent" json:"parentId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Constraint-only associations: the store drops replies with their parent and
	// comments with their post.
	Post   *Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Parent *Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string { return "comments" }
