package model

import "time"

// Post is authored content. Drafts have Published=false and never reach a feed.
type Post struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID  string      `gorm:"type:varchar(36);index:idx_post_author;not null" json:"authorId"`
	Title     string      `gorm:"type:varchar(255);not null" json:"title"`
	Text      string      `gorm:"type:text" json:"text"`
	Published bool        `gorm:"index:idx_post_published;not null" json:"published"`
	Images    []PostImage `gorm:"foreignKey:PostID" json:"images"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// PostImage keeps a post's image references in display order.
type PostImage struct {
	PostID   string   `gorm:"primaryKey;type:varchar(36)" json:"-"`
	Position int      `gorm:"primaryKey;autoIncrement:false" json:"position"`
	Image    ImageRef `gorm:"embedded;embeddedPrefix:image_" json:"image"`
}

func (PostImage) TableName() string { return "post_images" }
