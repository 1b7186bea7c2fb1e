package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialgraph/internal/model"
)

// PostWithStats is a post plus its aggregates, read in the same statement as the row.
type PostWithStats struct {
	model.Post   `gorm:"embedded"`
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
}

// PostSort selects the listing order; ties always break on post id ascending.
type PostSort struct {
	Field string // "createdAt", "likeCount" or "commentCount"
	Desc  bool
}

// PostFilter narrows a listing. Zero-valued fields do not filter.
type PostFilter struct {
	Published *bool
	AuthorID  string
	// AuthorIDs restricts to these authors; a non-nil empty slice matches nothing.
	AuthorIDs []string
	// FollowedBy restricts to authors the given user follows, resolved in the store.
	FollowedBy  string
	LikedBy     string
	CommentedBy string
	// Query matches title or text, case-insensitively.
	Query string
}

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	Get(ctx context.Context, id string) (*model.Post, error)
	GetWithStats(ctx context.Context, id string) (*PostWithStats, error)
	// Update saves the scalar fields of p; when images is non-nil the image list is
	// replaced as a whole.
	Update(ctx context.Context, p *model.Post, images []model.ImageRef) error
	// Delete removes the post, its images, every comment on it, and every like
	// on the post or those comments, in one transaction.
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f PostFilter, sort PostSort, offset, limit int) ([]PostWithStats, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	for i := range p.Images {
		p.Images[i].PostID = p.ID
		p.Images[i].Position = i
	}
	// gorm saves the Images association in the same transaction
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetWithStats(ctx context.Context, id string) (*PostWithStats, error) {
	var rows []PostWithStats
	if err := r.statsQuery(ctx).Where("posts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *postRepository) Update(ctx context.Context, p *model.Post, images []model.ImageRef) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{ID: p.ID}).Updates(map[string]any{
			"title":     p.Title,
			"text":      p.Text,
			"published": p.Published,
		}).Error; err != nil {
			return err
		}
		if images == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&model.PostImage{}).Error; err != nil {
			return err
		}
		p.Images = make([]model.PostImage, 0, len(images))
		for i, img := range images {
			p.Images = append(p.Images, model.PostImage{PostID: p.ID, Position: i, Image: img})
		}
		if len(p.Images) == 0 {
			return nil
		}
		return tx.Create(&p.Images).Error
	})
}

func (r *postRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, id, lockUpdate); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("target_kind = ? AND target_id IN (?)", model.TargetComment, commentIDs).
			Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", model.TargetPost, id).
			Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

const (
	lockShare  = "SHARE"
	lockUpdate = "UPDATE"
)

// lockPost row-locks a post inside tx. Writes that hang rows off a post's thread
// take the share lock; deletes take the update lock first, so an insert either
// commits before the cascade reads the thread or finds its parent gone.
func lockPost(tx *gorm.DB, postID, strength string) error {
	var p model.Post
	return tx.Clauses(clause.Locking{Strength: strength}).
		Select("id").
		Where("id = ?", postID).
		Take(&p).Error
}

func (r *postRepository) List(ctx context.Context, f PostFilter, sort PostSort, offset, limit int) ([]PostWithStats, error) {
	if f.AuthorIDs != nil && len(f.AuthorIDs) == 0 {
		return []PostWithStats{}, nil
	}
	q := r.statsQuery(ctx)
	if f.Published != nil {
		q = q.Where("posts.published = ?", *f.Published)
	}
	if f.AuthorID != "" {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.AuthorIDs != nil {
		q = q.Where("posts.author_id IN ?", f.AuthorIDs)
	}
	if f.FollowedBy != "" {
		q = q.Where("posts.author_id IN (?)",
			r.db.Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", f.FollowedBy))
	}
	if f.LikedBy != "" {
		q = q.Where("EXISTS (SELECT 1 FROM likes l WHERE l.target_kind = ? AND l.target_id = posts.id AND l.user_id = ?)",
			model.TargetPost, f.LikedBy)
	}
	if f.CommentedBy != "" {
		q = q.Where("EXISTS (SELECT 1 FROM comments c WHERE c.post_id = posts.id AND c.author_id = ?)", f.CommentedBy)
	}
	if f.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.text) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	rows := []PostWithStats{}
	if err := q.Order(orderClause(sort)).Offset(offset).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postRepository) statsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Select("posts.*, " +
			likeCountExpr(model.TargetPost, "posts.id") + " AS like_count, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

func orderClause(s PostSort) string {
	col := "posts.created_at"
	switch s.Field {
	case "likeCount":
		col = "like_count"
	case "commentCount":
		col = "comment_count"
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, posts.id ASC", col, dir)
}

// attachImages loads the images of every row in one query.
func (r *postRepository) attachImages(ctx context.Context, rows []PostWithStats) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, len(rows))
	byID := make(map[string]*PostWithStats, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
		byID[rows[i].ID] = &rows[i]
		rows[i].Images = []model.PostImage{}
	}
	var images []model.PostImage
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("post_id ASC, position ASC").
		Find(&images).Error; err != nil {
		return err
	}
	for _, img := range images {
		if p, ok := byID[img.PostID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
