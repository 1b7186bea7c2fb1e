package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialgraph/internal/model"
)

// traversalBatch bounds the parent ids bound into one IN clause while walking a thread.
const traversalBatch = 500

// CommentWithStats is a comment plus its like count and number of direct replies.
type CommentWithStats struct {
	model.Comment `gorm:"embedded"`
	LikeCount     int64 `json:"likeCount"`
	ReplyCount    int64 `json:"replyCount"`
}

type CommentRepository interface {
	// Create inserts c while its post, and its parent when set, are still present.
	// A missing post or parent yields gorm.ErrRecordNotFound and nothing is written.
	Create(ctx context.Context, c *model.Comment) error
	Get(ctx context.Context, id string) (*model.Comment, error)
	GetWithStats(ctx context.Context, id string) (*CommentWithStats, error)
	UpdateContent(ctx context.Context, id, content string) (bool, error)
	// ListRoots lists comments on postID that have no parent.
	ListRoots(ctx context.Context, postID string, sort PostSort, offset, limit int) ([]CommentWithStats, error)
	ListChildren(ctx context.Context, parentID string, sort PostSort, offset, limit int) ([]CommentWithStats, error)
	CountChildren(ctx context.Context, parentID string) (int64, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	// DescendantIDs walks the thread under rootID breadth-first. rootID itself is
	// not included.
	DescendantIDs(ctx context.Context, rootID string) ([]string, error)
	// DeleteSubtree removes rootID, every descendant and their likes in one
	// transaction and returns how many comments were removed.
	DeleteSubtree(ctx context.Context, rootID string) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, c.PostID, lockShare); err != nil {
			return err
		}
		if c.ParentID != nil {
			var parent model.Comment
			if err := tx.Select("id").
				Where("id = ? AND post_id = ?", *c.ParentID, c.PostID).
				Take(&parent).Error; err != nil {
				return err
			}
		}
		return tx.Create(c).Error
	})
}

func (r *commentRepository) Get(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) GetWithStats(ctx context.Context, id string) (*CommentWithStats, error) {
	var rows []CommentWithStats
	if err := r.statsQuery(ctx).Where("comments.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Comment{ID: id}).Update("content", content)
	return res.RowsAffected > 0, res.Error
}

func (r *commentRepository) ListRoots(ctx context.Context, postID string, sort PostSort, offset, limit int) ([]CommentWithStats, error) {
	return r.list(ctx, r.statsQuery(ctx).Where("comments.post_id = ? AND comments.parent_id IS NULL", postID), sort, offset, limit)
}

func (r *commentRepository) ListChildren(ctx context.Context, parentID string, sort PostSort, offset, limit int) ([]CommentWithStats, error) {
	return r.list(ctx, r.statsQuery(ctx).Where("comments.parent_id = ?", parentID), sort, offset, limit)
}

func (r *commentRepository) list(_ context.Context, q *gorm.DB, sort PostSort, offset, limit int) ([]CommentWithStats, error) {
	col := "comments.created_at"
	switch sort.Field {
	case "likeCount":
		col = "like_count"
	case "commentCount":
		col = "reply_count"
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	rows := []CommentWithStats{}
	err := q.Order(fmt.Sprintf("%s %s, comments.id ASC", col, dir)).Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *commentRepository) statsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Select("comments.*, " +
			likeCountExpr(model.TargetComment, "comments.id") + " AS like_count, " +
			"(SELECT COUNT(*) FROM comments AS replies WHERE replies.parent_id = comments.id) AS reply_count")
}

func (r *commentRepository) CountChildren(ctx context.Context, parentID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("parent_id = ?", parentID).Count(&cnt).Error
	return cnt, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

func (r *commentRepository) DescendantIDs(ctx context.Context, rootID string) ([]string, error) {
	return descendantIDs(r.db.WithContext(ctx), rootID)
}

func (r *commentRepository) DeleteSubtree(ctx context.Context, rootID string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root model.Comment
		if err := tx.Select("id", "post_id").Where("id = ?", rootID).Take(&root).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		// Replies and comment likes share-lock the post, so the walk below sees
		// every row that will ever hang off this subtree.
		if err := lockPost(tx, root.PostID, lockUpdate); err != nil {
			return err
		}
		ids, err := descendantIDs(tx, rootID)
		if err != nil {
			return err
		}
		ids = append(ids, rootID)
		// Deepest first so no parent row goes before its replies.
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
		for start := 0; start < len(ids); start += traversalBatch {
			chunk := ids[start:min(start+traversalBatch, len(ids))]
			if err := tx.Where("target_kind = ? AND target_id IN ?", model.TargetComment, chunk).
				Delete(&model.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", chunk).Delete(&model.Comment{}).Error; err != nil {
				return err
			}
		}
		removed = int64(len(ids))
		return nil
	})
	return removed, err
}

// descendantIDs is an explicit-queue breadth-first walk, one query per batch of
// frontier ids, so thread depth never grows the call stack.
func descendantIDs(db *gorm.DB, rootID string) ([]string, error) {
	out := []string{}
	queue := []string{rootID}
	for len(queue) > 0 {
		n := min(len(queue), traversalBatch)
		batch := queue[:n]
		queue = queue[n:]

		var children []string
		if err := db.Model(&model.Comment{}).
			Where("parent_id IN ?", batch).
			Order("created_at ASC, id ASC").
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		out = append(out, children...)
		queue = append(queue, children...)
	}
	return out, nil
}
