package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialgraph/internal/model"
)

type LikeRepository interface {
	// Create inserts l unless (user, kind, target) is already liked; created reports
	// whether this call inserted the row. The target is re-read under its post's
	// share lock, and a vanished target yields gorm.ErrRecordNotFound.
	Create(ctx context.Context, l *model.Like) (created bool, err error)
	Get(ctx context.Context, userID string, kind model.TargetKind, targetID string) (*model.Like, error)
	Delete(ctx context.Context, userID string, kind model.TargetKind, targetID string) (bool, error)
	Count(ctx context.Context, kind model.TargetKind, targetID string) (int64, error)
	ListLikers(ctx context.Context, kind model.TargetKind, targetID string, offset, limit int) ([]model.User, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, l *model.Like) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTarget(tx, l.TargetKind, l.TargetID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l)
		created = res.RowsAffected == 1
		return res.Error
	})
	return created, err
}

func lockTarget(tx *gorm.DB, kind model.TargetKind, targetID string) error {
	switch kind {
	case model.TargetPost:
		return lockPost(tx, targetID, lockShare)
	case model.TargetComment:
		var c model.Comment
		if err := tx.Select("id", "post_id").Where("id = ?", targetID).Take(&c).Error; err != nil {
			return err
		}
		if err := lockPost(tx, c.PostID, lockShare); err != nil {
			return err
		}
		// a subtree delete may have committed while we waited for the lock
		return tx.Select("id").Where("id = ?", targetID).Take(&c).Error
	default:
		return fmt.Errorf("unknown like target %q", kind)
	}
}

func (r *likeRepository) Get(ctx context.Context, userID string, kind model.TargetKind, targetID string) (*model.Like, error) {
	var l model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID string, kind model.TargetKind, targetID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Delete(&model.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) Count(ctx context.Context, kind model.TargetKind, targetID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&cnt).Error
	return cnt, err
}

func (r *likeRepository) ListLikers(ctx context.Context, kind model.TargetKind, targetID string, offset, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.target_kind = ? AND likes.target_id = ?", kind, targetID).
		Order("likes.created_at DESC, likes.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// likeCountExpr counts likes of kind on the row named by idCol. Feeds sort and report
// on the same expression so a page's order always matches the counts it shows.
func likeCountExpr(kind model.TargetKind, idCol string) string {
	return "(SELECT COUNT(*) FROM likes WHERE likes.target_kind = '" + string(kind) + "' AND likes.target_id = " + idCol + ")"
}
