package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialgraph/internal/model"
)

// Connection is one row of a follower or following listing: the user on the other
// end of the edge plus when the edge was created.
type Connection struct {
	model.User `gorm:"embedded"`
	FollowedAt time.Time `json:"followedAt"`
}

type FollowRepository interface {
	// Create inserts the edge unless it already exists. created is false when the
	// pair was already present; the existing edge is left untouched.
	Create(ctx context.Context, followerID, followeeID string) (f *model.Follow, created bool, err error)
	Delete(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]Connection, error)
	ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]Connection, error)
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowings(ctx context.Context, userID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) (*model.Follow, bool, error) {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}
	// the unique pair index arbitrates concurrent follows; the loser inserts nothing
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return f, res.RowsAffected == 1, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]Connection, error) {
	return r.listConnections(ctx, "follows.followee_id", "follows.follower_id", followerID, offset, limit)
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]Connection, error) {
	return r.listConnections(ctx, "follows.follower_id", "follows.followee_id", followeeID, offset, limit)
}

// listConnections joins the far end of each edge to users, newest edge first.
func (r *followRepository) listConnections(ctx context.Context, joinCol, whereCol, userID string, offset, limit int) ([]Connection, error) {
	var rows []Connection
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.*, follows.created_at AS followed_at").
		Joins("JOIN users ON users.id = "+joinCol).
		Where(whereCol+" = ?", userID).
		Order("follows.created_at DESC, follows.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowings(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
