package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialgraph/internal/model"
)

type UserRepository interface {
	// Create inserts u unless its id or username is taken; created is false then.
	Create(ctx context.Context, u *model.User) (created bool, err error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, u *model.User) error
	Search(ctx context.Context, query string, offset, limit int) ([]model.User, error)
	// Suggested returns users userID does not follow yet, most followed first.
	Suggested(ctx context.Context, userID string, limit int) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(u)
	return res.RowsAffected == 1, res.Error
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Model(&model.User{ID: u.ID}).Updates(map[string]any{
		"username":           u.Username,
		"bio":                u.Bio,
		"avatar_id":          u.Avatar.ID,
		"avatar_url":         u.Avatar.URL,
		"avatar_external_id": u.Avatar.ExternalID,
	}).Error
}

func (r *userRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	users := []model.User{}
	err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(bio) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("username ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) Suggested(ctx context.Context, userID string, limit int) ([]model.User, error) {
	users := []model.User{}
	err := r.db.WithContext(ctx).
		Where("users.id <> ?", userID).
		Where("users.id NOT IN (?)", r.db.Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", userID)).
		Order("(SELECT COUNT(*) FROM follows f WHERE f.followee_id = users.id) DESC, users.id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
