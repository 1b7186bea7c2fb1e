package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
)

const maxSuggested = 50

type ProfileInput struct {
	Username string          `json:"username" validate:"required,min=2,max=64,username"`
	Bio      string          `json:"bio" validate:"max=500"`
	Avatar   *model.ImageRef `json:"avatar" validate:"omitempty"`
}

type ProfileUpdate struct {
	Username *string         `json:"username" validate:"omitempty,min=2,max=64,username"`
	Bio      *string         `json:"bio" validate:"omitempty,max=500"`
	Avatar   *model.ImageRef `json:"avatar" validate:"omitempty"`
}

// Profile is a user with their follow counts.
type Profile struct {
	model.User
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// UserService owns profiles. User ids are issued by the identity provider; a
// profile is created once per id.
type UserService interface {
	Create(ctx context.Context, userID string, in ProfileInput) (*model.User, error)
	Get(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error)
	Search(ctx context.Context, query string, q PageQuery) (*Page[model.User], error)
	Suggested(ctx context.Context, userID string, take int) ([]model.User, error)
}

type userService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) UserService {
	return &userService{userRepo: userRepo, followRepo: followRepo}
}

func (s *userService) Create(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username, ""); err != nil {
		return nil, err
	}
	u := &model.User{ID: userID, Username: in.Username, Bio: in.Bio}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	if !created {
		// either the id already has a profile or the username was taken concurrently
		if ok, err := s.userRepo.Exists(ctx, userID); err == nil && ok {
			return nil, ErrProfileExists
		}
		return nil, ErrUsernameTaken
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: *u, Followers: followers, Following: following}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if in.Username != nil && *in.Username != u.Username {
		if err := s.ensureUsernameFree(ctx, *in.Username, userID); err != nil {
			return nil, err
		}
		u.Username = *in.Username
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		// lost a rename race after ensureUsernameFree
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Search(ctx context.Context, query string, q PageQuery) (*Page[model.User], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}
	q = q.normalize()
	users, err := s.userRepo.Search(ctx, query, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(users, q), nil
}

func (s *userService) Suggested(ctx context.Context, userID string, take int) ([]model.User, error) {
	if take <= 0 || take > maxSuggested {
		take = min(limits.Default, maxSuggested)
	}
	return s.userRepo.Suggested(ctx, userID, take)
}

func (s *userService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return ErrUsernameTaken
	}
	return nil
}
