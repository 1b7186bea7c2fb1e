package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/pkg/logger"
)

// RelationshipService maintains the follow graph.
type RelationshipService interface {
	Follow(ctx context.Context, followerID, followeeID string) (*model.Follow, error)
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowing(ctx context.Context, userID string, q PageQuery) (*Page[repository.Connection], error)
	ListFollowers(ctx context.Context, userID string, q PageQuery) (*Page[repository.Connection], error)
	// FollowingSet returns every id userID follows. Feed filtering reads it.
	FollowingSet(ctx context.Context, userID string) ([]string, error)
}

// followingCache is satisfied by *repository.FollowingCache.
type followingCache interface {
	Get(ctx context.Context, userID string) ([]string, bool, error)
	Set(ctx context.Context, userID string, ids []string) error
	Invalidate(ctx context.Context, userID string) error
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	cache      followingCache
	notifier   Notifier
}

// NewRelationshipService builds the service. cache may be nil, in which case every
// FollowingSet call reads the store.
func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository, cache *repository.FollowingCache, notifier Notifier) RelationshipService {
	s := &relationshipService{followRepo: followRepo, userRepo: userRepo, notifier: orNop(notifier)}
	if cache != nil {
		s.cache = cache
	}
	return s
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followeeID string) (*model.Follow, error) {
	if followerID == followeeID {
		return nil, ErrFollowSelf
	}
	ok, err := s.userRepo.Exists(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	f, created, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyFollowing
	}
	s.invalidate(ctx, followerID)
	s.notifier.Notify(Event{
		Kind:        model.NotifyFollow,
		ActorID:     followerID,
		RecipientID: followeeID,
		TargetID:    followeeID,
		At:          f.CreatedAt,
	})
	return f, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	deleted, err := s.followRepo.Delete(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFollowing
	}
	s.invalidate(ctx, followerID)
	return nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, q PageQuery) (*Page[repository.Connection], error) {
	q = q.normalize()
	items, err := s.followRepo.ListFollowings(ctx, userID, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, q), nil
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string, q PageQuery) (*Page[repository.Connection], error) {
	q = q.normalize()
	items, err := s.followRepo.ListFollowers(ctx, userID, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, q), nil
}

func (s *relationshipService) FollowingSet(ctx context.Context, userID string) ([]string, error) {
	if s.cache != nil {
		ids, hit, err := s.cache.Get(ctx, userID)
		if err != nil {
			logger.Warn("following cache read failed", zap.String("user", userID), zap.Error(err))
		} else if hit {
			return ids, nil
		}
	}
	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, ids); err != nil {
			logger.Warn("following cache fill failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return ids, nil
}

func (s *relationshipService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Warn("following cache invalidate failed", zap.String("user", userID), zap.Error(err))
	}
}
