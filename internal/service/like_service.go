package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
)

// LikeOutcome tells a caller whether Like changed anything.
type LikeOutcome string

const (
	LikeCreated       LikeOutcome = "created"
	LikeAlreadyExists LikeOutcome = "already_exists"
)

type LikeResult struct {
	Like    *model.Like `json:"like"`
	Outcome LikeOutcome `json:"outcome"`
}

// LikeService keeps the like ledger. A like is identified by (user, kind, target);
// liking twice is a reported no-op and only the first like notifies.
type LikeService interface {
	Like(ctx context.Context, userID string, kind model.TargetKind, targetID string) (*LikeResult, error)
	Unlike(ctx context.Context, userID string, kind model.TargetKind, targetID string) error
	CountLikes(ctx context.Context, kind model.TargetKind, targetID string) (int64, error)
	HasLiked(ctx context.Context, userID string, kind model.TargetKind, targetID string) (bool, error)
	Likers(ctx context.Context, kind model.TargetKind, targetID string, q PageQuery) (*Page[model.User], error)
}

type likeService struct {
	likeRepo    repository.LikeRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	notifier    Notifier
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, commentRepo repository.CommentRepository, notifier Notifier) LikeService {
	return &likeService{likeRepo: likeRepo, postRepo: postRepo, commentRepo: commentRepo, notifier: orNop(notifier)}
}

func (s *likeService) Like(ctx context.Context, userID string, kind model.TargetKind, targetID string) (*LikeResult, error) {
	ownerID, err := s.targetOwner(ctx, userID, kind, targetID)
	if err != nil {
		return nil, err
	}

	// A concurrent unlike can remove the winning row between our no-op insert and the
	// read-back; one retry settles that.
	for attempt := 0; attempt < 2; attempt++ {
		l := &model.Like{ID: uuid.New().String(), UserID: userID, TargetKind: kind, TargetID: targetID}
		created, err := s.likeRepo.Create(ctx, l)
		if err != nil {
			return nil, mapNotFound(err, targetNotFound(kind))
		}
		if created {
			s.notifier.Notify(Event{
				Kind:        likeNotification(kind),
				ActorID:     userID,
				RecipientID: ownerID,
				TargetID:    targetID,
				At:          l.CreatedAt,
			})
			return &LikeResult{Like: l, Outcome: LikeCreated}, nil
		}
		existing, err := s.likeRepo.Get(ctx, userID, kind, targetID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &LikeResult{Like: existing, Outcome: LikeAlreadyExists}, nil
	}
	return nil, ErrConflict
}

func (s *likeService) Unlike(ctx context.Context, userID string, kind model.TargetKind, targetID string) error {
	if !kind.Likeable() {
		return ErrUnknownTarget
	}
	deleted, err := s.likeRepo.Delete(ctx, userID, kind, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLikeNotFound
	}
	return nil
}

func (s *likeService) CountLikes(ctx context.Context, kind model.TargetKind, targetID string) (int64, error) {
	if !kind.Likeable() {
		return 0, ErrUnknownTarget
	}
	return s.likeRepo.Count(ctx, kind, targetID)
}

func (s *likeService) HasLiked(ctx context.Context, userID string, kind model.TargetKind, targetID string) (bool, error) {
	if !kind.Likeable() {
		return false, ErrUnknownTarget
	}
	_, err := s.likeRepo.Get(ctx, userID, kind, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *likeService) Likers(ctx context.Context, kind model.TargetKind, targetID string, q PageQuery) (*Page[model.User], error) {
	if !kind.Likeable() {
		return nil, ErrUnknownTarget
	}
	q = q.normalize()
	users, err := s.likeRepo.ListLikers(ctx, kind, targetID, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(users, q), nil
}

// targetOwner loads the liked entity and returns its author. Drafts are only
// reachable by their author.
func (s *likeService) targetOwner(ctx context.Context, userID string, kind model.TargetKind, targetID string) (string, error) {
	switch kind {
	case model.TargetPost:
		p, err := s.postRepo.Get(ctx, targetID)
		if err != nil {
			return "", mapNotFound(err, ErrPostNotFound)
		}
		if !p.Published && p.AuthorID != userID {
			return "", ErrPostNotFound
		}
		return p.AuthorID, nil
	case model.TargetComment:
		c, err := s.commentRepo.Get(ctx, targetID)
		if err != nil {
			return "", mapNotFound(err, ErrCommentNotFound)
		}
		return c.AuthorID, nil
	default:
		return "", ErrUnknownTarget
	}
}

func targetNotFound(kind model.TargetKind) error {
	if kind == model.TargetComment {
		return ErrCommentNotFound
	}
	return ErrPostNotFound
}

func likeNotification(kind model.TargetKind) model.NotificationKind {
	if kind == model.TargetComment {
		return model.NotifyCommentLike
	}
	return model.NotifyPostLike
}
