package service

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingNotifier) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recordingNotifier) Kinds() []model.NotificationKind {
	var out []model.NotificationKind
	for _, ev := range r.Events() {
		out = append(out, ev.Kind)
	}
	return out
}

type env struct {
	db            *gorm.DB
	notifier      *recordingNotifier
	relationships RelationshipService
	likes         LikeService
	comments      CommentService
	posts         PostService
	feeds         FeedService
	users         UserService
	notifications NotificationService
}

func newEnv(t *testing.T, cache *repository.FollowingCache) *env {
	t.Helper()
	db := testutil.NewDB(t)
	rec := &recordingNotifier{}
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	rel := NewRelationshipService(followRepo, userRepo, cache, rec)
	return &env{
		db:            db,
		notifier:      rec,
		relationships: rel,
		likes:         NewLikeService(likeRepo, postRepo, commentRepo, rec),
		comments:      NewCommentService(commentRepo, postRepo, rec),
		posts:         NewPostService(postRepo, commentRepo),
		feeds:         NewFeedService(postRepo, rel),
		users:         NewUserService(userRepo, followRepo),
		notifications: NewNotificationService(repository.NewNotificationRepository(db)),
	}
}

// interleavedPosts runs between once, right after the first Get, to land a
// concurrent write between a service's lookup and its insert.
type interleavedPosts struct {
	repository.PostRepository
	once    sync.Once
	between func()
}

func (r *interleavedPosts) Get(ctx context.Context, id string) (*model.Post, error) {
	p, err := r.PostRepository.Get(ctx, id)
	r.once.Do(r.between)
	return p, err
}

type interleavedComments struct {
	repository.CommentRepository
	once    sync.Once
	between func()
}

func (r *interleavedComments) Get(ctx context.Context, id string) (*model.Comment, error) {
	c, err := r.CommentRepository.Get(ctx, id)
	r.once.Do(r.between)
	return c, err
}

// staleUsernames misses every username lookup, as if the name were claimed right
// after the check.
type staleUsernames struct {
	repository.UserRepository
}

func (staleUsernames) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
