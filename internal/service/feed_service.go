package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/d60-Lab/socialgraph/internal/repository"
)

// inListLimit is the largest following set bound as literal ids; larger sets are
// resolved by the store with a subquery.
const inListLimit = 1000

// FeedService builds paginated post listings. Every listing reads rows and their
// counts in a single statement, so the sort order of a page always agrees with the
// counts it reports.
type FeedService interface {
	GlobalFeed(ctx context.Context, q PageQuery) (*Page[repository.PostWithStats], error)
	PersonalizedFeed(ctx context.Context, userID string, q PageQuery) (*Page[repository.PostWithStats], error)
	// AuthorPosts lists authorID's posts. Only the author may list their drafts.
	AuthorPosts(ctx context.Context, actorID, authorID string, published bool, q PageQuery) (*Page[repository.PostWithStats], error)
	LikedPosts(ctx context.Context, userID string, q PageQuery) (*Page[repository.PostWithStats], error)
	// CommentedPosts lists published posts userID commented on at any depth.
	CommentedPosts(ctx context.Context, userID string, q PageQuery) (*Page[repository.PostWithStats], error)
	Search(ctx context.Context, query string, q PageQuery) (*Page[repository.PostWithStats], error)
}

// followingSource is satisfied by RelationshipService.
type followingSource interface {
	FollowingSet(ctx context.Context, userID string) ([]string, error)
}

type feedService struct {
	postRepo repository.PostRepository
	graph    followingSource
}

func NewFeedService(postRepo repository.PostRepository, graph followingSource) FeedService {
	return &feedService{postRepo: postRepo, graph: graph}
}

var published = true

func (s *feedService) GlobalFeed(ctx context.Context, q PageQuery) (*Page[repository.PostWithStats], error) {
	return s.list(ctx, "feed.global", repository.PostFilter{Published: &published}, q)
}

func (s *feedService) PersonalizedFeed(ctx context.Context, userID string, q PageQuery) (*Page[repository.PostWithStats], error) {
	following, err := s.graph.FollowingSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	f := repository.PostFilter{Published: &published}
	switch {
	case len(following) == 0:
		return newPage([]repository.PostWithStats{}, q.normalize(SortLikeCount, SortCommentCount)), nil
	case len(following) <= inListLimit:
		f.AuthorIDs = following
	default:
		f.FollowedBy = userID
	}
	return s.list(ctx, "feed.personalized", f, q)
}

func (s *feedService) AuthorPosts(ctx context.Context, actorID, authorID string, pub bool, q PageQuery) (*Page[repository.PostWithStats], error) {
	if !pub && actorID != authorID {
		return nil, ErrDraftsPrivate
	}
	return s.list(ctx, "feed.author", repository.PostFilter{Published: &pub, AuthorID: authorID}, q)
}

func (s *feedService) LikedPosts(ctx context.Context, userID string, q PageQuery) (*Page[repository.PostWithStats], error) {
	return s.list(ctx, "feed.liked", repository.PostFilter{Published: &published, LikedBy: userID}, q)
}

func (s *feedService) CommentedPosts(ctx context.Context, userID string, q PageQuery) (*Page[repository.PostWithStats], error) {
	return s.list(ctx, "feed.commented", repository.PostFilter{Published: &published, CommentedBy: userID}, q)
}

func (s *feedService) Search(ctx context.Context, query string, q PageQuery) (*Page[repository.PostWithStats], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}
	return s.list(ctx, "feed.search", repository.PostFilter{Published: &published, Query: query}, q)
}

func (s *feedService) list(ctx context.Context, name string, f repository.PostFilter, q PageQuery) (*Page[repository.PostWithStats], error) {
	q = q.normalize(SortLikeCount, SortCommentCount)
	ctx, span := otel.Tracer("socialgraph/feed").Start(ctx, name, trace.WithAttributes(
		attribute.String("feed.sort", string(q.Sort)),
		attribute.Int("feed.page", q.Page),
		attribute.Int("feed.page_size", q.PageSize),
	))
	defer span.End()

	items, err := s.postRepo.List(ctx, f, repository.PostSort{Field: string(q.Sort), Desc: q.desc()}, q.offset(), q.PageSize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return newPage(items, q), nil
}
