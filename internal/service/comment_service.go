package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
)

type commentInput struct {
	Content string `validate:"required,notblank,max=2000"`
}

// CommentService manages threaded comments. Every reply carries the post id of
// its root, so a whole thread can be addressed through its post.
type CommentService interface {
	AddRootComment(ctx context.Context, authorID, postID, content string) (*model.Comment, error)
	AddReply(ctx context.Context, authorID, parentID, content string) (*model.Comment, error)
	Get(ctx context.Context, id string) (*repository.CommentWithStats, error)
	RootComments(ctx context.Context, actorID, postID string, q PageQuery) (*Page[repository.CommentWithStats], error)
	Children(ctx context.Context, commentID string, q PageQuery) (*Page[repository.CommentWithStats], error)
	ChildCount(ctx context.Context, commentID string) (int64, error)
	SubtreeCount(ctx context.Context, commentID string) (int64, error)
	Update(ctx context.Context, actorID, commentID, content string) (*model.Comment, error)
	// Delete removes the comment, all of its descendants and their likes.
	Delete(ctx context.Context, actorID, commentID string) (int64, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    Notifier
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, notifier Notifier) CommentService {
	return &commentService{commentRepo: commentRepo, postRepo: postRepo, notifier: orNop(notifier)}
}

func (s *commentService) AddRootComment(ctx context.Context, authorID, postID, content string) (*model.Comment, error) {
	if err := validateInput(commentInput{Content: content}); err != nil {
		return nil, err
	}
	post, err := s.visiblePost(ctx, authorID, postID)
	if err != nil {
		return nil, err
	}
	c, err := s.create(ctx, post, authorID, nil, content)
	return c, mapNotFound(err, ErrPostNotFound)
}

func (s *commentService) AddReply(ctx context.Context, authorID, parentID, content string) (*model.Comment, error) {
	if err := validateInput(commentInput{Content: content}); err != nil {
		return nil, err
	}
	parent, err := s.commentRepo.Get(ctx, parentID)
	if err != nil {
		return nil, mapNotFound(err, ErrCommentNotFound)
	}
	post, err := s.visiblePost(ctx, authorID, parent.PostID)
	if err != nil {
		return nil, err
	}
	// post or parent deleted since the lookups above
	c, err := s.create(ctx, post, authorID, &parent.ID, content)
	return c, mapNotFound(err, ErrCommentNotFound)
}

func (s *commentService) create(ctx context.Context, post *model.Post, authorID string, parentID *string, content string) (*model.Comment, error) {
	c := &model.Comment{
		ID:       uuid.New().String(),
		PostID:   post.ID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.notifier.Notify(Event{
		Kind:        model.NotifyPostComment,
		ActorID:     authorID,
		RecipientID: post.AuthorID,
		TargetID:    post.ID,
		At:          c.CreatedAt,
	})
	return c, nil
}

func (s *commentService) Get(ctx context.Context, id string) (*repository.CommentWithStats, error) {
	c, err := s.commentRepo.GetWithStats(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrCommentNotFound)
	}
	return c, nil
}

func (s *commentService) RootComments(ctx context.Context, actorID, postID string, q PageQuery) (*Page[repository.CommentWithStats], error) {
	if _, err := s.visiblePost(ctx, actorID, postID); err != nil {
		return nil, err
	}
	q = q.normalize(SortLikeCount, SortCommentCount)
	items, err := s.commentRepo.ListRoots(ctx, postID, repository.PostSort{Field: string(q.Sort), Desc: q.desc()}, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, q), nil
}

func (s *commentService) Children(ctx context.Context, commentID string, q PageQuery) (*Page[repository.CommentWithStats], error) {
	if _, err := s.commentRepo.Get(ctx, commentID); err != nil {
		return nil, mapNotFound(err, ErrCommentNotFound)
	}
	q = q.normalize(SortLikeCount, SortCommentCount)
	items, err := s.commentRepo.ListChildren(ctx, commentID, repository.PostSort{Field: string(q.Sort), Desc: q.desc()}, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, q), nil
}

func (s *commentService) ChildCount(ctx context.Context, commentID string) (int64, error) {
	if _, err := s.commentRepo.Get(ctx, commentID); err != nil {
		return 0, mapNotFound(err, ErrCommentNotFound)
	}
	return s.commentRepo.CountChildren(ctx, commentID)
}

func (s *commentService) SubtreeCount(ctx context.Context, commentID string) (int64, error) {
	if _, err := s.commentRepo.Get(ctx, commentID); err != nil {
		return 0, mapNotFound(err, ErrCommentNotFound)
	}
	ids, err := s.commentRepo.DescendantIDs(ctx, commentID)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (s *commentService) Update(ctx context.Context, actorID, commentID, content string) (*model.Comment, error) {
	if err := validateInput(commentInput{Content: content}); err != nil {
		return nil, err
	}
	c, err := s.commentRepo.Get(ctx, commentID)
	if err != nil {
		return nil, mapNotFound(err, ErrCommentNotFound)
	}
	if c.AuthorID != actorID {
		return nil, ErrNotAuthor
	}
	updated, err := s.commentRepo.UpdateContent(ctx, commentID, content)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrCommentNotFound
	}
	c, err = s.commentRepo.Get(ctx, commentID)
	return c, mapNotFound(err, ErrCommentNotFound)
}

func (s *commentService) Delete(ctx context.Context, actorID, commentID string) (int64, error) {
	c, err := s.commentRepo.Get(ctx, commentID)
	if err != nil {
		return 0, mapNotFound(err, ErrCommentNotFound)
	}
	if c.AuthorID != actorID {
		return 0, ErrNotAuthor
	}
	removed, err := s.commentRepo.DeleteSubtree(ctx, commentID)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, ErrCommentNotFound
	}
	return removed, nil
}

// visiblePost hides drafts from everyone but their author.
func (s *commentService) visiblePost(ctx context.Context, actorID, postID string) (*model.Post, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	if !p.Published && p.AuthorID != actorID {
		return nil, ErrPostNotFound
	}
	return p, nil
}
