package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
)

type PostInput struct {
	Title     string           `json:"title" validate:"required,notblank,max=255"`
	Text      string           `json:"text" validate:"max=20000"`
	Published bool             `json:"published"`
	Images    []model.ImageRef `json:"images" validate:"max=10,dive"`
}

// PostUpdate changes only the fields that are set. A non-nil Images replaces the
// whole list.
type PostUpdate struct {
	Title     *string           `json:"title" validate:"omitempty,notblank,max=255"`
	Text      *string           `json:"text" validate:"omitempty,max=20000"`
	Published *bool             `json:"published"`
	Images    *[]model.ImageRef `json:"images" validate:"omitempty,max=10,dive"`
}

type PostService interface {
	Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error)
	Get(ctx context.Context, actorID, postID string) (*repository.PostWithStats, error)
	Update(ctx context.Context, actorID, postID string, in PostUpdate) (*repository.PostWithStats, error)
	// Delete removes the post together with its comments and every like on either.
	Delete(ctx context.Context, actorID, postID string) error
	CommentCount(ctx context.Context, actorID, postID string) (int64, error)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) PostService {
	return &postService{postRepo: postRepo, commentRepo: commentRepo}
}

func (s *postService) Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Title:     in.Title,
		Text:      in.Text,
		Published: in.Published,
		Images:    make([]model.PostImage, 0, len(in.Images)),
	}
	for _, img := range in.Images {
		p.Images = append(p.Images, model.PostImage{Image: img})
	}
	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Get(ctx context.Context, actorID, postID string) (*repository.PostWithStats, error) {
	p, err := s.postRepo.GetWithStats(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	if !p.Published && p.AuthorID != actorID {
		return nil, ErrPostNotFound
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, actorID, postID string, in PostUpdate) (*repository.PostWithStats, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Text != nil {
		p.Text = *in.Text
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	var images []model.ImageRef
	if in.Images != nil {
		images = append([]model.ImageRef{}, *in.Images...)
	}
	if err := s.postRepo.Update(ctx, p, images); err != nil {
		return nil, err
	}
	return s.Get(ctx, actorID, postID)
}

func (s *postService) Delete(ctx context.Context, actorID, postID string) error {
	if _, err := s.owned(ctx, actorID, postID); err != nil {
		return err
	}
	deleted, err := s.postRepo.Delete(ctx, postID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPostNotFound
	}
	return nil
}

func (s *postService) CommentCount(ctx context.Context, actorID, postID string) (int64, error) {
	if _, err := s.Get(ctx, actorID, postID); err != nil {
		return 0, err
	}
	return s.commentRepo.CountByPost(ctx, postID)
}

func (s *postService) owned(ctx context.Context, actorID, postID string) (*model.Post, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	if p.AuthorID != actorID {
		if !p.Published {
			return nil, ErrPostNotFound
		}
		return nil, ErrNotAuthor
	}
	return p, nil
}
