package service

import (
	"context"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
)

// NotificationService is the recipient's read side of the notification store.
type NotificationService interface {
	List(ctx context.Context, recipientID string, q PageQuery) (*Page[model.Notification], error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, recipientID string, q PageQuery) (*Page[model.Notification], error) {
	q = q.normalize()
	items, err := s.repo.ListByRecipient(ctx, recipientID, q.offset(), q.PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, q), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

// MarkRead is idempotent. A notification owned by someone else is reported as
// missing.
func (s *notificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	ok, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}
