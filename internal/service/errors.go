package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every error a service returns to its caller wraps one of these, so
// transports can branch with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidInput     = errors.New("invalid input")
)

var (
	ErrFollowSelf       = fmt.Errorf("%w: cannot follow self", ErrInvalidOperation)
	ErrAlreadyFollowing = fmt.Errorf("%w: already following", ErrConflict)
	ErrNotFollowing     = fmt.Errorf("%w: follow", ErrNotFound)

	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrUsernameTaken        = fmt.Errorf("%w: username taken", ErrConflict)
	ErrProfileExists        = fmt.Errorf("%w: profile already exists", ErrConflict)
	ErrPostNotFound         = fmt.Errorf("%w: post", ErrNotFound)
	ErrCommentNotFound      = fmt.Errorf("%w: comment", ErrNotFound)
	ErrLikeNotFound         = fmt.Errorf("%w: like", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	ErrNotAuthor        = fmt.Errorf("%w: only the author may do this", ErrInvalidOperation)
	ErrDraftsPrivate    = fmt.Errorf("%w: drafts are visible to their author only", ErrInvalidOperation)
	ErrUnknownTarget    = fmt.Errorf("%w: unknown target kind", ErrInvalidInput)
	ErrEmptySearchQuery = fmt.Errorf("%w: empty search query", ErrInvalidInput)
)

func invalidInput(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
}

// mapNotFound swaps the store's missing-row error for the domain sentinel.
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
