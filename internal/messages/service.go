package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nxsg/chat-api/internal/apperr"
	"github.com/nxsg/chat-api/internal/models"
	"github.com/nxsg/chat-api/internal/store"
)

// Store defines the message persistence the service needs. AppendMessage
// must only append when the creator is a member of the chat.
type Store interface {
	FindChatByName(ctx context.Context, name string) (*models.Chat, error)
	AppendMessage(ctx context.Context, name string, msg models.Message) error
}

// errChatNotFound is returned both for a missing chat and for a caller who
// is not a member, so non-members cannot probe for chat names.
var errChatNotFound = apperr.New(apperr.ErrNotFound, "chat not found")

// Service implements posting and reading messages scoped to chat membership.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// ListByChat returns the chat's messages in posting order.
func (s *Service) ListByChat(ctx context.Context, chatName, requester string) ([]models.Message, error) {
	c, err := s.store.FindChatByName(ctx, chatName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errChatNotFound
		}
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if requester == "" || !c.HasMember(requester) {
		return nil, errChatNotFound
	}
	if c.Messages == nil {
		return []models.Message{}, nil
	}
	return c.Messages, nil
}

// PostMessage appends a message from creator stamped with server time.
func (s *Service) PostMessage(ctx context.Context, chatName, creator, body string) error {
	if body == "" {
		return apperr.New(apperr.ErrInvalidInput, "message is required")
	}
	if creator == "" {
		return errChatNotFound
	}
	msg := models.Message{
		Date:    s.now().UTC(),
		Creator: creator,
		Message: body,
	}
	if err := s.store.AppendMessage(ctx, chatName, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errChatNotFound
		}
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}
