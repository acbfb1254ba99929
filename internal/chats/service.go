package chats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nxsg/chat-api/internal/apperr"
	"github.com/nxsg/chat-api/internal/models"
	"github.com/nxsg/chat-api/internal/store"
)

// Store defines the chat persistence the service needs.
type Store interface {
	InsertChat(ctx context.Context, c *models.Chat) error
	FindChatByName(ctx context.Context, name string) (*models.Chat, error)
	ListChats(ctx context.Context) ([]models.Chat, error)
	AddChatMember(ctx context.Context, name, email string) (*models.Chat, error)
}

var (
	errChatExists  = apperr.New(apperr.ErrConflict, "chat already exists")
	errNoChats     = apperr.New(apperr.ErrNotFound, "chats not found")
	errChatMissing = apperr.New(apperr.ErrNotFound, "chat not found")
)

// Service implements room creation, lookup and membership.
type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// CreateChat creates a room owned by owner and returns its invite link,
// derived from the URL the creation request was made to.
func (s *Service) CreateChat(ctx context.Context, chatName, owner, requestURL string) (string, error) {
	if chatName == "" {
		return "", apperr.New(apperr.ErrInvalidInput, "chatName is required")
	}
	if owner == "" {
		return "", apperr.ErrForbidden
	}

	_, err := s.store.FindChatByName(ctx, chatName)
	switch {
	case err == nil:
		return "", errChatExists
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("create chat: %w", err)
	}

	invite, err := InviteURL(requestURL, chatName)
	if err != nil {
		return "", &apperr.Error{Kind: apperr.ErrInvalidInput, Msg: "invalid request url", Wrapped: err}
	}

	c := &models.Chat{
		ChatName: chatName,
		Owner:    owner,
		Users:    []string{owner},
		Invite:   invite,
		Messages: []models.Message{},
	}
	if err := s.store.InsertChat(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", errChatExists
		}
		return "", fmt.Errorf("create chat: %w", err)
	}
	return invite, nil
}

// GetAll returns every chat with its full message log.
func (s *Service) GetAll(ctx context.Context) ([]models.Chat, error) {
	list, err := s.store.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	if len(list) == 0 {
		return nil, errNoChats
	}
	return list, nil
}

func (s *Service) GetByName(ctx context.Context, chatName string) (*models.Chat, error) {
	c, err := s.store.FindChatByName(ctx, chatName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errChatMissing
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return c, nil
}

// AddUser appends email to the chat's members. The caller is not checked:
// anyone holding the chat name may add anyone.
func (s *Service) AddUser(ctx context.Context, chatName, email string) (*models.Chat, error) {
	if email == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "userName is required")
	}
	c, err := s.store.AddChatMember(ctx, chatName, email)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, store.ErrAlreadyMember):
		return nil, apperr.ErrAlreadyMember
	case errors.Is(err, store.ErrNotFound):
		return nil, errChatMissing
	default:
		return nil, fmt.Errorf("add user: %w", err)
	}
}

// GetInviteLink returns the invite link to the chat's owner only. A missing
// chat and a non-owner caller get the same error.
func (s *Service) GetInviteLink(ctx context.Context, chatName, requester string) (string, error) {
	c, err := s.store.FindChatByName(ctx, chatName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.ErrNotOwnerOrMissing
		}
		return "", fmt.Errorf("invite link: %w", err)
	}
	if requester == "" || c.Owner != requester {
		return "", apperr.ErrNotOwnerOrMissing
	}
	return c.Invite, nil
}
