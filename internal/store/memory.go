package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nxsg/chat-api/internal/models"
)

// MemoryStore is an in-process implementation of the same contract as
// MongoStore. Returned documents are copies.
type MemoryStore struct {
	mu    sync.Mutex
	users []models.User
	chats []models.Chat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	s.users = append(s.users, *u)
	return nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) SetUserToken(_ context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			s.users[i].Token = token
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ClearUserToken(_ context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email && s.users[i].Token == token {
			s.users[i].Token = ""
		}
	}
	return nil
}

func (s *MemoryStore) InsertChat(_ context.Context, c *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.chats {
		if existing.ChatName == c.ChatName {
			return ErrDuplicate
		}
	}
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	c.ID = primitive.NewObjectID()
	s.chats = append(s.chats, cloneChat(*c))
	return nil
}

func (s *MemoryStore) FindChatByName(_ context.Context, name string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.chatIndex(name); i >= 0 {
		c := cloneChat(s.chats[i])
		return &c, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListChats(_ context.Context) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, cloneChat(c))
	}
	return out, nil
}

func (s *MemoryStore) AddChatMember(_ context.Context, name, email string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.chatIndex(name)
	if i < 0 {
		return nil, ErrNotFound
	}
	if s.chats[i].HasMember(email) {
		return nil, ErrAlreadyMember
	}
	s.chats[i].Users = append(s.chats[i].Users, email)
	c := cloneChat(s.chats[i])
	return &c, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, name string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.chatIndex(name)
	if i < 0 || !s.chats[i].HasMember(msg.Creator) {
		return ErrNotFound
	}
	s.chats[i].Messages = append(s.chats[i].Messages, msg)
	return nil
}

func (s *MemoryStore) chatIndex(name string) int {
	for i := range s.chats {
		if s.chats[i].ChatName == name {
			return i
		}
	}
	return -1
}

func cloneChat(c models.Chat) models.Chat {
	c.Users = append([]string(nil), c.Users...)
	c.Messages = append([]models.Message{}, c.Messages...)
	return c
}
