package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nxsg/chat-api/internal/apperr"
	"github.com/nxsg/chat-api/internal/auth"
	"github.com/nxsg/chat-api/internal/models"
	"github.com/nxsg/chat-api/internal/store"
)

// Store defines the user persistence the service needs.
type Store interface {
	InsertUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserToken(ctx context.Context, email, token string) error
	ClearUserToken(ctx context.Context, email, token string) error
}

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Issue(email string) (string, error)
	Remaining(claims *auth.Claims) time.Duration
}

var (
	errUserExists  = apperr.New(apperr.ErrConflict, "user already exists")
	errNoUsers     = apperr.WithStatus(apperr.ErrNotFound, http.StatusBadRequest, "users not found")
	errUserMissing = apperr.New(apperr.ErrNotFound, "user not found")
	errLogin       = apperr.New(apperr.ErrUnauthorized, "login failed")
)

// Service implements registration, lookup and login.
type Service struct {
	store    Store
	tokens   TokenIssuer
	hasher   auth.Hasher
	denylist auth.Denylist
}

// NewService wires the user service. denylist may be nil, in which case
// logout only clears the stored token.
func NewService(s Store, tokens TokenIssuer, hasher auth.Hasher, denylist auth.Denylist) *Service {
	return &Service{store: s, tokens: tokens, hasher: hasher, denylist: denylist}
}

// Register creates a user and returns it with a fresh session token.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "name, email, and password are required")
	}

	_, err := s.store.FindUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, errUserExists
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash: %w", err)
	}
	token, err := s.tokens.Issue(req.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	u := &models.User{Name: req.Name, Email: req.Email, Password: hashed, Token: token}
	if err := s.store.InsertUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// GetByEmail returns the user without password or token.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errUserMissing
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	pub := u.Public()
	return &pub, nil
}

// ListAll returns every user. An empty collection is an error.
func (s *Service) ListAll(ctx context.Context) ([]models.User, error) {
	list, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(list) == 0 {
		return nil, errNoUsers
	}
	for i := range list {
		list[i] = list[i].Public()
	}
	return list, nil
}

// Login checks the credentials and replaces the user's stored token with a
// new one. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	u, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errLogin
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Matches(u.Password, req.Password) {
		return nil, errLogin
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.store.SetUserToken(ctx, u.Email, token); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &models.LoginResponse{Email: u.Email, Token: token}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims, raw string) error {
	if s.denylist != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
			return fmt.Errorf("logout: revoke: %w", err)
		}
	}
	if err := s.store.ClearUserToken(ctx, claims.Email, raw); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
