package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"
)

// ErrInvalidCredentials is returned by Authenticate whether the username is
// unknown or the secret does not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserServicer defines the interface for interacting with accounts.
type UserServicer interface {
	Register(ctx context.Context, username, password string) (*data.User, error)
	Authenticate(ctx context.Context, username, password string) (*data.User, error)
	IssueToken(ctx context.Context, user *data.User) (string, error)
	LookupByToken(ctx context.Context, token string) (*data.User, error)
}

// UserService manages accounts, their hashed secrets and session tokens.
type UserService struct {
	store  *data.Store
	hasher data.SecretHasher
	log    logger.Logger

	decoyOnce sync.Once
	decoy     string
}

var _ UserServicer = (*UserService)(nil)

// NewUserService creates a UserService hashing secrets with hasher.
func NewUserService(store *data.Store, hasher data.SecretHasher, log logger.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, log: log}
}

// Register creates an account. The secret is hashed before it is written and
// a session token is assigned.
func (s *UserService) Register(ctx context.Context, username, password string) (*data.User, error) {
	user := data.NewUser(username, password, s.hasher)
	if err := s.store.Save(ctx, user); err != nil {
		return user, err
	}
	s.log.With(map[string]interface{}{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

// GetByUsername returns the account named username, or data.ErrNotFound.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*data.User, error) {
	return data.SelectOne[data.User](ctx, s.store, "WHERE username = ?", username)
}

// Authenticate checks a username and secret and returns the account with a
// session token assigned. Unknown users and wrong secrets both yield
// ErrInvalidCredentials, after comparable work.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*data.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if errors.Is(err, data.ErrNotFound) {
		s.hasher.Matches(s.decoyHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.PasswordMatches(s.hasher, password) {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.IssueToken(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// decoyHash is compared against when the username is unknown.
func (s *UserService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("decoy secret")
		if err != nil {
			s.log.Warn(fmt.Sprintf("Failed to build decoy hash: %v", err))
		}
		s.decoy = h
	})
	return s.decoy
}

// IssueToken returns the user's token, assigning and storing one first if
// the user has none. Existing tokens are not rotated.
func (s *UserService) IssueToken(ctx context.Context, user *data.User) (string, error) {
	if user.IsNew() {
		return "", fmt.Errorf("issue token: %w", data.ErrNotFound)
	}
	if user.EnsureToken() {
		if err := s.store.Save(ctx, user); err != nil {
			user.SessionToken = nil
			return "", err
		}
	}
	return user.Token(), nil
}

// LookupByToken returns the account holding token, or data.ErrNotFound.
func (s *UserService) LookupByToken(ctx context.Context, token string) (*data.User, error) {
	if token == "" {
		return nil, data.ErrNotFound
	}
	return data.SelectOne[data.User](ctx, s.store, "WHERE session_token = ?", token)
}
