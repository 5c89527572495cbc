package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SecretHasher is the one-way function applied to credentials.
type SecretHasher interface {
	Hash(plaintext string) (string, error)
	Matches(hash, plaintext string) bool
}

// ErrNoHasher is returned when a plaintext secret is pending but no hasher was supplied.
var ErrNoHasher = errors.New("no secret hasher configured")

// UserSchema maps User onto the users table.
var UserSchema = &Schema{
	Table:   "users",
	Columns: []string{"username", "secret", "session_token"},
	DDL: func(d Dialect) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			username %s UNIQUE,
			secret %s,
			session_token %s NULL
		)`, d.Serial, d.KeyText, d.Text, d.KeyText)
	},
}

// User is an account. Secret only ever holds a hash; the plaintext set
// through SetPassword is hashed in BeforeSave and then forgotten.
type User struct {
	Model
	Username     string
	Secret       string
	SessionToken *string

	password string
	hasher   SecretHasher
}

// NewUser returns an unsaved user whose password will be hashed with h.
func NewUser(username, password string, h SecretHasher) *User {
	u := &User{Username: username}
	u.SetPassword(password, h)
	return u
}

func (u *User) Schema() *Schema { return UserSchema }

func (u *User) Fields() []any {
	return []any{&u.ID, &u.Username, &u.Secret, &u.SessionToken}
}

func (u *User) Values() []any {
	return []any{u.Username, u.Secret, u.SessionToken}
}

// SetPassword stages a plaintext secret to be hashed with h on the next save.
func (u *User) SetPassword(plaintext string, h SecretHasher) {
	u.password = plaintext
	u.hasher = h
}

// Validate requires a unique username and some secret, pending or stored.
func (u *User) Validate(ctx context.Context, s *Store) (bool, error) {
	if u.Username == "" {
		u.AddError("username", "username is required")
		return false, nil
	}
	n, err := s.Count(ctx, UserSchema, "WHERE username = ? AND id != ?", u.Username, u.ID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		u.AddError("username", "username must be unique")
		return false, nil
	}
	if u.password == "" && u.Secret == "" {
		u.AddError("password", "password is required")
		return false, nil
	}
	return true, nil
}

// BeforeSave hashes a pending password and makes sure a token exists.
func (u *User) BeforeSave(ctx context.Context, s *Store) error {
	if u.password != "" {
		if u.hasher == nil {
			return ErrNoHasher
		}
		hashed, err := u.hasher.Hash(u.password)
		if err != nil {
			return fmt.Errorf("failed to hash secret: %w", err)
		}
		u.Secret = hashed
		u.password = ""
	}
	u.EnsureToken()
	return nil
}

// EnsureToken assigns a session token if none exists and reports whether it did.
// Existing tokens are never rotated.
func (u *User) EnsureToken() bool {
	if u.SessionToken != nil && *u.SessionToken != "" {
		return false
	}
	t := uuid.NewString()
	u.SessionToken = &t
	return true
}

// Token returns the session token, or "" when none is assigned.
func (u *User) Token() string {
	if u.SessionToken == nil {
		return ""
	}
	return *u.SessionToken
}

// PasswordMatches checks plaintext against the stored hash.
func (u *User) PasswordMatches(h SecretHasher, plaintext string) bool {
	if u.Secret == "" || h == nil {
		return false
	}
	return h.Matches(u.Secret, plaintext)
}
