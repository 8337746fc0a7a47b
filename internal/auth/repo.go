package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/bsc-scorecard/scorecard/internal/shared"
)

// Repository looks up users by name.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// StaticRepository serves the one configured user from memory.
type StaticRepository struct {
	user User
}

// NewStaticRepository hashes the configured password once at start-up.
func NewStaticRepository(creds Credentials) (*StaticRepository, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("auth: username and password must be configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &StaticRepository{user: User{Username: creds.Username, PasswordHash: string(hash)}}, nil
}

// FindByUsername returns the configured user when the name matches.
func (r *StaticRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(r.user.Username)) != 1 {
		return nil, shared.ErrNotFound
	}
	user := r.user
	return &user, nil
}

var _ Repository = (*StaticRepository)(nil)
