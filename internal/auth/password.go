package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// HashPassword returns the bcrypt hash stored for the admin credential.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// PasswordAuthenticator checks the admin username and password using bcrypt.
type PasswordAuthenticator struct {
	admins AdminSource
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(admins AdminSource) *PasswordAuthenticator {
	return &PasswordAuthenticator{admins: admins}
}

// Authenticate returns the admin identity when username and password match.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	admin, err := a.admins.FetchAdmin(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to load admin: %w", err)
	}

	// Compare the hash even on a username mismatch so both failures take
	// the same time.
	hashErr := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))
	if subtle.ConstantTimeCompare([]byte(admin.Username), []byte(username)) != 1 || hashErr != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{Role: RoleAdmin, Subject: admin.Username, Name: admin.Username}, nil
}
