package models

// Admin is the single operator credential. It is read-only: seeded at
// start-up and never created or updated through the repository.
type Admin struct {
	Username string

	// PasswordHash is a bcrypt hash; the plain password is never stored.
	PasswordHash string
}
