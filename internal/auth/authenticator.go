// Package auth signs in the three kinds of callers: the admin by password,
// and households and drivers by a one-time code sent to their phone.
package auth

import (
	"context"

	"github.com/mmynk/wasteline/internal/models"
)

// Role is the kind of caller a session belongs to.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHousehold Role = "household"
	RoleDriver    Role = "driver"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHousehold, RoleDriver:
		return true
	}
	return false
}

// Identity is an authenticated caller.
// Subject is the admin username, the household id or the driver id.
type Identity struct {
	Role    Role
	Subject string
	Name    string
}

// AdminSource provides the stored operator credential.
type AdminSource interface {
	FetchAdmin(ctx context.Context) (*models.Admin, error)
}

// PhoneDirectory resolves a phone number to the household or driver it
// belongs to. Both lookups return nil, nil when the phone is unknown.
type PhoneDirectory interface {
	FetchHouseholdByPhone(ctx context.Context, phone string) (*models.Household, error)
	FetchDriverByPhone(ctx context.Context, phone string) (*models.Staff, error)
}
