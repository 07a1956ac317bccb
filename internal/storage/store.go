// Package storage provides abstractions for household and staff persistence.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/wasteline/internal/models"
)

var (
	// ErrNotFound is returned when an id does not match any stored record.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when an update carries a stale Version.
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// First ids handed out by an empty store.
const (
	FirstHouseholdID int64 = 1001
	FirstStaffID     int64 = 1
)

// Dataset is the initial content loaded into an empty store.
type Dataset struct {
	Households []models.Household
	Drivers    []models.Staff
	Helpers    []models.Staff
	Admin      models.Admin
}

// Store defines the interface for the entity store.
// This abstraction allows swapping storage backends (memory, SQLite, PostgreSQL)
// without changing the repository layer.
//
// Every record returned is a copy; mutating it has no effect until it is
// passed back through an update.
type Store interface {
	// ListHouseholds returns all households in insertion order.
	ListHouseholds(ctx context.Context) ([]models.Household, error)

	// GetHouseholdByID returns ErrNotFound when no household has the id.
	GetHouseholdByID(ctx context.Context, id int64) (*models.Household, error)

	// GetHouseholdByPhone returns nil and no error when the phone is unknown.
	GetHouseholdByPhone(ctx context.Context, phone string) (*models.Household, error)

	// CreateHousehold persists a new household.
	// The household.ID and household.Version fields will be populated by the store.
	CreateHousehold(ctx context.Context, household *models.Household) error

	// UpdateHousehold replaces the stored household with the same ID.
	// Returns ErrNotFound or ErrVersionConflict; household.Version is bumped on success.
	UpdateHousehold(ctx context.Context, household *models.Household) error

	// ListStaff returns the role's collection in insertion order.
	ListStaff(ctx context.Context, role models.StaffRole) ([]models.Staff, error)

	// GetStaffByPhone returns nil and no error when the phone is unknown.
	GetStaffByPhone(ctx context.Context, role models.StaffRole, phone string) (*models.Staff, error)

	// CreateStaff persists a new staff member in the id space of staff.Role.
	CreateStaff(ctx context.Context, staff *models.Staff) error

	// UpdateStaff replaces the stored member with the same Role and ID.
	UpdateStaff(ctx context.Context, staff *models.Staff) error

	// GetAdmin returns the operator credential.
	GetAdmin(ctx context.Context) (*models.Admin, error)

	// Seed loads data into an empty store. It is a no-op when households exist.
	Seed(ctx context.Context, data Dataset) error

	// Close releases any resources held by the store.
	Close() error
}
