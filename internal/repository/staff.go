package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/wasteline/internal/models"
)

// FetchStaff returns a snapshot of the role's collection.
func (r *Repository) FetchStaff(ctx context.Context, role models.StaffRole) ([]models.Staff, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown staff role %q", ErrInvalid, role)
	}
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.store.ListStaff(ctx, role)
}

// FetchDrivers returns a snapshot of all drivers.
func (r *Repository) FetchDrivers(ctx context.Context) ([]models.Staff, error) {
	return r.FetchStaff(ctx, models.RoleDriver)
}

// FetchHelpers returns a snapshot of all helpers.
func (r *Repository) FetchHelpers(ctx context.Context) ([]models.Staff, error) {
	return r.FetchStaff(ctx, models.RoleHelper)
}

// FetchDriverByPhone returns nil, nil when no driver has the phone.
func (r *Repository) FetchDriverByPhone(ctx context.Context, phone string) (*models.Staff, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.store.GetStaffByPhone(ctx, models.RoleDriver, strings.TrimSpace(phone))
}

// InsertStaff adds a member to the collection named by role.
func (r *Repository) InsertStaff(ctx context.Context, role models.StaffRole, s models.Staff) (*models.Staff, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	s, err := tagStaff(role, s)
	if err != nil {
		return nil, err
	}
	if err := r.store.CreateStaff(ctx, &s); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", role, err)
	}
	return &s, nil
}

// UpdateStaff replaces the member with the same ID in the role's collection.
func (r *Repository) UpdateStaff(ctx context.Context, role models.StaffRole, s models.Staff) (*models.Staff, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	s, err := tagStaff(role, s)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpdateStaff(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// tagStaff applies the role tag and validates the variant's shape.
func tagStaff(role models.StaffRole, s models.Staff) (models.Staff, error) {
	if s.Role != "" && s.Role != role {
		return s, fmt.Errorf("%w: record is tagged %s, not %s", ErrInvalid, s.Role, role)
	}
	s.Role = role
	s.Name = strings.TrimSpace(s.Name)
	s.Phone = strings.TrimSpace(s.Phone)
	s.VehicleDetails = strings.TrimSpace(s.VehicleDetails)
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s, nil
}
