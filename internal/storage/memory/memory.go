// Package memory provides an in-memory implementation of the storage.Store
// interface. State is volatile and reset on process restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// sequence hands out strictly increasing ids.
type sequence struct {
	last atomic.Int64
}

func newSequence(first int64) *sequence {
	s := &sequence{}
	s.last.Store(first - 1)
	return s
}

func (s *sequence) next() int64 { return s.last.Add(1) }

// observe advances the sequence so the next id is above id.
func (s *sequence) observe(id int64) {
	for {
		cur := s.last.Load()
		if id <= cur || s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Store keeps households, drivers and helpers in insertion-ordered slices.
type Store struct {
	mu         sync.RWMutex
	households []models.Household
	staff      map[models.StaffRole][]models.Staff
	admin      *models.Admin

	householdIDs *sequence
	staffIDs     map[models.StaffRole]*sequence
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		staff: map[models.StaffRole][]models.Staff{
			models.RoleDriver: nil,
			models.RoleHelper: nil,
		},
		householdIDs: newSequence(storage.FirstHouseholdID),
		staffIDs: map[models.StaffRole]*sequence{
			models.RoleDriver: newSequence(storage.FirstStaffID),
			models.RoleHelper: newSequence(storage.FirstStaffID),
		},
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Seed loads data into an empty store, keeping the ids it carries.
// The admin credential is replaced regardless.
func (s *Store) Seed(_ context.Context, data storage.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin := data.Admin
	s.admin = &admin

	if len(s.households) > 0 {
		return nil
	}
	for _, h := range data.Households {
		h = h.Clone()
		h.Version = 1
		s.households = append(s.households, h)
		s.householdIDs.observe(h.ID)
	}
	for role, members := range map[models.StaffRole][]models.Staff{
		models.RoleDriver: data.Drivers,
		models.RoleHelper: data.Helpers,
	} {
		for _, m := range members {
			m.Role = role
			m.Version = 1
			s.staff[role] = append(s.staff[role], m)
			s.staffIDs[role].observe(m.ID)
		}
	}
	return nil
}

// ListHouseholds returns copies of all households.
func (s *Store) ListHouseholds(_ context.Context) ([]models.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneHouseholds(s.households), nil
}

// GetHouseholdByID retrieves a household by ID.
func (s *Store) GetHouseholdByID(_ context.Context, id int64) (*models.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.householdIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("household %d: %w", id, storage.ErrNotFound)
	}
	h := s.households[i].Clone()
	return &h, nil
}

// GetHouseholdByPhone scans for a household with the given phone.
func (s *Store) GetHouseholdByPhone(_ context.Context, phone string) (*models.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.households {
		if s.households[i].Phone == phone {
			h := s.households[i].Clone()
			return &h, nil
		}
	}
	return nil, nil
}

// CreateHousehold appends a household under the next id.
func (s *Store) CreateHousehold(_ context.Context, household *models.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	household.ID = s.householdIDs.next()
	household.Version = 1
	s.households = append(s.households, household.Clone())
	return nil
}

// UpdateHousehold replaces the household with the same ID.
func (s *Store) UpdateHousehold(_ context.Context, household *models.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.householdIndex(household.ID)
	if i < 0 {
		return fmt.Errorf("household %d: %w", household.ID, storage.ErrNotFound)
	}
	current := s.households[i].Version
	if household.Version != 0 && household.Version != current {
		return fmt.Errorf("household %d at version %d, got %d: %w",
			household.ID, current, household.Version, storage.ErrVersionConflict)
	}
	household.Version = current + 1
	s.households[i] = household.Clone()
	return nil
}

// ListStaff returns copies of the role's collection.
func (s *Store) ListStaff(_ context.Context, role models.StaffRole) ([]models.Staff, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown staff role %q", role)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Staff, len(s.staff[role]))
	copy(out, s.staff[role])
	return out, nil
}

// GetStaffByPhone scans the role's collection for the phone.
func (s *Store) GetStaffByPhone(_ context.Context, role models.StaffRole, phone string) (*models.Staff, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown staff role %q", role)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.staff[role] {
		if m.Phone == phone {
			return &m, nil
		}
	}
	return nil, nil
}

// CreateStaff appends a member under the next id of its role.
func (s *Store) CreateStaff(_ context.Context, staff *models.Staff) error {
	if !staff.Role.Valid() {
		return fmt.Errorf("unknown staff role %q", staff.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staff.ID = s.staffIDs[staff.Role].next()
	staff.Version = 1
	s.staff[staff.Role] = append(s.staff[staff.Role], *staff)
	return nil
}

// UpdateStaff replaces the member with the same Role and ID.
func (s *Store) UpdateStaff(_ context.Context, staff *models.Staff) error {
	if !staff.Role.Valid() {
		return fmt.Errorf("unknown staff role %q", staff.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.staff[staff.Role]
	for i := range members {
		if members[i].ID != staff.ID {
			continue
		}
		current := members[i].Version
		if staff.Version != 0 && staff.Version != current {
			return fmt.Errorf("%s %d at version %d, got %d: %w",
				staff.Role, staff.ID, current, staff.Version, storage.ErrVersionConflict)
		}
		staff.Version = current + 1
		members[i] = *staff
		return nil
	}
	return fmt.Errorf("%s %d: %w", staff.Role, staff.ID, storage.ErrNotFound)
}

// GetAdmin returns the seeded admin credential.
func (s *Store) GetAdmin(_ context.Context) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.admin == nil {
		return nil, fmt.Errorf("admin: %w", storage.ErrNotFound)
	}
	admin := *s.admin
	return &admin, nil
}

func (s *Store) householdIndex(id int64) int {
	for i := range s.households {
		if s.households[i].ID == id {
			return i
		}
	}
	return -1
}
