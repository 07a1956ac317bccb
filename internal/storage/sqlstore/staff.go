package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage"
)

const staffColumns = "id, name, phone, salary, assigned_route, vehicle_details, version"

// staffTables maps each role to its own table so ids stay role-scoped.
var staffTables = map[models.StaffRole]string{
	models.RoleDriver: "drivers",
	models.RoleHelper: "helpers",
}

func staffTable(role models.StaffRole) (string, error) {
	table, ok := staffTables[role]
	if !ok {
		return "", fmt.Errorf("unknown staff role %q", role)
	}
	return table, nil
}

// ListStaff retrieves the role's collection ordered by id.
func (s *Store) ListStaff(ctx context.Context, role models.StaffRole) ([]models.Staff, error) {
	table, err := staffTable(role)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+staffColumns+" FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var members []models.Staff
	for rows.Next() {
		m, err := scanStaff(rows, role)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return members, nil
}

// GetStaffByPhone retrieves a member by phone, or nil when absent.
func (s *Store) GetStaffByPhone(ctx context.Context, role models.StaffRole, phone string) (*models.Staff, error) {
	table, err := staffTable(role)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		s.bind("SELECT "+staffColumns+" FROM "+table+" WHERE phone = ? ORDER BY id LIMIT 1"), phone,
	)
	m, err := scanStaff(row, role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateStaff inserts a member into its role's table, populating ID.
func (s *Store) CreateStaff(ctx context.Context, staff *models.Staff) error {
	table, err := staffTable(staff.Role)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx,
		s.bind("INSERT INTO "+table+` (name, phone, salary, assigned_route, vehicle_details, version)
		 VALUES (?, ?, ?, ?, ?, 1) RETURNING id`),
		staff.Name, staff.Phone, staff.Salary, staff.AssignedRoute, staff.VehicleDetails,
	).Scan(&staff.ID)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	staff.Version = 1
	return nil
}

// UpdateStaff replaces the member with the same Role and ID.
func (s *Store) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	table, err := staffTable(staff.Role)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	next, err := s.versionedUpdate(ctx, tx, table,
		"UPDATE "+table+` SET name = ?, phone = ?, salary = ?, assigned_route = ?, vehicle_details = ?, version = version + 1
		 WHERE id = ?`,
		staff.ID, staff.Version,
		staff.Name, staff.Phone, staff.Salary, staff.AssignedRoute, staff.VehicleDetails,
	)
	if err != nil {
		return fmt.Errorf("%s %d: %w", staff.Role, staff.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	staff.Version = next
	return nil
}

func scanStaff(row scanner, role models.StaffRole) (*models.Staff, error) {
	m := &models.Staff{Role: role}
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Salary, &m.AssignedRoute, &m.VehicleDetails, &m.Version)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan staff: %w", err)
	}
	return m, nil
}
