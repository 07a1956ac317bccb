package sqlstore

import (
	"context"
	"fmt"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage"
)

// Seed inserts the dataset with its explicit ids when no households exist.
// The admin credential is written regardless.
func (s *Store) Seed(ctx context.Context, data storage.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The admin credential follows configuration on every start.
	if data.Admin.Username != "" {
		if _, err := tx.ExecContext(ctx, s.bind("DELETE FROM admins WHERE username <> ?"), data.Admin.Username); err != nil {
			return fmt.Errorf("failed to clear admins: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			s.bind(`INSERT INTO admins (username, password_hash) VALUES (?, ?)
			 ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`),
			data.Admin.Username, data.Admin.PasswordHash,
		)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	var count int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM households").Scan(&count); err != nil {
		return fmt.Errorf("failed to count households: %w", err)
	}
	if count > 0 {
		return tx.Commit()
	}

	for i := range data.Households {
		h := &data.Households[i]
		_, err := tx.ExecContext(ctx,
			s.bind(`INSERT INTO households (id, name, address, phone, last_collection_at, status, assigned_route, version)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`),
			h.ID, h.Name, h.Address, h.Phone, toMillis(h.LastCollectionDate), string(h.Status), h.AssignedRoute,
		)
		if err != nil {
			return fmt.Errorf("failed to seed household %d: %w", h.ID, err)
		}
		if err := s.insertPayments(ctx, tx, h); err != nil {
			return err
		}
	}

	for role, members := range map[models.StaffRole][]models.Staff{
		models.RoleDriver: data.Drivers,
		models.RoleHelper: data.Helpers,
	} {
		table, err := staffTable(role)
		if err != nil {
			return err
		}
		for _, m := range members {
			_, err := tx.ExecContext(ctx,
				s.bind("INSERT INTO "+table+` (id, name, phone, salary, assigned_route, vehicle_details, version)
				 VALUES (?, ?, ?, ?, ?, ?, 1)`),
				m.ID, m.Name, m.Phone, m.Salary, m.AssignedRoute, m.VehicleDetails,
			)
			if err != nil {
				return fmt.Errorf("failed to seed %s %d: %w", table, m.ID, err)
			}
		}
	}

	for _, stmt := range s.dialect.AfterSeed {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute %q: %w", firstLine(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
