package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage"
)

const householdColumns = "id, name, address, phone, last_collection_at, status, assigned_route, version"

// ListHouseholds retrieves every household with its payment history.
func (s *Store) ListHouseholds(ctx context.Context) ([]models.Household, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+householdColumns+" FROM households ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var households []models.Household
	index := make(map[int64]int)
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(households)
		households = append(households, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate households: %w", err)
	}

	payRows, err := s.db.QueryContext(ctx,
		"SELECT household_id, id, paid_at, amount, month FROM payments ORDER BY household_id, position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var householdID int64
		p, err := scanPayment(payRows, &householdID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[householdID]; ok {
			households[i].PaymentHistory = append(households[i].PaymentHistory, p)
		}
	}
	if err := payRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return households, nil
}

// GetHouseholdByID retrieves a household by ID.
func (s *Store) GetHouseholdByID(ctx context.Context, id int64) (*models.Household, error) {
	row := s.db.QueryRowContext(ctx,
		s.bind("SELECT "+householdColumns+" FROM households WHERE id = ?"), id,
	)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("household %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadPayments(ctx, s.db, h); err != nil {
		return nil, err
	}
	return h, nil
}

// GetHouseholdByPhone retrieves a household by phone, or nil when absent.
func (s *Store) GetHouseholdByPhone(ctx context.Context, phone string) (*models.Household, error) {
	row := s.db.QueryRowContext(ctx,
		s.bind("SELECT "+householdColumns+" FROM households WHERE phone = ? ORDER BY id LIMIT 1"), phone,
	)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil // Household not found
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadPayments(ctx, s.db, h); err != nil {
		return nil, err
	}
	return h, nil
}

// CreateHousehold inserts a household and its payments, populating ID.
func (s *Store) CreateHousehold(ctx context.Context, household *models.Household) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		s.bind(`INSERT INTO households (name, address, phone, last_collection_at, status, assigned_route, version)
		 VALUES (?, ?, ?, ?, ?, ?, 1) RETURNING id`),
		household.Name, household.Address, household.Phone,
		toMillis(household.LastCollectionDate), string(household.Status), household.AssignedRoute,
	).Scan(&household.ID)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	household.Version = 1

	if err := s.insertPayments(ctx, tx, household); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateHousehold replaces a household and its payment history.
func (s *Store) UpdateHousehold(ctx context.Context, household *models.Household) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	next, err := s.versionedUpdate(ctx, tx, "households",
		`UPDATE households
		 SET name = ?, address = ?, phone = ?, last_collection_at = ?, status = ?, assigned_route = ?, version = version + 1
		 WHERE id = ?`,
		household.ID, household.Version,
		household.Name, household.Address, household.Phone, toMillis(household.LastCollectionDate),
		string(household.Status), household.AssignedRoute,
	)
	if err != nil {
		return fmt.Errorf("household %d: %w", household.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.bind("DELETE FROM payments WHERE household_id = ?"), household.ID); err != nil {
		return fmt.Errorf("failed to clear payments: %w", err)
	}
	if err := s.insertPayments(ctx, tx, household); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	household.Version = next
	return nil
}

func (s *Store) insertPayments(ctx context.Context, q queryer, household *models.Household) error {
	for i, p := range household.PaymentHistory {
		_, err := q.ExecContext(ctx,
			s.bind("INSERT INTO payments (id, household_id, position, paid_at, amount, month) VALUES (?, ?, ?, ?, ?, ?)"),
			p.ID, household.ID, i, toMillis(p.Date), p.Amount, p.Month,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) loadPayments(ctx context.Context, q queryer, household *models.Household) error {
	rows, err := q.QueryContext(ctx,
		s.bind("SELECT household_id, id, paid_at, amount, month FROM payments WHERE household_id = ? ORDER BY position"),
		household.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var householdID int64
		p, err := scanPayment(rows, &householdID)
		if err != nil {
			return err
		}
		household.PaymentHistory = append(household.PaymentHistory, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payments: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHousehold(row scanner) (*models.Household, error) {
	h := &models.Household{}
	var lastCollection int64
	var status string
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &lastCollection, &status, &h.AssignedRoute, &h.Version)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan household: %w", err)
	}
	h.LastCollectionDate = fromMillis(lastCollection)
	h.Status = models.PaymentStatus(status)
	return h, nil
}

func scanPayment(row scanner, householdID *int64) (models.Payment, error) {
	var p models.Payment
	var paidAt int64
	if err := row.Scan(householdID, &p.ID, &paidAt, &p.Amount, &p.Month); err != nil {
		return p, fmt.Errorf("failed to scan payment: %w", err)
	}
	p.Date = fromMillis(paidAt)
	return p, nil
}
