// Package repository implements the operations UI collaborators call:
// fetches, inserts, full-record updates, household registration, payment
// status changes and reminder batches. Every call first waits on the
// injected latency simulator, then goes to the store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/wasteline/internal/calculator"
	"github.com/mmynk/wasteline/internal/latency"
	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/notify"
	"github.com/mmynk/wasteline/internal/storage"
)

var (
	// ErrNotFound is returned when an update or lookup id does not exist.
	ErrNotFound = storage.ErrNotFound

	// ErrVersionConflict is returned when an update carries a stale version.
	ErrVersionConflict = storage.ErrVersionConflict

	// ErrConflict is returned when registering a phone that is already in use.
	ErrConflict = errors.New("phone number already registered")

	// ErrInvalid is returned for records missing required fields.
	ErrInvalid = errors.New("invalid record")
)

// Options configure a Repository. Zero values fall back to defaults.
type Options struct {
	// Latency delays every call. Defaults to latency.None.
	Latency latency.Simulator

	// Notifier delivers reminders and receipts. Defaults to a LogNotifier.
	Notifier notify.Notifier

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// HouseholdFee is the amount recorded for a captured payment.
	HouseholdFee float64
}

// Repository layers the collaborator-facing operations over a storage.Store.
type Repository struct {
	store    storage.Store
	latency  latency.Simulator
	notifier notify.Notifier
	now      func() time.Time
	fee      float64

	// registerMu serialises the phone check and insert of RegisterHousehold.
	registerMu sync.Mutex
}

// New creates a Repository over store.
func New(store storage.Store, opts Options) *Repository {
	r := &Repository{
		store:    store,
		latency:  opts.Latency,
		notifier: opts.Notifier,
		now:      opts.Clock,
		fee:      opts.HouseholdFee,
	}
	if r.latency == nil {
		r.latency = latency.None{}
	}
	if r.notifier == nil {
		r.notifier = notify.NewLogNotifier(nil)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// CurrentPeriod returns the label of the billing period in progress.
func (r *Repository) CurrentPeriod() string {
	return models.PeriodLabel(r.now())
}

// FetchAdmin returns the operator credential.
func (r *Repository) FetchAdmin(ctx context.Context) (*models.Admin, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.store.GetAdmin(ctx)
}

// NewHousehold is the caller-supplied part of a household record.
type NewHousehold struct {
	Name          string
	Address       string
	Phone         string
	AssignedRoute string
}

func (n NewHousehold) normalize() NewHousehold {
	n.Name = strings.TrimSpace(n.Name)
	n.Address = strings.TrimSpace(n.Address)
	n.Phone = strings.TrimSpace(n.Phone)
	n.AssignedRoute = strings.TrimSpace(n.AssignedRoute)
	if n.AssignedRoute == "" {
		n.AssignedRoute = models.UnassignedRoute
	}
	return n
}

// FetchHouseholds returns a snapshot of every household in insertion order.
func (r *Repository) FetchHouseholds(ctx context.Context) ([]models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.store.ListHouseholds(ctx)
}

// FetchHouseholdByID returns ErrNotFound when the id is unknown.
func (r *Repository) FetchHouseholdByID(ctx context.Context, id int64) (*models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.store.GetHouseholdByID(ctx, id)
}

// FetchHouseholdByPhone returns nil, nil when no household has the phone.
func (r *Repository) FetchHouseholdByPhone(ctx context.Context, phone string) (*models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.store.GetHouseholdByPhone(ctx, strings.TrimSpace(phone))
}

// InsertHousehold creates a Due household with an empty payment history.
func (r *Repository) InsertHousehold(ctx context.Context, in NewHousehold) (*models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return r.insertHousehold(ctx, in)
}

func (r *Repository) insertHousehold(ctx context.Context, in NewHousehold) (*models.Household, error) {
	in = in.normalize()
	h := &models.Household{
		Name:               in.Name,
		Address:            in.Address,
		Phone:              in.Phone,
		PaymentHistory:     []models.Payment{},
		LastCollectionDate: r.now(),
		Status:             models.StatusDue,
		AssignedRoute:      in.AssignedRoute,
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := r.store.CreateHousehold(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to insert household: %w", err)
	}
	slog.Info("Household created", "household_id", h.ID, "route", h.AssignedRoute)
	return h, nil
}

// UpdateHousehold replaces the stored household with the same ID and echoes
// it back. The collection is unchanged when the id is unknown.
func (r *Repository) UpdateHousehold(ctx context.Context, h models.Household) (*models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	h = h.Clone()
	if err := r.store.UpdateHousehold(ctx, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// RegisterHousehold is household self-registration: InsertHousehold guarded
// by a phone uniqueness check.
func (r *Repository) RegisterHousehold(ctx context.Context, in NewHousehold) (*models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	in = in.normalize()

	r.registerMu.Lock()
	defer r.registerMu.Unlock()

	existing, err := r.store.GetHouseholdByPhone(ctx, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrConflict, in.Phone)
	}
	return r.insertHousehold(ctx, in)
}

// SetPaymentStatus moves a household to status for the current period.
// A fresh Paid capture sends a receipt; delivery failures are only logged.
func (r *Repository) SetPaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) (*models.Household, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}

	current, err := r.store.GetHouseholdByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	updated, captured, err := calculator.ApplyStatus(*current, status, now, r.fee)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := r.store.UpdateHousehold(ctx, &updated); err != nil {
		return nil, err
	}

	if captured {
		receipt := notify.Message{
			Kind:        notify.KindReceipt,
			Phone:       updated.Phone,
			Name:        updated.Name,
			HouseholdID: updated.ID,
			Period:      updated.PaymentHistory[0].Month,
			Amount:      updated.PaymentHistory[0].Amount,
			Body: fmt.Sprintf("Dear %s, we received your payment of Rs %.0f for %s. Receipt %s.",
				updated.Name, updated.PaymentHistory[0].Amount, updated.PaymentHistory[0].Month, updated.PaymentHistory[0].ID),
		}
		if err := r.notifier.Notify(ctx, receipt); err != nil {
			slog.Warn("Receipt delivery failed", "household_id", updated.ID, "error", err)
		}
	}
	return &updated, nil
}

// SendReminders notifies each Due household and returns how many reminders
// were delivered. Households that are not Due are skipped. A failed recipient
// lowers the count but never fails the batch.
func (r *Repository) SendReminders(ctx context.Context, households []models.Household) (int, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return 0, err
	}

	period := r.CurrentPeriod()
	msgs := make([]notify.Message, 0, len(households))
	for _, h := range households {
		if h.Status != models.StatusDue {
			continue
		}
		msgs = append(msgs, notify.Message{
			Kind:        notify.KindReminder,
			Phone:       h.Phone,
			Name:        h.Name,
			HouseholdID: h.ID,
			Period:      period,
			Amount:      r.fee,
			Body: fmt.Sprintf("Dear %s, your payment of Rs %.0f for %s is due. Please contact your collection agent.",
				h.Name, r.fee, period),
		})
	}

	sent := notify.Batch(ctx, r.notifier, msgs)
	slog.Info("Reminders sent", "requested", len(msgs), "sent", sent)
	return sent, nil
}
