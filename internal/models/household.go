package models

import (
	"errors"
	"strings"
	"time"
)

// PaymentStatus is the billing state of a household for the current period.
type PaymentStatus string

const (
	StatusPaid PaymentStatus = "Paid"
	StatusDue  PaymentStatus = "Due"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	return s == StatusPaid || s == StatusDue
}

// UnassignedRoute is the route label for households not yet placed on a route.
const UnassignedRoute = "Unassigned"

// Household represents a billed residential unit receiving collection service.
type Household struct {
	// ID is assigned by the store and never reused.
	ID int64

	// Name is the account holder's display name.
	Name string

	// Address is the service address.
	Address string

	// Phone doubles as the login identifier and is unique across households.
	Phone string

	// PaymentHistory is ordered newest first. New payments are prepended.
	PaymentHistory []Payment

	// LastCollectionDate is when the most recent payment was captured.
	LastCollectionDate time.Time

	// Status is Paid when PaymentHistory holds an entry for the current period.
	Status PaymentStatus

	// AssignedRoute is a free-text route label such as "Route A".
	AssignedRoute string

	// Version is incremented by the store on every update.
	// An update carrying Version 0 is applied unconditionally.
	Version int64
}

// Payment represents one captured fee.
type Payment struct {
	// ID is derived from the household id and the capture timestamp.
	ID string

	// Date is when the payment was captured.
	Date time.Time

	// Amount is the fee charged for the period.
	Amount float64

	// Month is the period label, e.g. "October 2026".
	Month string
}

// Clone returns a deep copy of h so the caller can mutate it freely.
func (h Household) Clone() Household {
	if h.PaymentHistory != nil {
		history := make([]Payment, len(h.PaymentHistory))
		copy(history, h.PaymentHistory)
		h.PaymentHistory = history
	}
	return h
}

// HasPaymentFor reports whether the history holds an entry for period.
func (h Household) HasPaymentFor(period string) bool {
	for _, p := range h.PaymentHistory {
		if p.Month == period {
			return true
		}
	}
	return false
}

// Validate checks the fields every stored household must carry.
func (h Household) Validate() error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(h.Address) == "":
		return errors.New("address is required")
	case strings.TrimSpace(h.Phone) == "":
		return errors.New("phone is required")
	case !h.Status.Valid():
		return errors.New("status must be Paid or Due")
	}
	return nil
}

// CloneHouseholds deep-copies a household slice.
func CloneHouseholds(in []Household) []Household {
	out := make([]Household, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
