// Package calculator derives billing figures and payment-status transitions
// from household records. Everything here is a pure function of its inputs.
package calculator

import (
	"fmt"
	"time"

	"github.com/mmynk/wasteline/internal/models"
)

// ApplyStatus returns a copy of h moved to status for the period containing now.
//
// Moving to Paid prepends exactly one payment of fee when the period has none
// yet, and stamps LastCollectionDate. Moving to Due drops only the entries for
// the current period. captured reports whether a new payment was added.
func ApplyStatus(h models.Household, status models.PaymentStatus, now time.Time, fee float64) (updated models.Household, captured bool, err error) {
	if !status.Valid() {
		return h, false, fmt.Errorf("unknown payment status %q", status)
	}

	updated = h.Clone()
	period := models.PeriodLabel(now)

	switch status {
	case models.StatusPaid:
		if !h.HasPaymentFor(period) {
			payment := models.Payment{
				ID:     PaymentID(h.ID, now),
				Date:   now,
				Amount: fee,
				Month:  period,
			}
			updated.PaymentHistory = append([]models.Payment{payment}, updated.PaymentHistory...)
			updated.LastCollectionDate = now
			captured = true
		}
	case models.StatusDue:
		kept := make([]models.Payment, 0, len(updated.PaymentHistory))
		for _, p := range updated.PaymentHistory {
			if p.Month != period {
				kept = append(kept, p)
			}
		}
		updated.PaymentHistory = kept
	}

	updated.Status = status
	return updated, captured, nil
}

// PaymentID derives a receipt id from the household id and capture time.
func PaymentID(householdID int64, at time.Time) string {
	return fmt.Sprintf("receipt-%d-%d", householdID, at.UnixNano())
}
