package seed

import (
	"testing"
	"time"

	"github.com/mmynk/wasteline/internal/models"
)

func TestHouseholds(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	households := Households(Options{Households: 2500, Fee: 100, RandomSeed: 1, Now: now})

	if len(households) != 2500 {
		t.Fatalf("expected 2500 households, got %d", len(households))
	}

	known := households[0]
	if known.ID != KnownHouseholdID || known.Phone != KnownHouseholdPhone {
		t.Errorf("first household = %d/%s, want %d/%s", known.ID, known.Phone, KnownHouseholdID, KnownHouseholdPhone)
	}
	if known.Status != models.StatusPaid || len(known.PaymentHistory) != 2 {
		t.Errorf("known household: status %s, %d payments", known.Status, len(known.PaymentHistory))
	}
	if known.PaymentHistory[0].Month != "October 2026" || known.PaymentHistory[1].Month != "September 2026" {
		t.Errorf("unexpected months: %q, %q", known.PaymentHistory[0].Month, known.PaymentHistory[1].Month)
	}

	period := models.PeriodLabel(now)
	phones := make(map[string]bool, len(households))
	for i, h := range households {
		if h.ID != int64(1001+i) {
			t.Fatalf("household %d has id %d", i, h.ID)
		}
		if phones[h.Phone] {
			t.Fatalf("duplicate phone %s", h.Phone)
		}
		phones[h.Phone] = true

		if (h.Status == models.StatusPaid) != h.HasPaymentFor(period) {
			t.Errorf("household %d: status %s disagrees with history", h.ID, h.Status)
		}
	}
}

func TestHouseholdsDeterministic(t *testing.T) {
	opts := Options{Households: 20, Fee: 100, RandomSeed: 42, Now: time.Now()}
	a, b := Households(opts), Households(opts)
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Status != b[i].Status {
			t.Fatalf("household %d differs between runs", a[i].ID)
		}
	}
}

func TestStaffRosters(t *testing.T) {
	for _, d := range Drivers() {
		if err := d.Validate(); err != nil {
			t.Errorf("driver %d invalid: %v", d.ID, err)
		}
	}
	for _, h := range Helpers() {
		if err := h.Validate(); err != nil {
			t.Errorf("helper %d invalid: %v", h.ID, err)
		}
	}
}
