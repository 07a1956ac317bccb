// Package seed builds the start-up dataset: synthetic households plus the
// static driver, helper and admin records.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage"
)

// Known household used by demos and tests.
const (
	KnownHouseholdID    int64 = 1001
	KnownHouseholdPhone       = "9876541001"
)

var (
	firstNames = []string{"Aarav", "Vivaan", "Aditya", "Vihaan", "Arjun", "Sai", "Reyansh", "Ayaan", "Krishna", "Ishaan",
		"Saanvi", "Aadhya", "Kiara", "Diya", "Pari", "Ananya", "Riya", "Aarohi", "Amaira", "Myra"}
	surnames  = []string{"Patel", "Sharma", "Singh", "Kumar", "Gupta", "Verma", "Yadav", "Shah", "Mehta", "Joshi"}
	buildings = []string{"Rose Villa", "Sunshine Apartments", "Greenwood Park", "Riverdale Complex", "Hilltop View",
		"Ocean Breeze", "Orchid Tower", "Maple Street", "Pinecrest Manor", "Cedar Avenue"}
)

// Options control the synthetic household generator.
type Options struct {
	Households int
	Fee        float64
	RandomSeed uint64
	Now        time.Time
}

// Dataset builds the full start-up dataset. Admin is supplied by the caller
// so the password hash never lives in source.
func Dataset(opts Options, admin models.Admin) storage.Dataset {
	return storage.Dataset{
		Households: Households(opts),
		Drivers:    Drivers(),
		Helpers:    Helpers(),
		Admin:      admin,
	}
}

// Households generates opts.Households records with ids from 1001.
// About 70% are Paid for the current period. The first record is always the
// known household.
func Households(opts Options) []models.Household {
	if opts.Households <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(opts.RandomSeed, opts.RandomSeed^0x9e3779b97f4a7c15))
	period := models.PeriodLabel(opts.Now)

	out := make([]models.Household, 0, opts.Households)
	for i := 1; i <= opts.Households; i++ {
		id := storage.FirstHouseholdID - 1 + int64(i)
		if id == KnownHouseholdID {
			out = append(out, knownHousehold(opts))
			continue
		}

		h := models.Household{
			ID:                 id,
			Name:               fmt.Sprintf("%s %s", pick(rng, firstNames), pick(rng, surnames)),
			Address:            fmt.Sprintf("%d %s", rng.IntN(100)+1, pick(rng, buildings)),
			Phone:              fmt.Sprintf("987654%04d", id),
			LastCollectionDate: opts.Now.AddDate(0, 0, -rng.IntN(5)),
			Status:             models.StatusDue,
			AssignedRoute:      "Route A",
		}
		if rng.Float64() > 0.5 {
			h.AssignedRoute = "Route B"
		}
		if rng.Float64() > 0.3 {
			paidAt := time.Date(opts.Now.Year(), opts.Now.Month(), rng.IntN(15)+1, 10, 0, 0, 0, opts.Now.Location())
			h.Status = models.StatusPaid
			h.PaymentHistory = []models.Payment{{
				ID:     fmt.Sprintf("receipt-%d-1", id),
				Date:   paidAt,
				Amount: opts.Fee,
				Month:  period,
			}}
		}
		out = append(out, h)
	}
	return out
}

// knownHousehold is Paid for the current period with one earlier payment.
func knownHousehold(opts Options) models.Household {
	current := time.Date(opts.Now.Year(), opts.Now.Month(), 5, 10, 0, 0, 0, opts.Now.Location())
	previous := current.AddDate(0, -1, -1)
	return models.Household{
		ID:      KnownHouseholdID,
		Name:    "Test User",
		Address: "123 Test Street",
		Phone:   KnownHouseholdPhone,
		PaymentHistory: []models.Payment{
			{ID: fmt.Sprintf("receipt-%d-1", KnownHouseholdID), Date: current, Amount: opts.Fee, Month: models.PeriodLabel(current)},
			{ID: fmt.Sprintf("receipt-%d-2", KnownHouseholdID), Date: previous, Amount: opts.Fee, Month: models.PeriodLabel(previous)},
		},
		LastCollectionDate: current,
		Status:             models.StatusPaid,
		AssignedRoute:      "Route A",
	}
}

// Drivers returns the static driver roster.
func Drivers() []models.Staff {
	return []models.Staff{
		{ID: 1, Role: models.RoleDriver, Name: "Ramesh Kumar", Phone: "6006540930", Salary: 10000, AssignedRoute: "Route A", VehicleDetails: "MH-12 AB-1234"},
		{ID: 2, Role: models.RoleDriver, Name: "Suresh Patel", Phone: "9988776656", Salary: 10000, AssignedRoute: "Route B", VehicleDetails: "MH-14 CD-5678"},
	}
}

// Helpers returns the static helper roster.
func Helpers() []models.Staff {
	return []models.Staff{
		{ID: 1, Role: models.RoleHelper, Name: "Gopal Verma", Phone: "8877665544", Salary: 7000, AssignedRoute: "Route A"},
		{ID: 2, Role: models.RoleHelper, Name: "Manoj Singh", Phone: "8877665545", Salary: 7000, AssignedRoute: "Route B"},
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}
