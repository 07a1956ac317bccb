package calculator

import "github.com/mmynk/wasteline/internal/models"

// Rates are the process-wide billing constants.
type Rates struct {
	// HouseholdFee is charged to every household once per period.
	HouseholdFee float64

	// CommercialIncome is a fixed monthly income on top of household fees.
	CommercialIncome float64

	// TotalSalaries is the monthly payroll used as the expense figure.
	TotalSalaries float64
}

// Summary is the admin dashboard's financial overview.
type Summary struct {
	Households int
	PaidCount  int
	DueCount   int

	HouseholdCollections float64
	TotalCollections     float64 // household collections + commercial income
	PendingAmount        float64
	TotalExpenses        float64
	NetProfit            float64

	// PaidPercent is PaidCount as a share of Households, 0 when empty.
	PaidPercent float64
}

// Summarize derives the financial summary from the household collection.
// It is recomputed from scratch on every call.
func Summarize(households []models.Household, rates Rates) Summary {
	paid := 0
	for _, h := range households {
		if h.Status == models.StatusPaid {
			paid++
		}
	}
	due := len(households) - paid

	s := Summary{
		Households:           len(households),
		PaidCount:            paid,
		DueCount:             due,
		HouseholdCollections: float64(paid) * rates.HouseholdFee,
		PendingAmount:        float64(due) * rates.HouseholdFee,
		TotalExpenses:        rates.TotalSalaries,
	}
	s.TotalCollections = s.HouseholdCollections + rates.CommercialIncome
	s.NetProfit = s.TotalCollections - s.TotalExpenses
	if len(households) > 0 {
		s.PaidPercent = float64(paid) / float64(len(households)) * 100
	}
	return s
}

// SumSalaries totals the salaries of the given staff collections.
func SumSalaries(collections ...[]models.Staff) float64 {
	var total float64
	for _, members := range collections {
		for _, m := range members {
			total += m.Salary
		}
	}
	return total
}
