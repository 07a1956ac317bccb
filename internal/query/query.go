// Package query filters and sorts household tables the way the admin and
// driver dashboards present them.
package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/mmynk/wasteline/internal/models"
)

// SortKey names a sortable household column.
type SortKey string

const (
	KeyID            SortKey = "id"
	KeyName          SortKey = "name"
	KeyAddress       SortKey = "address"
	KeyPhone         SortKey = "phone"
	KeyAssignedRoute SortKey = "assignedRoute"
	KeyStatus        SortKey = "status"
)

// Valid reports whether k is a known column.
func (k SortKey) Valid() bool {
	switch k {
	case KeyID, KeyName, KeyAddress, KeyPhone, KeyAssignedRoute, KeyStatus:
		return true
	}
	return false
}

// Direction is the sort order of a column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active sort column and its direction.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort orders by id, lowest first.
func DefaultSort() SortState {
	return SortState{Key: KeyID, Direction: Ascending}
}

// Toggle returns the state after a click on key's column header: the same
// key flips direction, any other key starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// Criteria narrows a household table. An empty Status means all statuses.
// Text is matched as typed; only the empty string matches everything.
type Criteria struct {
	Text   string
	Status models.PaymentStatus
}

// Filter returns the households matching c, preserving order.
func Filter(households []models.Household, c Criteria) []models.Household {
	needle := strings.ToLower(c.Text)
	out := make([]models.Household, 0, len(households))
	for _, h := range households {
		if c.Status != "" && h.Status != c.Status {
			continue
		}
		if needle != "" && !matches(h, needle) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func matches(h models.Household, needle string) bool {
	for _, field := range []string{h.Name, h.Phone, h.Address, strconv.FormatInt(h.ID, 10), h.AssignedRoute} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Sort returns a copy of households ordered by s. Ties keep their input order.
// An unknown key falls back to id.
func Sort(households []models.Household, s SortState) []models.Household {
	out := slices.Clone(households)
	compare := comparator(s.Key)
	if s.Direction == Descending {
		slices.SortStableFunc(out, func(a, b models.Household) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

func comparator(key SortKey) func(a, b models.Household) int {
	switch key {
	case KeyName:
		return func(a, b models.Household) int { return strings.Compare(a.Name, b.Name) }
	case KeyAddress:
		return func(a, b models.Household) int { return strings.Compare(a.Address, b.Address) }
	case KeyPhone:
		return func(a, b models.Household) int { return strings.Compare(a.Phone, b.Phone) }
	case KeyAssignedRoute:
		return func(a, b models.Household) int { return strings.Compare(a.AssignedRoute, b.AssignedRoute) }
	case KeyStatus:
		return func(a, b models.Household) int { return strings.Compare(string(a.Status), string(b.Status)) }
	default:
		return func(a, b models.Household) int { return cmp.Compare(a.ID, b.ID) }
	}
}

// Apply filters then sorts. The input slice is never modified.
func Apply(households []models.Household, c Criteria, s SortState) []models.Household {
	return Sort(Filter(households, c), s)
}

// OnRoute returns the households assigned to route, in id order.
func OnRoute(households []models.Household, route string) []models.Household {
	out := make([]models.Household, 0)
	for _, h := range households {
		if h.AssignedRoute == route {
			out = append(out, h)
		}
	}
	return Sort(out, DefaultSort())
}
