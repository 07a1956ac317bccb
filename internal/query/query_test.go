package query

import (
	"slices"
	"testing"
	"time"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage/seed"
)

func seeded(t *testing.T, n int) []models.Household {
	t.Helper()
	return seed.Households(seed.Options{
		Households: n,
		Fee:        100,
		RandomSeed: 3,
		Now:        time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC),
	})
}

func ids(households []models.Household) []int64 {
	out := make([]int64, len(households))
	for i, h := range households {
		out[i] = h.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	households := seeded(t, 200)

	t.Run("known phone returns exactly one household", func(t *testing.T) {
		got := Filter(households, Criteria{Text: seed.KnownHouseholdPhone})
		if len(got) != 1 || got[0].ID != seed.KnownHouseholdID {
			t.Fatalf("expected only household 1001, got %v", ids(got))
		}
	})

	t.Run("status Due with empty text returns only Due households", func(t *testing.T) {
		got := Filter(households, Criteria{Status: models.StatusDue})
		if len(got) == 0 {
			t.Fatal("expected some Due households")
		}
		for _, h := range got {
			if h.Status != models.StatusDue {
				t.Errorf("household %d has status %s", h.ID, h.Status)
			}
		}
	})

	t.Run("empty criteria returns everything in order", func(t *testing.T) {
		got := Filter(households, Criteria{})
		if !slices.Equal(ids(got), ids(households)) {
			t.Error("empty criteria changed the table")
		}
	})

	t.Run("text match is case-insensitive across fields", func(t *testing.T) {
		table := []models.Household{
			{ID: 1, Name: "Asha Rao", Address: "1 Hill Road", Phone: "111", AssignedRoute: "Route A"},
			{ID: 2, Name: "Bina Das", Address: "2 Lake View", Phone: "222", AssignedRoute: "Route B"},
		}
		tests := []struct {
			text string
			want []int64
		}{
			{"asha", []int64{1}},
			{"LAKE", []int64{2}},
			{"route", []int64{1, 2}},
			{"route b", []int64{2}},
			{"222", []int64{2}},
			{"2", []int64{2}},
			{"nobody", []int64{}},
		}
		for _, tt := range tests {
			got := ids(Filter(table, Criteria{Text: tt.text}))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.text, got, tt.want)
			}
		}
	})

	t.Run("whitespace is matched literally", func(t *testing.T) {
		table := []models.Household{
			{ID: 1, Name: "Asha", Address: "Hill", Phone: "111", AssignedRoute: "A"},
			{ID: 2, Name: "Bina Das", Address: "Lake", Phone: "222", AssignedRoute: "B"},
		}
		tests := []struct {
			text string
			want []int64
		}{
			{"", []int64{1, 2}},
			{" ", []int64{2}},
			{"  ", []int64{}},
			{" das", []int64{2}},
			{"asha ", []int64{}},
		}
		for _, tt := range tests {
			got := ids(Filter(table, Criteria{Text: tt.text}))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.text, got, tt.want)
			}
		}
	})
}

func TestSort(t *testing.T) {
	households := seeded(t, 50)

	t.Run("toggling id yields the exact reverse", func(t *testing.T) {
		state := DefaultSort()
		asc := Sort(households, state)
		if !slices.IsSorted(ids(asc)) {
			t.Fatal("default sort is not ascending by id")
		}

		state = state.Toggle(KeyID)
		desc := Sort(households, state)
		reversed := ids(asc)
		slices.Reverse(reversed)
		if !slices.Equal(ids(desc), reversed) {
			t.Error("descending sort is not the reverse of ascending")
		}
	})

	t.Run("sort is stable on ties", func(t *testing.T) {
		table := []models.Household{
			{ID: 3, Status: models.StatusDue},
			{ID: 1, Status: models.StatusPaid},
			{ID: 2, Status: models.StatusDue},
		}
		got := ids(Sort(table, SortState{Key: KeyStatus, Direction: Ascending}))
		if !slices.Equal(got, []int64{3, 2, 1}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := ids(households)
		Apply(households, Criteria{Status: models.StatusPaid}, SortState{Key: KeyName, Direction: Descending})
		if !slices.Equal(ids(households), before) {
			t.Error("Apply reordered its input")
		}
	})
}

func TestToggle(t *testing.T) {
	s := DefaultSort()
	s = s.Toggle(KeyName)
	if s != (SortState{Key: KeyName, Direction: Ascending}) {
		t.Errorf("new key should start ascending, got %+v", s)
	}
	s = s.Toggle(KeyName)
	if s.Direction != Descending {
		t.Errorf("same key should flip, got %+v", s)
	}
	s = s.Toggle(KeyName)
	if s.Direction != Ascending {
		t.Errorf("second flip should return to ascending, got %+v", s)
	}
}

func TestOnRoute(t *testing.T) {
	table := []models.Household{
		{ID: 5, AssignedRoute: "Route B"},
		{ID: 2, AssignedRoute: "Route A"},
		{ID: 9, AssignedRoute: "Route B"},
		{ID: 4, AssignedRoute: models.UnassignedRoute},
	}
	got := ids(OnRoute(table, "Route B"))
	if !slices.Equal(got, []int64{5, 9}) {
		t.Errorf("OnRoute = %v", got)
	}
	if len(OnRoute(table, "Route Z")) != 0 {
		t.Error("unknown route should be empty")
	}
}
