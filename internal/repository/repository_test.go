package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/notify"
	"github.com/mmynk/wasteline/internal/storage/memory"
	"github.com/mmynk/wasteline/internal/storage/seed"
)

var testNow = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

// recordingNotifier records messages and fails for phones in failFor.
type recordingNotifier struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[msg.Phone] {
		return errors.New("undeliverable")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func setupRepository(t *testing.T, households int) (*Repository, *recordingNotifier) {
	t.Helper()

	store := memory.New()
	data := seed.Dataset(seed.Options{Households: households, Fee: 100, RandomSeed: 11, Now: testNow},
		models.Admin{Username: "admin", PasswordHash: "hash"})
	if err := store.Seed(context.Background(), data); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	notifier := &recordingNotifier{failFor: map[string]bool{}}
	repo := New(store, Options{
		Notifier:     notifier,
		Clock:        func() time.Time { return testNow },
		HouseholdFee: 100,
	})
	return repo, notifier
}

func TestRegisterHouseholdScenario(t *testing.T) {
	repo, _ := setupRepository(t, 10)
	ctx := context.Background()

	known, err := repo.FetchHouseholdByPhone(ctx, seed.KnownHouseholdPhone)
	if err != nil || known == nil {
		t.Fatalf("known household missing: %v", err)
	}
	if known.ID != 1001 || known.Status != models.StatusPaid || len(known.PaymentHistory) != 2 {
		t.Fatalf("unexpected known household: %+v", known)
	}

	created, err := repo.RegisterHousehold(ctx, NewHousehold{
		Name:          "Meera Iyer",
		Address:       "14 Lotus Lane",
		Phone:         "9000000001",
		AssignedRoute: "Route B",
	})
	if err != nil {
		t.Fatalf("RegisterHousehold failed: %v", err)
	}
	if created.Status != models.StatusDue || len(created.PaymentHistory) != 0 {
		t.Errorf("new household should be Due with no history: %+v", created)
	}
	if !created.LastCollectionDate.Equal(testNow) {
		t.Errorf("LastCollectionDate = %v, want %v", created.LastCollectionDate, testNow)
	}

	all, _ := repo.FetchHouseholds(ctx)
	if len(all) != 11 {
		t.Fatalf("expected 11 households, got %d", len(all))
	}
	if last := all[len(all)-1]; last.ID != created.ID || last.Phone != "9000000001" {
		t.Errorf("new household not appended: %+v", last)
	}

	_, err = repo.RegisterHousehold(ctx, NewHousehold{Name: "Someone", Address: "Else", Phone: "9000000001"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	after, _ := repo.FetchHouseholds(ctx)
	if len(after) != 11 {
		t.Errorf("collection size changed after conflict: %d", len(after))
	}
}

func TestRegisterHouseholdConcurrentSamePhone(t *testing.T) {
	repo, _ := setupRepository(t, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RegisterHousehold(ctx, NewHousehold{Name: "Race", Address: "1 Track", Phone: "9111111111"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrConflict) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one registration to succeed, got %d", ok)
	}
}

func TestInsertHousehold(t *testing.T) {
	repo, _ := setupRepository(t, 3)
	ctx := context.Background()

	t.Run("ids are strictly increasing", func(t *testing.T) {
		var last int64
		for i := 0; i < 4; i++ {
			h, err := repo.InsertHousehold(ctx, NewHousehold{Name: "N", Address: "A", Phone: "1"})
			if err != nil {
				t.Fatalf("InsertHousehold failed: %v", err)
			}
			if h.ID <= last {
				t.Errorf("id %d not above %d", h.ID, last)
			}
			last = h.ID
		}
	})

	t.Run("empty route becomes Unassigned", func(t *testing.T) {
		h, err := repo.InsertHousehold(ctx, NewHousehold{Name: "N", Address: "A", Phone: "2"})
		if err != nil {
			t.Fatalf("InsertHousehold failed: %v", err)
		}
		if h.AssignedRoute != models.UnassignedRoute {
			t.Errorf("AssignedRoute = %q", h.AssignedRoute)
		}
	})

	t.Run("missing name is invalid", func(t *testing.T) {
		_, err := repo.InsertHousehold(ctx, NewHousehold{Address: "A", Phone: "3"})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
}

func TestUpdateHousehold(t *testing.T) {
	repo, _ := setupRepository(t, 5)
	ctx := context.Background()

	t.Run("echoes the replaced record", func(t *testing.T) {
		h, _ := repo.FetchHouseholdByID(ctx, 1003)
		h.AssignedRoute = "Route C"

		saved, err := repo.UpdateHousehold(ctx, *h)
		if err != nil {
			t.Fatalf("UpdateHousehold failed: %v", err)
		}
		if saved.AssignedRoute != "Route C" || saved.ID != 1003 {
			t.Errorf("unexpected echo: %+v", saved)
		}

		reread, _ := repo.FetchHouseholdByID(ctx, 1003)
		if reread.AssignedRoute != "Route C" {
			t.Error("update not stored")
		}
	})

	t.Run("unknown id fails with NotFound", func(t *testing.T) {
		before, _ := repo.FetchHouseholds(ctx)
		_, err := repo.UpdateHousehold(ctx, models.Household{
			ID: 777777, Name: "X", Address: "Y", Phone: "Z", Status: models.StatusDue,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		after, _ := repo.FetchHouseholds(ctx)
		if len(after) != len(before) {
			t.Error("collection changed")
		}
	})

	t.Run("fetched snapshots do not alias the store", func(t *testing.T) {
		list, _ := repo.FetchHouseholds(ctx)
		list[0].Name = "Changed locally"

		h, _ := repo.FetchHouseholdByID(ctx, list[0].ID)
		if h.Name == "Changed locally" {
			t.Error("local edit leaked into store before update")
		}
	})
}

func TestSetPaymentStatus(t *testing.T) {
	repo, notifier := setupRepository(t, 5)
	ctx := context.Background()

	due, err := repo.InsertHousehold(ctx, NewHousehold{Name: "Lata Rao", Address: "3 Canal Road", Phone: "9222222222"})
	if err != nil {
		t.Fatalf("InsertHousehold failed: %v", err)
	}
	historyLen := len(due.PaymentHistory)

	paid, err := repo.SetPaymentStatus(ctx, due.ID, models.StatusPaid)
	if err != nil {
		t.Fatalf("SetPaymentStatus Paid failed: %v", err)
	}
	if paid.Status != models.StatusPaid || len(paid.PaymentHistory) != historyLen+1 {
		t.Fatalf("unexpected paid household: %+v", paid)
	}
	if paid.PaymentHistory[0].Month != repo.CurrentPeriod() {
		t.Errorf("new payment month = %q", paid.PaymentHistory[0].Month)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Kind != notify.KindReceipt {
		t.Errorf("expected one receipt, got %+v", notifier.sent)
	}

	again, err := repo.SetPaymentStatus(ctx, due.ID, models.StatusPaid)
	if err != nil {
		t.Fatalf("second SetPaymentStatus failed: %v", err)
	}
	if len(again.PaymentHistory) != historyLen+1 {
		t.Errorf("duplicate payment added: %d entries", len(again.PaymentHistory))
	}
	if len(notifier.sent) != 1 {
		t.Errorf("receipt sent for idempotent capture")
	}

	reverted, err := repo.SetPaymentStatus(ctx, due.ID, models.StatusDue)
	if err != nil {
		t.Fatalf("SetPaymentStatus Due failed: %v", err)
	}
	if reverted.Status != models.StatusDue || len(reverted.PaymentHistory) != historyLen {
		t.Errorf("unexpected reverted household: %+v", reverted)
	}

	if _, err := repo.SetPaymentStatus(ctx, 424242, models.StatusPaid); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkDueKeepsOtherPeriods(t *testing.T) {
	repo, _ := setupRepository(t, 2)
	ctx := context.Background()

	h, err := repo.SetPaymentStatus(ctx, seed.KnownHouseholdID, models.StatusDue)
	if err != nil {
		t.Fatalf("SetPaymentStatus failed: %v", err)
	}
	if len(h.PaymentHistory) != 1 || h.PaymentHistory[0].Month != "September 2026" {
		t.Errorf("expected only the September entry, got %+v", h.PaymentHistory)
	}
}

func TestSendReminders(t *testing.T) {
	repo, notifier := setupRepository(t, 1)
	ctx := context.Background()

	households := []models.Household{
		{ID: 1, Name: "A", Phone: "100", Status: models.StatusDue},
		{ID: 2, Name: "B", Phone: "200", Status: models.StatusDue},
		{ID: 3, Name: "C", Phone: "300", Status: models.StatusPaid},
		{ID: 4, Name: "D", Phone: "400", Status: models.StatusDue},
	}
	notifier.failFor["200"] = true

	sent, err := repo.SendReminders(ctx, households)
	if err != nil {
		t.Fatalf("SendReminders failed: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	for _, msg := range notifier.sent {
		if msg.Kind != notify.KindReminder || msg.Period != "October 2026" || msg.Amount != 100 {
			t.Errorf("unexpected reminder: %+v", msg)
		}
		if msg.Phone == "300" {
			t.Error("Paid household was reminded")
		}
	}

	sent, err = repo.SendReminders(ctx, nil)
	if err != nil || sent != 0 {
		t.Errorf("empty batch: sent %d, err %v", sent, err)
	}
}

func TestStaffOperations(t *testing.T) {
	repo, _ := setupRepository(t, 1)
	ctx := context.Background()

	t.Run("driver requires vehicle details", func(t *testing.T) {
		_, err := repo.InsertStaff(ctx, models.RoleDriver, models.Staff{Name: "No Van", Phone: "1", Salary: 9000})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})

	t.Run("role tag must match the collection", func(t *testing.T) {
		_, err := repo.InsertStaff(ctx, models.RoleHelper, models.Staff{Role: models.RoleDriver, Name: "X", Phone: "1", VehicleDetails: "V"})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})

	t.Run("insert and update a helper", func(t *testing.T) {
		h, err := repo.InsertStaff(ctx, models.RoleHelper, models.Staff{Name: "Kiran", Phone: "8000000001", Salary: 7000, AssignedRoute: "Route A"})
		if err != nil {
			t.Fatalf("InsertStaff failed: %v", err)
		}
		if h.ID != 3 || h.Role != models.RoleHelper {
			t.Errorf("unexpected helper: %+v", h)
		}

		h.Salary = 7500
		updated, err := repo.UpdateStaff(ctx, models.RoleHelper, *h)
		if err != nil {
			t.Fatalf("UpdateStaff failed: %v", err)
		}
		if updated.Salary != 7500 {
			t.Errorf("Salary = %v", updated.Salary)
		}

		helpers, _ := repo.FetchHelpers(ctx)
		if len(helpers) != 3 || helpers[2].Salary != 7500 {
			t.Errorf("unexpected helpers: %+v", helpers)
		}
		drivers, _ := repo.FetchDrivers(ctx)
		if len(drivers) != 2 {
			t.Errorf("drivers changed: %d", len(drivers))
		}
	})

	t.Run("update of unknown id fails with NotFound", func(t *testing.T) {
		_, err := repo.UpdateStaff(ctx, models.RoleDriver, models.Staff{ID: 50, Name: "X", Phone: "1", VehicleDetails: "V"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("driver lookup by phone", func(t *testing.T) {
		d, err := repo.FetchDriverByPhone(ctx, "6006540930")
		if err != nil || d == nil || d.Name != "Ramesh Kumar" {
			t.Errorf("unexpected driver: %+v, %v", d, err)
		}
		none, err := repo.FetchDriverByPhone(ctx, "0")
		if err != nil || none != nil {
			t.Errorf("expected not found, got %+v, %v", none, err)
		}
	})
}

func TestLatencyCancellation(t *testing.T) {
	store := memory.New()
	repo := New(store, Options{Latency: blockingLatency{}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := repo.FetchHouseholds(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

type blockingLatency struct{}

func (blockingLatency) Wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
