package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/notify"
)

type stubDirectory struct {
	households map[string]models.Household
	drivers    map[string]models.Staff
}

func (d stubDirectory) FetchHouseholdByPhone(_ context.Context, phone string) (*models.Household, error) {
	h, ok := d.households[phone]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (d stubDirectory) FetchDriverByPhone(_ context.Context, phone string) (*models.Staff, error) {
	s, ok := d.drivers[phone]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

type captureNotifier struct {
	last notify.Message
	err  error
}

func (n *captureNotifier) Notify(_ context.Context, msg notify.Message) error {
	if n.err != nil {
		return n.err
	}
	n.last = msg
	return nil
}

type stubAdmins struct{ admin models.Admin }

func (s stubAdmins) FetchAdmin(context.Context) (*models.Admin, error) {
	a := s.admin
	return &a, nil
}

func setupIssuer(t *testing.T, opts CodeOptions) (*CodeIssuer, *captureNotifier, *time.Time) {
	t.Helper()
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	opts.Clock = func() time.Time { return now }

	dir := stubDirectory{
		households: map[string]models.Household{"9876541001": {ID: 1001, Name: "Test User"}},
		drivers:    map[string]models.Staff{"6006540930": {ID: 1, Role: models.RoleDriver, Name: "Ramesh Kumar"}},
	}
	n := &captureNotifier{}
	issuer := NewCodeIssuer(dir, n, opts)
	issuer.generate = func() (string, error) { return "424242", nil }
	return issuer, n, &now
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	t.Run("round trip keeps role and subject", func(t *testing.T) {
		token, expires, err := m.Generate(Identity{Role: RoleHousehold, Subject: "1001", Name: "Test User"})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if time.Until(expires) <= 0 {
			t.Error("expiry is in the past")
		}

		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if got := claims.Identity(); got.Role != RoleHousehold || got.Subject != "1001" || got.Name != "Test User" {
			t.Errorf("unexpected identity: %+v", got)
		}
		if claims.ID == "" {
			t.Error("token id missing")
		}
	})

	t.Run("other secret is rejected", func(t *testing.T) {
		token, _, _ := NewJWTManager("other", time.Hour).Generate(Identity{Role: RoleAdmin, Subject: "admin"})
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, _, _ := NewJWTManager("test-secret", -time.Minute).Generate(Identity{Role: RoleAdmin, Subject: "admin"})
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("unknown role cannot be issued", func(t *testing.T) {
		if _, _, err := m.Generate(Identity{Role: "janitor", Subject: "x"}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestPasswordAuthenticator(t *testing.T) {
	hash, err := HashPassword("collect-all-the-bins")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	a := NewPasswordAuthenticator(stubAdmins{models.Admin{Username: "admin", PasswordHash: hash}})
	ctx := context.Background()

	id, err := a.Authenticate(ctx, "admin", "collect-all-the-bins")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if id.Role != RoleAdmin || id.Subject != "admin" {
		t.Errorf("unexpected identity: %+v", id)
	}

	tests := []struct{ name, username, password string }{
		{"wrong password", "admin", "nope-nope-nope"},
		{"wrong username", "root", "collect-all-the-bins"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(ctx, tt.username, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestCodeIssuer(t *testing.T) {
	ctx := context.Background()

	t.Run("household code round trip", func(t *testing.T) {
		issuer, n, _ := setupIssuer(t, CodeOptions{})
		challengeID, _, err := issuer.Request(ctx, RoleHousehold, "9876541001")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if n.last.Kind != notify.KindLoginCode || n.last.HouseholdID != 1001 || !strings.Contains(n.last.Body, "424242") {
			t.Errorf("unexpected message: %+v", n.last)
		}

		id, err := issuer.Verify(challengeID, "424242")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if id.Role != RoleHousehold || id.Subject != "1001" {
			t.Errorf("unexpected identity: %+v", id)
		}

		if _, err := issuer.Verify(challengeID, "424242"); !errors.Is(err, ErrUnknownChallenge) {
			t.Errorf("code should be single use, got %v", err)
		}
	})

	t.Run("driver code resolves the driver id", func(t *testing.T) {
		issuer, _, _ := setupIssuer(t, CodeOptions{})
		challengeID, _, err := issuer.Request(ctx, RoleDriver, "6006540930")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		id, err := issuer.Verify(challengeID, "424242")
		if err != nil || id.Role != RoleDriver || id.Subject != "1" {
			t.Errorf("unexpected identity %+v, err %v", id, err)
		}
	})

	t.Run("unknown phone", func(t *testing.T) {
		issuer, _, _ := setupIssuer(t, CodeOptions{})
		if _, _, err := issuer.Request(ctx, RoleHousehold, "0000000000"); !errors.Is(err, ErrUnknownPhone) {
			t.Errorf("expected ErrUnknownPhone, got %v", err)
		}
		if _, _, err := issuer.Request(ctx, RoleAdmin, "9876541001"); !errors.Is(err, ErrUnsupportedRole) {
			t.Errorf("expected ErrUnsupportedRole, got %v", err)
		}
	})

	t.Run("code expires after the TTL", func(t *testing.T) {
		issuer, _, now := setupIssuer(t, CodeOptions{TTL: time.Minute})
		challengeID, _, _ := issuer.Request(ctx, RoleHousehold, "9876541001")

		*now = now.Add(time.Minute)
		if _, err := issuer.Verify(challengeID, "424242"); !errors.Is(err, ErrCodeExpired) {
			t.Errorf("expected ErrCodeExpired, got %v", err)
		}
	})

	t.Run("locks after the attempt limit", func(t *testing.T) {
		issuer, _, _ := setupIssuer(t, CodeOptions{MaxAttempts: 2})
		challengeID, _, _ := issuer.Request(ctx, RoleHousehold, "9876541001")

		if _, err := issuer.Verify(challengeID, "000000"); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("expected ErrInvalidCode, got %v", err)
		}
		if _, err := issuer.Verify(challengeID, "111111"); !errors.Is(err, ErrTooManyAttempts) {
			t.Errorf("expected ErrTooManyAttempts, got %v", err)
		}
		if _, err := issuer.Verify(challengeID, "424242"); !errors.Is(err, ErrUnknownChallenge) {
			t.Errorf("locked challenge should be gone, got %v", err)
		}
	})

	t.Run("failed delivery drops the challenge", func(t *testing.T) {
		issuer, n, _ := setupIssuer(t, CodeOptions{})
		n.err = errors.New("gateway down")
		if _, _, err := issuer.Request(ctx, RoleHousehold, "9876541001"); !errors.Is(err, ErrDeliveryFailed) {
			t.Errorf("expected ErrDeliveryFailed, got %v", err)
		}
		if len(issuer.challenges) != 0 {
			t.Errorf("challenge kept after failed delivery")
		}
	})
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := randomCode()
		if err != nil {
			t.Fatalf("randomCode failed: %v", err)
		}
		if len(code) != codeDigits || strings.Trim(code, "0123456789") != "" {
			t.Errorf("bad code %q", code)
		}
	}
}
