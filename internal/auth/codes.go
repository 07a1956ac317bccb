package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/wasteline/internal/notify"
)

var (
	ErrUnknownPhone     = errors.New("phone number is not registered")
	ErrUnknownChallenge = errors.New("login challenge not found")
	ErrCodeExpired      = errors.New("login code expired")
	ErrInvalidCode      = errors.New("incorrect login code")
	ErrTooManyAttempts  = errors.New("too many incorrect attempts")
	ErrUnsupportedRole  = errors.New("role cannot sign in with a code")
	ErrDeliveryFailed   = errors.New("failed to deliver login code")
)

const codeDigits = 6

// CodeOptions configure a CodeIssuer.
type CodeOptions struct {
	TTL         time.Duration
	MaxAttempts int
	Clock       func() time.Time
}

type challenge struct {
	identity Identity
	code     string
	expires  time.Time
	attempts int
}

// CodeIssuer issues one-time login codes for households and drivers and
// delivers them through a notifier. Challenges live in memory only.
type CodeIssuer struct {
	directory   PhoneDirectory
	notifier    notify.Notifier
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	generate    func() (string, error)

	mu         sync.Mutex
	challenges map[string]*challenge
}

// NewCodeIssuer creates a CodeIssuer. Zero options default to a five minute
// TTL and three attempts.
func NewCodeIssuer(directory PhoneDirectory, notifier notify.Notifier, opts CodeOptions) *CodeIssuer {
	c := &CodeIssuer{
		directory:   directory,
		notifier:    notifier,
		ttl:         opts.TTL,
		maxAttempts: opts.MaxAttempts,
		now:         opts.Clock,
		generate:    randomCode,
		challenges:  make(map[string]*challenge),
	}
	if c.ttl <= 0 {
		c.ttl = 5 * time.Minute
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Request looks up phone for role, sends it a fresh code and returns the
// challenge id the code must be verified against.
func (c *CodeIssuer) Request(ctx context.Context, role Role, phone string) (string, time.Time, error) {
	identity, err := c.resolve(ctx, role, phone)
	if err != nil {
		return "", time.Time{}, err
	}

	code, err := c.generate()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate code: %w", err)
	}

	id := uuid.NewString()
	expires := c.now().Add(c.ttl)

	c.mu.Lock()
	c.sweepLocked()
	c.challenges[id] = &challenge{identity: identity, code: code, expires: expires}
	c.mu.Unlock()

	msg := notify.Message{
		Kind:  notify.KindLoginCode,
		Phone: phone,
		Name:  identity.Name,
		Body:  fmt.Sprintf("Your Wasteline login code is %s. It expires in %d minutes.", code, int(c.ttl.Minutes())),
	}
	if role == RoleHousehold {
		msg.HouseholdID, _ = strconv.ParseInt(identity.Subject, 10, 64)
	}
	if err := c.notifier.Notify(ctx, msg); err != nil {
		c.mu.Lock()
		delete(c.challenges, id)
		c.mu.Unlock()
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	slog.Info("Login code issued", "role", role, "subject", identity.Subject, "challenge_id", id)
	return id, expires, nil
}

// Verify consumes the challenge when code matches. A wrong code counts an
// attempt; the challenge is dropped once it expires or runs out of attempts.
func (c *CodeIssuer) Verify(challengeID, code string) (Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.challenges[challengeID]
	if !ok {
		return Identity{}, ErrUnknownChallenge
	}
	if !c.now().Before(ch.expires) {
		delete(c.challenges, challengeID)
		return Identity{}, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(ch.code), []byte(code)) != 1 {
		ch.attempts++
		if ch.attempts >= c.maxAttempts {
			delete(c.challenges, challengeID)
			return Identity{}, ErrTooManyAttempts
		}
		return Identity{}, ErrInvalidCode
	}

	delete(c.challenges, challengeID)
	return ch.identity, nil
}

func (c *CodeIssuer) resolve(ctx context.Context, role Role, phone string) (Identity, error) {
	switch role {
	case RoleHousehold:
		h, err := c.directory.FetchHouseholdByPhone(ctx, phone)
		if err != nil {
			return Identity{}, err
		}
		if h == nil {
			return Identity{}, ErrUnknownPhone
		}
		return Identity{Role: RoleHousehold, Subject: strconv.FormatInt(h.ID, 10), Name: h.Name}, nil
	case RoleDriver:
		d, err := c.directory.FetchDriverByPhone(ctx, phone)
		if err != nil {
			return Identity{}, err
		}
		if d == nil {
			return Identity{}, ErrUnknownPhone
		}
		return Identity{Role: RoleDriver, Subject: strconv.FormatInt(d.ID, 10), Name: d.Name}, nil
	default:
		return Identity{}, fmt.Errorf("%w: %s", ErrUnsupportedRole, role)
	}
}

func (c *CodeIssuer) sweepLocked() {
	now := c.now()
	for id, ch := range c.challenges {
		if !now.Before(ch.expires) {
			delete(c.challenges, id)
		}
	}
}

// randomCode returns a zero-padded six digit code.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
