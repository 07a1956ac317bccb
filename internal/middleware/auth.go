package middleware

import (
	"context"
	"errors"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for the authenticated caller.
const identityKey contextKey = "identity"

var errForbidden = errors.New("caller role is not allowed to call this procedure")

// Policy maps each procedure to the roles allowed to call it.
// A procedure listed with no roles is public; an unlisted one is refused.
type Policy map[string][]auth.Role

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the caller from the context.
// The second result is false for public calls.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// GetSubject returns the caller's subject, or "" when unauthenticated.
func GetSubject(ctx context.Context) string {
	id, _ := GetIdentity(ctx)
	return id.Subject
}

// GetRole returns the caller's role, or "" when unauthenticated.
func GetRole(ctx context.Context) auth.Role {
	id, _ := GetIdentity(ctx)
	return id.Role
}

// RequireAuth returns an interceptor enforcing policy. It validates the
// Bearer token of every non-public call and adds the caller's identity to
// the request context.
func RequireAuth(jwtManager *auth.JWTManager, policy Policy) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			roles, listed := policy[req.Spec().Procedure]
			if !listed {
				return nil, connect.NewError(connect.CodePermissionDenied, errForbidden)
			}
			if len(roles) == 0 {
				return next(ctx, req)
			}

			tokenString, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			if !slices.Contains(roles, claims.Role) {
				return nil, connect.NewError(connect.CodePermissionDenied, errForbidden)
			}

			return next(WithIdentity(ctx, claims.Identity()), req)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}
