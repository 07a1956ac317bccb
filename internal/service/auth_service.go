package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/auth"
	"github.com/mmynk/wasteline/internal/repository"
	"github.com/mmynk/wasteline/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	repo       *repository.Repository
	passwords  *auth.PasswordAuthenticator
	codes      *auth.CodeIssuer
	jwtManager *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(repo *repository.Repository, passwords *auth.PasswordAuthenticator, codes *auth.CodeIssuer, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		repo:       repo,
		passwords:  passwords,
		codes:      codes,
		jwtManager: jwtManager,
	}
}

// Routes returns the handlers of every AuthService procedure.
func (s *AuthService) Routes(opts ...connect.HandlerOption) []Route {
	return []Route{
		unary(api.AuthAdminLoginProcedure, s.AdminLogin, opts),
		unary(api.AuthRequestCodeProcedure, s.RequestCode, opts),
		unary(api.AuthVerifyCodeProcedure, s.VerifyCode, opts),
		unary(api.AuthRegisterHouseholdProcedure, s.RegisterHousehold, opts),
	}
}

// AdminLogin authenticates the operator by username and password.
func (s *AuthService) AdminLogin(ctx context.Context, req *connect.Request[api.AdminLoginRequest]) (*connect.Response[api.LoginResponse], error) {
	slog.Info("AdminLogin request", "username", req.Msg.Username)

	if req.Msg.Username == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	id, err := s.passwords.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		slog.Warn("Admin login failed", "username", req.Msg.Username, "error", err)
		return nil, toConnectError(err)
	}

	return s.issue(id)
}

// RequestCode sends a one-time login code to a household or driver phone.
func (s *AuthService) RequestCode(ctx context.Context, req *connect.Request[api.RequestCodeRequest]) (*connect.Response[api.RequestCodeResponse], error) {
	slog.Info("RequestCode request", "role", req.Msg.Role)

	if req.Msg.Phone == "" {
		return nil, invalidArgument(errors.New("phone is required"))
	}

	challengeID, expires, err := s.codes.Request(ctx, auth.Role(req.Msg.Role), req.Msg.Phone)
	if err != nil {
		slog.Warn("RequestCode failed", "role", req.Msg.Role, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RequestCodeResponse{
		ChallengeID: challengeID,
		ExpiresAt:   expires,
	}), nil
}

// VerifyCode exchanges a valid code for a session token.
func (s *AuthService) VerifyCode(ctx context.Context, req *connect.Request[api.VerifyCodeRequest]) (*connect.Response[api.LoginResponse], error) {
	slog.Info("VerifyCode request", "challenge_id", req.Msg.ChallengeID)

	id, err := s.codes.Verify(req.Msg.ChallengeID, req.Msg.Code)
	if err != nil {
		slog.Warn("VerifyCode failed", "challenge_id", req.Msg.ChallengeID, "error", err)
		return nil, toConnectError(err)
	}

	return s.issue(id)
}

// RegisterHousehold is public self-registration. The phone must be unused.
func (s *AuthService) RegisterHousehold(ctx context.Context, req *connect.Request[api.NewHouseholdRequest]) (*connect.Response[api.HouseholdResponse], error) {
	slog.Info("RegisterHousehold request", "route", req.Msg.AssignedRoute)

	h, err := s.repo.RegisterHousehold(ctx, repository.NewHousehold{
		Name:          req.Msg.Name,
		Address:       req.Msg.Address,
		Phone:         req.Msg.Phone,
		AssignedRoute: req.Msg.AssignedRoute,
	})
	if err != nil {
		slog.Warn("RegisterHousehold failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.HouseholdResponse{Household: toAPIHousehold(*h)}), nil
}

func (s *AuthService) issue(id auth.Identity) (*connect.Response[api.LoginResponse], error) {
	token, expires, err := s.jwtManager.Generate(id)
	if err != nil {
		slog.Error("Failed to generate token", "role", id.Role, "subject", id.Subject, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Login successful", "role", id.Role, "subject", id.Subject)

	return connect.NewResponse(&api.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		Role:      string(id.Role),
		Subject:   id.Subject,
		Name:      id.Name,
	}), nil
}
