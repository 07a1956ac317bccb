package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/repository"
	"github.com/mmynk/wasteline/pkg/api"
	"google.golang.org/protobuf/types/known/emptypb"
)

// StaffService implements the Connect StaffService.
type StaffService struct {
	repo *repository.Repository
}

// NewStaffService creates a new StaffService over repo.
func NewStaffService(repo *repository.Repository) *StaffService {
	return &StaffService{repo: repo}
}

// Routes returns the handlers of every StaffService procedure.
func (s *StaffService) Routes(opts ...connect.HandlerOption) []Route {
	return []Route{
		unary(api.StaffListDriversProcedure, s.ListDrivers, opts),
		unary(api.StaffListHelpersProcedure, s.ListHelpers, opts),
		unary(api.StaffCreateProcedure, s.CreateStaff, opts),
		unary(api.StaffUpdateProcedure, s.UpdateStaff, opts),
	}
}

// ListDrivers returns every driver.
func (s *StaffService) ListDrivers(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStaffResponse], error) {
	return s.list(ctx, models.RoleDriver)
}

// ListHelpers returns every helper.
func (s *StaffService) ListHelpers(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListStaffResponse], error) {
	return s.list(ctx, models.RoleHelper)
}

func (s *StaffService) list(ctx context.Context, role models.StaffRole) (*connect.Response[api.ListStaffResponse], error) {
	slog.Info("ListStaff request received", "role", role)

	members, err := s.repo.FetchStaff(ctx, role)
	if err != nil {
		slog.Error("ListStaff failed", "role", role, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListStaffResponse{Staff: toAPIStaffList(members)}), nil
}

// CreateStaff adds a driver or helper, as named by the record's role.
func (s *StaffService) CreateStaff(ctx context.Context, req *connect.Request[api.StaffRequest]) (*connect.Response[api.StaffResponse], error) {
	slog.Info("CreateStaff request received", "role", req.Msg.Staff.Role, "route", req.Msg.Staff.AssignedRoute)

	member := fromAPIStaff(req.Msg.Staff)
	if !member.Role.Valid() {
		return nil, invalidArgument(fmt.Errorf("unknown staff role %q", req.Msg.Staff.Role))
	}

	created, err := s.repo.InsertStaff(ctx, member.Role, member)
	if err != nil {
		slog.Error("CreateStaff failed", "role", member.Role, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Staff created", "role", created.Role, "staff_id", created.ID)

	return connect.NewResponse(&api.StaffResponse{Staff: toAPIStaff(*created)}), nil
}

// UpdateStaff replaces a driver or helper record.
func (s *StaffService) UpdateStaff(ctx context.Context, req *connect.Request[api.StaffRequest]) (*connect.Response[api.StaffResponse], error) {
	slog.Info("UpdateStaff request received", "role", req.Msg.Staff.Role, "staff_id", req.Msg.Staff.ID)

	member := fromAPIStaff(req.Msg.Staff)
	if !member.Role.Valid() {
		return nil, invalidArgument(fmt.Errorf("unknown staff role %q", req.Msg.Staff.Role))
	}

	updated, err := s.repo.UpdateStaff(ctx, member.Role, member)
	if err != nil {
		slog.Error("UpdateStaff failed", "role", member.Role, "staff_id", member.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.StaffResponse{Staff: toAPIStaff(*updated)}), nil
}
