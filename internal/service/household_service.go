package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/auth"
	"github.com/mmynk/wasteline/internal/middleware"
	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/query"
	"github.com/mmynk/wasteline/internal/repository"
	"github.com/mmynk/wasteline/pkg/api"
	"google.golang.org/protobuf/types/known/emptypb"
)

// HouseholdService implements the Connect HouseholdService.
type HouseholdService struct {
	repo *repository.Repository
}

// NewHouseholdService creates a new HouseholdService over repo.
func NewHouseholdService(repo *repository.Repository) *HouseholdService {
	return &HouseholdService{repo: repo}
}

// Routes returns the handlers of every HouseholdService procedure.
func (s *HouseholdService) Routes(opts ...connect.HandlerOption) []Route {
	return []Route{
		unary(api.HouseholdListProcedure, s.ListHouseholds, opts),
		unary(api.HouseholdGetMineProcedure, s.GetMyHousehold, opts),
		unary(api.HouseholdListRouteProcedure, s.ListRouteHouseholds, opts),
		unary(api.HouseholdCreateProcedure, s.CreateHousehold, opts),
		unary(api.HouseholdUpdateProcedure, s.UpdateHousehold, opts),
		unary(api.HouseholdSetPaymentStatusProcedure, s.SetPaymentStatus, opts),
		unary(api.HouseholdSendRemindersProcedure, s.SendReminders, opts),
	}
}

// ListHouseholds returns the admin table, filtered and sorted as requested.
func (s *HouseholdService) ListHouseholds(ctx context.Context, req *connect.Request[api.ListHouseholdsRequest]) (*connect.Response[api.ListHouseholdsResponse], error) {
	slog.Info("ListHouseholds request received",
		"query", req.Msg.Query,
		"status", req.Msg.Status,
		"sort_key", req.Msg.SortKey,
		"sort_direction", req.Msg.SortDirection,
	)

	criteria, sortState, err := parseTableRequest(req.Msg)
	if err != nil {
		return nil, invalidArgument(err)
	}

	households, err := s.repo.FetchHouseholds(ctx)
	if err != nil {
		slog.Error("ListHouseholds failed", "error", err)
		return nil, toConnectError(err)
	}

	rows := query.Apply(households, criteria, sortState)

	slog.Info("ListHouseholds successful", "total", len(households), "matched", len(rows))

	return connect.NewResponse(&api.ListHouseholdsResponse{
		Households: toAPIHouseholds(rows),
		Total:      len(households),
	}), nil
}

func parseTableRequest(msg *api.ListHouseholdsRequest) (query.Criteria, query.SortState, error) {
	criteria := query.Criteria{Text: msg.Query, Status: models.PaymentStatus(msg.Status)}
	if criteria.Status != "" && !criteria.Status.Valid() {
		return criteria, query.SortState{}, fmt.Errorf("unknown status %q", msg.Status)
	}

	state := query.DefaultSort()
	if msg.SortKey != "" {
		key := query.SortKey(msg.SortKey)
		if !key.Valid() {
			return criteria, state, fmt.Errorf("unknown sort key %q", msg.SortKey)
		}
		state.Key = key
	}
	switch query.Direction(msg.SortDirection) {
	case "", query.Ascending:
		state.Direction = query.Ascending
	case query.Descending:
		state.Direction = query.Descending
	default:
		return criteria, state, fmt.Errorf("unknown sort direction %q", msg.SortDirection)
	}
	return criteria, state, nil
}

// GetMyHousehold returns the signed-in household's own record.
func (s *HouseholdService) GetMyHousehold(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.HouseholdResponse], error) {
	id, err := strconv.ParseInt(middleware.GetSubject(ctx), 10, 64)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	slog.Info("GetMyHousehold request received", "household_id", id)

	h, err := s.repo.FetchHouseholdByID(ctx, id)
	if err != nil {
		slog.Error("GetMyHousehold failed", "household_id", id, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.HouseholdResponse{Household: toAPIHousehold(*h)}), nil
}

// ListRouteHouseholds returns the households on the signed-in driver's route.
func (s *HouseholdService) ListRouteHouseholds(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListRouteHouseholdsResponse], error) {
	driver, err := s.currentDriver(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListRouteHouseholds request received", "driver_id", driver.ID, "route", driver.AssignedRoute)

	households, err := s.repo.FetchHouseholds(ctx)
	if err != nil {
		slog.Error("ListRouteHouseholds failed", "error", err)
		return nil, toConnectError(err)
	}

	rows := query.OnRoute(households, driver.AssignedRoute)

	slog.Info("ListRouteHouseholds successful", "driver_id", driver.ID, "count", len(rows))

	return connect.NewResponse(&api.ListRouteHouseholdsResponse{
		Route:      driver.AssignedRoute,
		Households: toAPIHouseholds(rows),
	}), nil
}

// CreateHousehold adds a household on the admin's behalf. Unlike
// registration it does not check phone uniqueness.
func (s *HouseholdService) CreateHousehold(ctx context.Context, req *connect.Request[api.NewHouseholdRequest]) (*connect.Response[api.HouseholdResponse], error) {
	slog.Info("CreateHousehold request received", "route", req.Msg.AssignedRoute)

	h, err := s.repo.InsertHousehold(ctx, repository.NewHousehold{
		Name:          req.Msg.Name,
		Address:       req.Msg.Address,
		Phone:         req.Msg.Phone,
		AssignedRoute: req.Msg.AssignedRoute,
	})
	if err != nil {
		slog.Error("CreateHousehold failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.HouseholdResponse{Household: toAPIHousehold(*h)}), nil
}

// UpdateHousehold replaces a household record.
func (s *HouseholdService) UpdateHousehold(ctx context.Context, req *connect.Request[api.UpdateHouseholdRequest]) (*connect.Response[api.HouseholdResponse], error) {
	slog.Info("UpdateHousehold request received",
		"household_id", req.Msg.Household.ID,
		"version", req.Msg.Household.Version,
	)

	h, err := s.repo.UpdateHousehold(ctx, fromAPIHousehold(req.Msg.Household))
	if err != nil {
		slog.Error("UpdateHousehold failed", "household_id", req.Msg.Household.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Household updated", "household_id", h.ID, "version", h.Version)

	return connect.NewResponse(&api.HouseholdResponse{Household: toAPIHousehold(*h)}), nil
}

// SetPaymentStatus marks a household Paid or Due for the current period.
// Drivers may only change households on their own route.
func (s *HouseholdService) SetPaymentStatus(ctx context.Context, req *connect.Request[api.SetPaymentStatusRequest]) (*connect.Response[api.HouseholdResponse], error) {
	slog.Info("SetPaymentStatus request received",
		"household_id", req.Msg.HouseholdID,
		"status", req.Msg.Status,
		"role", middleware.GetRole(ctx),
	)

	status := models.PaymentStatus(req.Msg.Status)
	if !status.Valid() {
		return nil, invalidArgument(fmt.Errorf("unknown status %q", req.Msg.Status))
	}

	if middleware.GetRole(ctx) == auth.RoleDriver {
		driver, err := s.currentDriver(ctx)
		if err != nil {
			return nil, err
		}
		h, err := s.repo.FetchHouseholdByID(ctx, req.Msg.HouseholdID)
		if err != nil {
			return nil, toConnectError(err)
		}
		if h.AssignedRoute != driver.AssignedRoute {
			return nil, connect.NewError(connect.CodePermissionDenied,
				fmt.Errorf("household %d is not on route %s", h.ID, driver.AssignedRoute))
		}
	}

	h, err := s.repo.SetPaymentStatus(ctx, req.Msg.HouseholdID, status)
	if err != nil {
		slog.Error("SetPaymentStatus failed", "household_id", req.Msg.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment status set", "household_id", h.ID, "status", h.Status, "history", len(h.PaymentHistory))

	return connect.NewResponse(&api.HouseholdResponse{Household: toAPIHousehold(*h)}), nil
}

// SendReminders reminds the selected Due households, or every Due household
// when none are selected.
func (s *HouseholdService) SendReminders(ctx context.Context, req *connect.Request[api.SendRemindersRequest]) (*connect.Response[api.SendRemindersResponse], error) {
	slog.Info("SendReminders request received", "selected", len(req.Msg.HouseholdIDs))

	households, err := s.repo.FetchHouseholds(ctx)
	if err != nil {
		slog.Error("SendReminders failed", "error", err)
		return nil, toConnectError(err)
	}

	selected := households
	if len(req.Msg.HouseholdIDs) > 0 {
		byID := make(map[int64]models.Household, len(households))
		for _, h := range households {
			byID[h.ID] = h
		}
		selected = make([]models.Household, 0, len(req.Msg.HouseholdIDs))
		seen := make(map[int64]bool, len(req.Msg.HouseholdIDs))
		for _, id := range req.Msg.HouseholdIDs {
			h, ok := byID[id]
			if !ok {
				return nil, toConnectError(fmt.Errorf("household %d: %w", id, repository.ErrNotFound))
			}
			// One reminder per household however often it is selected.
			if seen[id] {
				continue
			}
			seen[id] = true
			selected = append(selected, h)
		}
	}

	requested := 0
	for _, h := range selected {
		if h.Status == models.StatusDue {
			requested++
		}
	}

	sent, err := s.repo.SendReminders(ctx, selected)
	if err != nil {
		slog.Error("SendReminders failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SendRemindersResponse{Requested: requested, Sent: sent}), nil
}

// currentDriver resolves the signed-in driver's record.
func (s *HouseholdService) currentDriver(ctx context.Context) (*models.Staff, error) {
	id, err := strconv.ParseInt(middleware.GetSubject(ctx), 10, 64)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}

	drivers, err := s.repo.FetchDrivers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	for i := range drivers {
		if drivers[i].ID == id {
			return &drivers[i], nil
		}
	}
	return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("driver %d no longer exists", id))
}
