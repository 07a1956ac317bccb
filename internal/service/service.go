// Package service implements the wasteline.v1 Connect services on top of
// the repository, the query engine and the calculator.
package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/auth"
	"github.com/mmynk/wasteline/internal/middleware"
	"github.com/mmynk/wasteline/internal/telemetry"
	"github.com/mmynk/wasteline/pkg/api"
)

// Route is one procedure path and the handler serving it.
type Route struct {
	Path    string
	Handler http.Handler
}

// Mux is satisfied by http.ServeMux and chi routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Mount registers routes on mux.
func Mount(mux Mux, routes ...[]Route) {
	for _, group := range routes {
		for _, r := range group {
			mux.Handle(r.Path, r.Handler)
		}
	}
}

func unary[Req, Res any](procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) Route {
	return Route{Path: procedure, Handler: connect.NewUnaryHandler(procedure, fn, opts...)}
}

// Policy lists the roles allowed on each procedure.
func Policy() middleware.Policy {
	admin := []auth.Role{auth.RoleAdmin}
	return middleware.Policy{
		api.AuthAdminLoginProcedure:        nil,
		api.AuthRequestCodeProcedure:       nil,
		api.AuthVerifyCodeProcedure:        nil,
		api.AuthRegisterHouseholdProcedure: nil,

		api.HouseholdListProcedure:             admin,
		api.HouseholdGetMineProcedure:          {auth.RoleHousehold},
		api.HouseholdListRouteProcedure:        {auth.RoleDriver},
		api.HouseholdCreateProcedure:           admin,
		api.HouseholdUpdateProcedure:           admin,
		api.HouseholdSetPaymentStatusProcedure: {auth.RoleAdmin, auth.RoleDriver},
		api.HouseholdSendRemindersProcedure:    admin,

		api.StaffListDriversProcedure: admin,
		api.StaffListHelpersProcedure: admin,
		api.StaffCreateProcedure:      admin,
		api.StaffUpdateProcedure:      admin,

		api.ReportGetMetricsProcedure: admin,
	}
}

// HandlerOptions returns the codec and interceptor chain shared by every
// handler: metrics outermost, then role enforcement, then logging.
// metrics may be nil.
func HandlerOptions(jwtManager *auth.JWTManager, metrics *telemetry.Metrics) []connect.HandlerOption {
	var interceptors []connect.Interceptor
	if metrics != nil {
		interceptors = append(interceptors, middleware.MetricsInterceptor(metrics))
	}
	interceptors = append(interceptors,
		middleware.RequireAuth(jwtManager, Policy()),
		middleware.LoggingInterceptor(),
	)
	return []connect.HandlerOption{
		connect.WithCodec(api.Codec{}),
		connect.WithInterceptors(interceptors...),
	}
}
