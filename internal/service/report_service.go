package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/calculator"
	"github.com/mmynk/wasteline/internal/repository"
	"github.com/mmynk/wasteline/internal/telemetry"
	"github.com/mmynk/wasteline/pkg/api"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ReportService implements the Connect ReportService.
type ReportService struct {
	repo  *repository.Repository
	rates calculator.Rates

	// salariesFromStaff replaces rates.TotalSalaries with the live payroll.
	salariesFromStaff bool

	metrics *telemetry.Metrics
}

// NewReportService creates a ReportService. metrics may be nil.
func NewReportService(repo *repository.Repository, rates calculator.Rates, salariesFromStaff bool, metrics *telemetry.Metrics) *ReportService {
	return &ReportService{
		repo:              repo,
		rates:             rates,
		salariesFromStaff: salariesFromStaff,
		metrics:           metrics,
	}
}

// Routes returns the handlers of every ReportService procedure.
func (s *ReportService) Routes(opts ...connect.HandlerOption) []Route {
	return []Route{
		unary(api.ReportGetMetricsProcedure, s.GetMetrics, opts),
	}
}

// GetMetrics recomputes the admin summary from the current collections.
func (s *ReportService) GetMetrics(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.MetricsResponse], error) {
	slog.Info("GetMetrics request received")

	households, err := s.repo.FetchHouseholds(ctx)
	if err != nil {
		slog.Error("GetMetrics failed", "error", err)
		return nil, toConnectError(err)
	}

	rates := s.rates
	if s.salariesFromStaff {
		drivers, err := s.repo.FetchDrivers(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		helpers, err := s.repo.FetchHelpers(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		rates.TotalSalaries = calculator.SumSalaries(drivers, helpers)
	}

	summary := calculator.Summarize(households, rates)
	if s.metrics != nil {
		s.metrics.ObserveSummary(summary)
	}

	slog.Info("GetMetrics successful",
		"households", summary.Households,
		"paid", summary.PaidCount,
		"net_profit", summary.NetProfit,
	)

	return connect.NewResponse(&api.MetricsResponse{
		Period:               s.repo.CurrentPeriod(),
		Households:           summary.Households,
		PaidCount:            summary.PaidCount,
		DueCount:             summary.DueCount,
		PaidPercent:          summary.PaidPercent,
		HouseholdFee:         rates.HouseholdFee,
		HouseholdCollections: summary.HouseholdCollections,
		CommercialIncome:     rates.CommercialIncome,
		TotalCollections:     summary.TotalCollections,
		PendingAmount:        summary.PendingAmount,
		TotalExpenses:        summary.TotalExpenses,
		NetProfit:            summary.NetProfit,
	}), nil
}
