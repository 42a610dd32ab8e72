package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/mealprep-backend/internal/dispatch"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Service builds the daily kitchen and dispatch reports. A zero date means today.
type Service interface {
	Production(ctx context.Context, date types.Date) (Production, error)
	Packages(ctx context.Context, date types.Date) (PackagesMatrix, error)
	Packing(ctx context.Context, date types.Date) (PackingList, error)
	ExpiryLabels(ctx context.Context, date types.Date) ([]ExpiryLabel, error)
	DeliveryLabels(ctx context.Context, date types.Date) ([]DeliveryLabel, error)
	Vacuum(ctx context.Context, date types.Date) (VacuumSummary, error)
	RouteSheet(ctx context.Context, date types.Date) (dispatch.RouteSheet, error)
}

// ServiceParams groups dependencies for the reports service.
type ServiceParams struct {
	Loader   Loader
	Metrics  *metrics.EngineMetrics
	Logger   *logger.Logger
	Location *time.Location
	Now      func() time.Time
}

type service struct {
	loader   Loader
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
	location *time.Location
	now      func() time.Time
}

// NewService builds the reports service.
func NewService(params ServiceParams) (Service, error) {
	l := params.Loader
	switch {
	case l.Subscribers == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscriber source required")
	case l.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog source required")
	case l.Selections == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selection source required")
	case l.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order source required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{loader: l, metrics: params.Metrics, logg: logg, location: loc, now: now}, nil
}

func (s *service) Production(ctx context.Context, date types.Date) (Production, error) {
	return build(ctx, s, "production", date, BuildProduction)
}

func (s *service) Packages(ctx context.Context, date types.Date) (PackagesMatrix, error) {
	return build(ctx, s, "packages", date, BuildPackagesMatrix)
}

func (s *service) Packing(ctx context.Context, date types.Date) (PackingList, error) {
	return build(ctx, s, "packing", date, BuildPackingList)
}

func (s *service) ExpiryLabels(ctx context.Context, date types.Date) ([]ExpiryLabel, error) {
	return build(ctx, s, "expiry_labels", date, BuildExpiryLabels)
}

func (s *service) DeliveryLabels(ctx context.Context, date types.Date) ([]DeliveryLabel, error) {
	return build(ctx, s, "delivery_labels", date, BuildDeliveryLabels)
}

func (s *service) Vacuum(ctx context.Context, date types.Date) (VacuumSummary, error) {
	return build(ctx, s, "vacuum", date, BuildVacuumSummary)
}

func (s *service) RouteSheet(ctx context.Context, date types.Date) (dispatch.RouteSheet, error) {
	return build(ctx, s, "route_sheet", date, BuildRouteSheet)
}

func build[T any](ctx context.Context, s *service, name string, date types.Date, fold func(*Snapshot) T) (T, error) {
	var zero T
	if date.IsZero() {
		date = types.Today(s.now(), s.location)
	}
	if !date.IsValid() {
		return zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid report date")
	}

	start := time.Now()
	snap, err := s.loader.Load(ctx, date)
	if err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"report": name, "date": date.String()})
		s.logg.Error(ctx, "report snapshot load failed", err)
		return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report snapshot")
	}
	out := fold(snap)
	s.metrics.ObserveReport(name, time.Since(start))
	return out, nil
}
