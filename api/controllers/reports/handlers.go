package reports

import (
	"context"
	"net/http"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	internalreports "github.com/angelmondragon/mealprep-backend/internal/reports"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// dated serves a report for ?date=, defaulting to today in the business timezone.
func dated[T any](svc internalreports.Service, logg *logger.Logger, build func(internalreports.Service, context.Context, types.Date) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := build(svc, ctx, date)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func Production(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, internalreports.Service.Production)
}

// Packages is the meal-by-package count matrix.
func Packages(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, internalreports.Service.Packages)
}

func Packing(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, internalreports.Service.Packing)
}

// ExpiryLabels returns one label per portion produced.
func ExpiryLabels(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, func(s internalreports.Service, ctx context.Context, d types.Date) (types.ListEnvelope[internalreports.ExpiryLabel], error) {
		labels, err := s.ExpiryLabels(ctx, d)
		return types.NewList(labels), err
	})
}

// DeliveryLabels returns one label per served subscriber.
func DeliveryLabels(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, func(s internalreports.Service, ctx context.Context, d types.Date) (types.ListEnvelope[internalreports.DeliveryLabel], error) {
		labels, err := s.DeliveryLabels(ctx, d)
		return types.NewList(labels), err
	})
}

func Vacuum(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, internalreports.Service.Vacuum)
}

// RouteSheet lists every driver's stops for the day plus the unassigned ones.
func RouteSheet(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return dated(svc, logg, internalreports.Service.RouteSheet)
}
