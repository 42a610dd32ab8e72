package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mealprep-backend/internal/dispatch"
	internalreports "github.com/angelmondragon/mealprep-backend/internal/reports"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

type stubReports struct {
	internalreports.Service
	productionFn func(ctx context.Context, date types.Date) (internalreports.Production, error)
	expiryFn     func(ctx context.Context, date types.Date) ([]internalreports.ExpiryLabel, error)
	routeFn      func(ctx context.Context, date types.Date) (dispatch.RouteSheet, error)
}

func (s *stubReports) Production(ctx context.Context, date types.Date) (internalreports.Production, error) {
	return s.productionFn(ctx, date)
}

func (s *stubReports) ExpiryLabels(ctx context.Context, date types.Date) ([]internalreports.ExpiryLabel, error) {
	return s.expiryFn(ctx, date)
}

func (s *stubReports) RouteSheet(ctx context.Context, date types.Date) (dispatch.RouteSheet, error) {
	return s.routeFn(ctx, date)
}

func TestProductionPassesDate(t *testing.T) {
	var got types.Date
	svc := &stubReports{productionFn: func(_ context.Context, date types.Date) (internalreports.Production, error) {
		got = date
		return internalreports.Production{
			Date:  date,
			Total: 3,
			Categories: []internalreports.CategoryProduction{{
				Category: enums.MealCategoryLunch,
				Total:    3,
				Meals:    []internalreports.MealCount{{MealID: uuid.New(), Name: "Grilled chicken", Count: 3}},
			}},
		}, nil
	}}

	rec := httptest.NewRecorder()
	Production(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/production?date=2026-03-02", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, types.NewDate(2026, 3, 2), got)
	assert.Contains(t, rec.Body.String(), "Grilled chicken")
}

func TestProductionDefaultsToZeroDate(t *testing.T) {
	svc := &stubReports{productionFn: func(_ context.Context, date types.Date) (internalreports.Production, error) {
		assert.True(t, date.IsZero())
		return internalreports.Production{}, nil
	}}
	rec := httptest.NewRecorder()
	Production(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/production", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExpiryLabelsWrappedAsList(t *testing.T) {
	svc := &stubReports{expiryFn: func(context.Context, types.Date) ([]internalreports.ExpiryLabel, error) {
		return nil, nil
	}}
	rec := httptest.NewRecorder()
	ExpiryLabels(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/expiry-labels?date=2026-03-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"items":[],"count":0}}`, rec.Body.String())
}

func TestRouteSheetErrors(t *testing.T) {
	svc := &stubReports{routeFn: func(context.Context, types.Date) (dispatch.RouteSheet, error) {
		return dispatch.RouteSheet{}, pkgerrors.New(pkgerrors.CodeDependency, "load report snapshot")
	}}

	rec := httptest.NewRecorder()
	RouteSheet(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/route-sheet?date=2026-03-02", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	RouteSheet(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/route-sheet?date=tomorrow", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	RouteSheet(nil, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/route-sheet", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
