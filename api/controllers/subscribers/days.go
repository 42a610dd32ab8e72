package subscribers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	internalselections "github.com/angelmondragon/mealprep-backend/internal/selections"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

func dayParams(r *http.Request) (uuid.UUID, types.Date, error) {
	id, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		return uuid.Nil, types.Date{}, err
	}
	date, err := validators.ParseDateParam(r, "date")
	if err != nil {
		return uuid.Nil, types.Date{}, err
	}
	return id, date, nil
}

func selectionsMissing(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "selection service unavailable"))
}

// Day returns the selection screen for one date.
func Day(svc internalselections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			selectionsMissing(w, r, logg)
			return
		}
		id, date, err := dayParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.Day(ctx, id, date)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Select toggles one meal into or out of a slot.
func Select(svc internalselections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			selectionsMissing(w, r, logg)
			return
		}
		id, date, err := dayParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input internalselections.SelectInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ctx = logg.WithServiceDate(logg.WithSubscriberID(ctx, id.String()), date.String())
		view, err := svc.Select(ctx, id, date, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Save replaces the day's selections wholesale.
func Save(svc internalselections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			selectionsMissing(w, r, logg)
			return
		}
		id, date, err := dayParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input internalselections.SaveInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ctx = logg.WithServiceDate(logg.WithSubscriberID(ctx, id.String()), date.String())
		view, err := svc.Save(ctx, id, date, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
