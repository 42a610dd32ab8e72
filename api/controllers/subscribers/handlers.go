package subscribers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	internalsubscribers "github.com/angelmondragon/mealprep-backend/internal/subscribers"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

const (
	maxNameLen  = 120
	maxPhoneLen = 32
)

type deliveryStatusPayload struct {
	Status enums.DeliveryStatus `json:"status" validate:"required"`
}

type quotePayload struct {
	PackageID    uuid.UUID            `json:"package_id" validate:"required"`
	Composition  []enums.MealCategory `json:"composition" validate:"required,min=1"`
	Duration     enums.Duration       `json:"duration" validate:"required"`
	DiscountCode string               `json:"discount_code"`
}

func serviceMissing(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriber service unavailable"))
}

// Signup registers a subscriber with their first subscription.
func Signup(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}

		var input internalsubscribers.SignupInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.Name = validators.SanitizeString(input.Name, maxNameLen)
		input.Phone = validators.SanitizePhone(input.Phone, maxPhoneLen)

		view, err := svc.Signup(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// List returns subscribers; ?date= keeps those whose window covers the day, ?paid=true drops unpaid ones.
func List(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		paid, err := validators.ParseQueryBool(r, "paid")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filter := internalsubscribers.ListFilter{Date: date, PaidOnly: paid}
		if raw := r.URL.Query().Get("status"); raw != "" {
			if filter.Status, err = enums.ParseSubscriptionStatus(raw); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
		}

		views, err := svc.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, views)
	}
}

func Get(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// UpdateSubscription applies an admin edit. Sending "version" turns on the lost-update check.
func UpdateSubscription(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input internalsubscribers.UpdateSubscriptionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.UpdateSubscription(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// TogglePause pauses or resumes one delivery day.
func TogglePause(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		date, err := validators.ParseDateParam(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ctx = logg.WithSubscriberID(ctx, id.String())
		result, err := svc.TogglePause(ctx, id, date)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ToggleFavorite(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		mealID, err := validators.ParseUUIDParam(r, "mealID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.ToggleFavorite(ctx, id, mealID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SetDeliveryStatus records whether the day's box went out.
func SetDeliveryStatus(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		date, err := validators.ParseDateParam(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload deliveryStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.SetDeliveryStatus(ctx, id, date, payload.Status); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"subscriber_id": id,
			"date":          date,
			"status":        payload.Status,
		})
	}
}

func Price(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		price, err := svc.Price(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, price)
	}
}

// Quote prices a prospective subscription without saving anything.
func Quote(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		var payload quotePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		price, err := svc.Quote(ctx, pricing.Quote{
			PackageID:    payload.PackageID,
			Composition:  payload.Composition,
			Duration:     payload.Duration,
			DiscountCode: payload.DiscountCode,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, price)
	}
}

// Dispatch resolves the driver serving a subscriber.
func Dispatch(svc internalsubscribers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.Dispatch(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
