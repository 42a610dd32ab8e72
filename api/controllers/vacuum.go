package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	"github.com/angelmondragon/mealprep-backend/internal/vacuum"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

type vacuumStatusPayload struct {
	Status enums.VacuumOrderStatus `json:"status" validate:"required"`
}

// VacuumCreateOrder places a vacuum-sealed meat order.
func VacuumCreateOrder(svc vacuum.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("vacuum", logg)
	}
	return createHandler(logg, svc.CreateOrder)
}

// VacuumListOrders lists orders filtered by order_date, delivery_date, subscriber_id and status.
func VacuumListOrders(svc vacuum.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("vacuum", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var filter vacuum.ListFilter
		var err error
		if filter.OrderDate, err = validators.ParseQueryDate(r, "order_date"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if filter.DeliveryDate, err = validators.ParseQueryDate(r, "delivery_date"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("subscriber_id")); raw != "" {
			if filter.SubscriberID, err = uuid.Parse(raw); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscriber_id"))
				return
			}
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			if filter.Status, err = enums.ParseVacuumOrderStatus(raw); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
		}
		orders, err := svc.ListOrders(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, orders)
	}
}

// VacuumUpdateStatus moves an order along pending, preparing, delivered.
func VacuumUpdateStatus(svc vacuum.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("vacuum", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload vacuumStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(ctx, id, payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
