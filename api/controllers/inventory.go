package controllers

import (
	"net/http"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	"github.com/angelmondragon/mealprep-backend/internal/inventory"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

func InventoryCreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("inventory", logg)
	}
	return createHandler(logg, svc.CreateItem)
}

// InventoryListItems lists items with their current balance and low-stock flag.
func InventoryListItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("inventory", logg)
	}
	return listHandler(logg, svc.ListItems)
}

func InventoryDeleteItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("inventory", logg)
	}
	return deleteHandler(logg, "id", svc.DeleteItem)
}

// InventoryRecordTransaction books a stock movement and returns the refreshed log.
func InventoryRecordTransaction(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("inventory", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input inventory.TransactionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		log, err := svc.RecordTransaction(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, log)
	}
}

func InventoryLog(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("inventory", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		log, err := svc.Log(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, log)
	}
}
