package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

// CatalogRoutes groups the handlers for every catalog resource.
type CatalogRoutes struct {
	ListPackages, CreatePackage, UpdatePackage, DeletePackage http.HandlerFunc
	ListCodes, CreateCode, DeleteCode                         http.HandlerFunc
	ListMeals, CreateMeal, DeleteMeal                         http.HandlerFunc
	Menu, ReplaceMenu                                         http.HandlerFunc
	ListAreas, CreateArea, DeleteArea                         http.HandlerFunc
	ListDrivers, CreateDriver, UpdateDriver, DeleteDriver     http.HandlerFunc
	ListVacuumPackages, CreateVacuumPackage                   http.HandlerFunc
	DeleteVacuumPackage                                       http.HandlerFunc
	ListMarinades, CreateMarinade, DeleteMarinade             http.HandlerFunc
}

// Catalog builds the catalog handlers. Every resource keys its path parameter as "id".
func Catalog(svc catalog.Service, logg *logger.Logger) CatalogRoutes {
	if svc == nil {
		h := unavailable("catalog", logg)
		return CatalogRoutes{
			ListPackages: h, CreatePackage: h, UpdatePackage: h, DeletePackage: h,
			ListCodes: h, CreateCode: h, DeleteCode: h,
			ListMeals: h, CreateMeal: h, DeleteMeal: h,
			Menu: h, ReplaceMenu: h,
			ListAreas: h, CreateArea: h, DeleteArea: h,
			ListDrivers: h, CreateDriver: h, UpdateDriver: h, DeleteDriver: h,
			ListVacuumPackages: h, CreateVacuumPackage: h, DeleteVacuumPackage: h,
			ListMarinades: h, CreateMarinade: h, DeleteMarinade: h,
		}
	}
	return CatalogRoutes{
		ListPackages:  listHandler(logg, svc.ListPackages),
		CreatePackage: createHandler(logg, svc.CreatePackage),
		UpdatePackage: updateHandler(logg, "id", svc.UpdatePackage),
		DeletePackage: deleteHandler(logg, "id", svc.DeletePackage),

		ListCodes:  listHandler(logg, svc.ListDiscountCodes),
		CreateCode: createHandler(logg, svc.CreateDiscountCode),
		DeleteCode: deleteHandler(logg, "id", svc.DeleteDiscountCode),

		ListMeals:  MealList(svc, logg),
		CreateMeal: createHandler(logg, svc.CreateMeal),
		DeleteMeal: deleteHandler(logg, "id", svc.DeleteMeal),

		Menu:        MenuFetch(svc, logg),
		ReplaceMenu: MenuReplace(svc, logg),

		ListAreas:  listHandler(logg, svc.ListAreas),
		CreateArea: createHandler(logg, svc.CreateArea),
		DeleteArea: deleteHandler(logg, "id", svc.DeleteArea),

		ListDrivers:  listHandler(logg, svc.ListDrivers),
		CreateDriver: createHandler(logg, svc.CreateDriver),
		UpdateDriver: updateHandler(logg, "id", svc.UpdateDriver),
		DeleteDriver: deleteHandler(logg, "id", svc.DeleteDriver),

		ListVacuumPackages:  listHandler(logg, svc.ListVacuumPackages),
		CreateVacuumPackage: createHandler(logg, svc.CreateVacuumPackage),
		DeleteVacuumPackage: deleteHandler(logg, "id", svc.DeleteVacuumPackage),

		ListMarinades:  listHandler(logg, svc.ListMarinades),
		CreateMarinade: createHandler(logg, svc.CreateMarinade),
		DeleteMarinade: deleteHandler(logg, "id", svc.DeleteMarinade),
	}
}

// MealList lists meals, optionally narrowed by ?category=.
func MealList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var category enums.MealCategory
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			parsed, err := enums.ParseMealCategory(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			category = parsed
		}
		meals, err := svc.ListMeals(ctx, category)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, meals)
	}
}

func MenuFetch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menu, err := svc.Menu(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}

// MenuReplace swaps today's menu for the posted one.
func MenuReplace(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var input catalog.MenuInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		menu, err := svc.ReplaceMenu(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}
