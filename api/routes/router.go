package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mealprep-backend/api/controllers"
	reportcontrollers "github.com/angelmondragon/mealprep-backend/api/controllers/reports"
	subscribercontrollers "github.com/angelmondragon/mealprep-backend/api/controllers/subscribers"
	"github.com/angelmondragon/mealprep-backend/api/middleware"
	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/internal/inventory"
	"github.com/angelmondragon/mealprep-backend/internal/ledger"
	"github.com/angelmondragon/mealprep-backend/internal/reports"
	"github.com/angelmondragon/mealprep-backend/internal/selections"
	"github.com/angelmondragon/mealprep-backend/internal/subscribers"
	"github.com/angelmondragon/mealprep-backend/internal/vacuum"
	"github.com/angelmondragon/mealprep-backend/pkg/config"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/redis"
)

// Services are the domain services the API exposes.
type Services struct {
	Subscribers subscribers.Service
	Selections  selections.Service
	Catalog     catalog.Service
	Vacuum      vacuum.Service
	Inventory   inventory.Service
	Ledger      ledger.Service
	Reports     reports.Service
}

// Infra carries the shared clients the router needs besides the services.
// A nil Redis disables idempotency replay and signup throttling.
type Infra struct {
	DB       db.Pinger
	Redis    *redis.Client
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	deps := map[string]controllers.Pinger{}
	if infra.DB != nil {
		deps["db"] = infra.DB
	}
	if infra.Redis != nil {
		deps["redis"] = infra.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	signupLimit := func(next http.Handler) http.Handler { return next }
	if infra.Redis != nil {
		policy := middleware.NewRateLimitPolicy(
			"signup",
			cfg.SignupLimit.Window,
			cfg.SignupLimit.IPLimit,
			cfg.SignupLimit.PhoneLimit,
		)
		signupLimit = middleware.RateLimit(policy, infra.Redis, logg)
	}

	var replayStore middleware.IdempotencyStore
	if infra.Redis != nil {
		replayStore = infra.Redis
	}
	idem := middleware.NewIdempotency(replayStore, logg)
	daily, weekly := idem.Guard(middleware.DailyReplay), idem.Guard(middleware.WeeklyReplay)

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/pricing/quote", subscribercontrollers.Quote(svcs.Subscribers, logg))

		r.Route("/subscribers", func(r chi.Router) {
			r.With(signupLimit, daily).Post("/", subscribercontrollers.Signup(svcs.Subscribers, logg))
			r.Get("/", subscribercontrollers.List(svcs.Subscribers, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", subscribercontrollers.Get(svcs.Subscribers, logg))
				r.Patch("/subscription", subscribercontrollers.UpdateSubscription(svcs.Subscribers, logg))
				r.Get("/price", subscribercontrollers.Price(svcs.Subscribers, logg))
				r.Get("/dispatch", subscribercontrollers.Dispatch(svcs.Subscribers, logg))
				r.With(daily).Post("/favorites/{mealID}", subscribercontrollers.ToggleFavorite(svcs.Subscribers, logg))
				r.Put("/deliveries/{date}", subscribercontrollers.SetDeliveryStatus(svcs.Subscribers, logg))
				r.Route("/days/{date}", func(r chi.Router) {
					r.Get("/", subscribercontrollers.Day(svcs.Selections, logg))
					r.Put("/", subscribercontrollers.Save(svcs.Selections, logg))
					r.With(daily).Post("/select", subscribercontrollers.Select(svcs.Selections, logg))
					r.With(daily).Post("/pause", subscribercontrollers.TogglePause(svcs.Subscribers, logg))
				})
			})
		})

		cat := controllers.Catalog(svcs.Catalog, logg)
		r.Route("/packages", func(r chi.Router) {
			r.Get("/", cat.ListPackages)
			r.Post("/", cat.CreatePackage)
			r.Put("/{id}", cat.UpdatePackage)
			r.Delete("/{id}", cat.DeletePackage)
		})
		r.Route("/discount-codes", func(r chi.Router) {
			r.Get("/", cat.ListCodes)
			r.Post("/", cat.CreateCode)
			r.Delete("/{id}", cat.DeleteCode)
		})
		r.Route("/meals", func(r chi.Router) {
			r.Get("/", cat.ListMeals)
			r.Post("/", cat.CreateMeal)
			r.Delete("/{id}", cat.DeleteMeal)
		})
		r.Get("/menu", cat.Menu)
		r.Put("/menu", cat.ReplaceMenu)
		r.Route("/areas", func(r chi.Router) {
			r.Get("/", cat.ListAreas)
			r.Post("/", cat.CreateArea)
			r.Delete("/{id}", cat.DeleteArea)
		})
		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", cat.ListDrivers)
			r.Post("/", cat.CreateDriver)
			r.Put("/{id}", cat.UpdateDriver)
			r.Delete("/{id}", cat.DeleteDriver)
		})

		r.Route("/vacuum", func(r chi.Router) {
			r.Get("/packages", cat.ListVacuumPackages)
			r.Post("/packages", cat.CreateVacuumPackage)
			r.Delete("/packages/{id}", cat.DeleteVacuumPackage)
			r.Get("/marinades", cat.ListMarinades)
			r.Post("/marinades", cat.CreateMarinade)
			r.Delete("/marinades/{id}", cat.DeleteMarinade)
			r.Get("/orders", controllers.VacuumListOrders(svcs.Vacuum, logg))
			r.With(weekly).Post("/orders", controllers.VacuumCreateOrder(svcs.Vacuum, logg))
			r.Patch("/orders/{id}/status", controllers.VacuumUpdateStatus(svcs.Vacuum, logg))
		})

		r.Route("/inventory/items", func(r chi.Router) {
			r.Get("/", controllers.InventoryListItems(svcs.Inventory, logg))
			r.Post("/", controllers.InventoryCreateItem(svcs.Inventory, logg))
			r.Delete("/{id}", controllers.InventoryDeleteItem(svcs.Inventory, logg))
			r.With(daily).Post("/{id}/transactions", controllers.InventoryRecordTransaction(svcs.Inventory, logg))
			r.Get("/{id}/log", controllers.InventoryLog(svcs.Inventory, logg))
		})

		r.Route("/ledger/entries", func(r chi.Router) {
			r.Get("/", controllers.LedgerListEntries(svcs.Ledger, logg))
			r.With(weekly).Post("/", controllers.LedgerRecordEntry(svcs.Ledger, logg))
			r.Delete("/{id}", controllers.LedgerDeleteEntry(svcs.Ledger, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/production", reportcontrollers.Production(svcs.Reports, logg))
			r.Get("/packages", reportcontrollers.Packages(svcs.Reports, logg))
			r.Get("/packing", reportcontrollers.Packing(svcs.Reports, logg))
			r.Get("/expiry-labels", reportcontrollers.ExpiryLabels(svcs.Reports, logg))
			r.Get("/delivery-labels", reportcontrollers.DeliveryLabels(svcs.Reports, logg))
			r.Get("/vacuum", reportcontrollers.Vacuum(svcs.Reports, logg))
			r.Get("/route-sheet", reportcontrollers.RouteSheet(svcs.Reports, logg))
			r.Get("/net-profit", controllers.NetProfit(svcs.Ledger, logg))
		})
	})

	return r
}
