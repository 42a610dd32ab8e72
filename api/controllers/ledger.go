package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/internal/ledger"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

func LedgerRecordEntry(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("ledger", logg)
	}
	return createHandler(logg, svc.RecordEntry)
}

// LedgerListEntries lists entries, optionally narrowed by ?type=.
func LedgerListEntries(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("ledger", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var entryType enums.LedgerEntryType
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			parsed, err := enums.ParseLedgerEntryType(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			entryType = parsed
		}
		entries, err := svc.ListEntries(ctx, entryType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, entries)
	}
}

func LedgerDeleteEntry(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("ledger", logg)
	}
	return deleteHandler(logg, "id", svc.DeleteEntry)
}

// NetProfit reports revenue minus outgoings for ?filter=total|thisMonth.
func NetProfit(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable("ledger", logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		filter, err := ledger.ParseFilter(strings.TrimSpace(r.URL.Query().Get("filter")))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter"))
			return
		}
		report, err := svc.NetProfit(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
