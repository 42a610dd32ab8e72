package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// ParseUUIDParam reads a required uuid path parameter.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, key+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseDateParam reads a required YYYY-MM-DD path parameter.
func ParseDateParam(r *http.Request, key string) (types.Date, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return types.Date{}, pkgerrors.New(pkgerrors.CodeValidation, key+" is required")
	}
	d, err := types.ParseDate(raw)
	if err != nil || !d.IsValid() {
		return types.Date{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetails(map[string]any{"field": key})
	}
	return d, nil
}
