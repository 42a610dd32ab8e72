package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Selections maps a slot key ("lunch-1") to the chosen meal.
type Selections map[string]uuid.UUID

// Clone returns an independent copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Value stores selections as a JSON object.
func (s Selections) Value() (driver.Value, error) {
	if s == nil {
		s = Selections{}
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("selections: marshal: %w", err)
	}
	return string(payload), nil
}

// Scan decodes the JSON object.
func (s *Selections) Scan(value interface{}) error {
	if value == nil {
		*s = Selections{}
		return nil
	}
	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("selections: unsupported scan type %T", value)
	}
	out := Selections{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("selections: unmarshal: %w", err)
		}
	}
	*s = out
	return nil
}

// GormDataType declares the column type for gorm migrations.
func (Selections) GormDataType() string {
	return "jsonb"
}
