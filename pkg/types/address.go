package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a Kuwait-style delivery address (governorate/area/block/street/house).
type Address struct {
	Governorate string  `json:"governorate" validate:"required"`
	Area        string  `json:"area" validate:"required"`
	Block       string  `json:"block" validate:"required"`
	Street      string  `json:"street" validate:"required"`
	HouseNumber string  `json:"house_number" validate:"required"`
	Building    *string `json:"building,omitempty"`
	Floor       *string `json:"floor,omitempty"`
	Apartment   *string `json:"apartment,omitempty"`
}

// Label renders the address on a single line for labels and route sheets.
func (a Address) Label() string {
	parts := []string{a.Governorate, a.Area, "block " + a.Block, "street " + a.Street, "house " + a.HouseNumber}
	if a.Building != nil && strings.TrimSpace(*a.Building) != "" {
		parts = append(parts, "building "+*a.Building)
	}
	if a.Floor != nil && strings.TrimSpace(*a.Floor) != "" {
		parts = append(parts, "floor "+*a.Floor)
	}
	if a.Apartment != nil && strings.TrimSpace(*a.Apartment) != "" {
		parts = append(parts, "apt "+*a.Apartment)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// Value stores the address as a JSON document.
func (a Address) Value() (driver.Value, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("address: marshal: %w", err)
	}
	return string(payload), nil
}

// Scan decodes the JSON document.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		*a = Address{}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), a); err != nil {
		return fmt.Errorf("address: unmarshal: %w", err)
	}
	return nil
}

// GormDataType declares the column type for gorm migrations.
func (Address) GormDataType() string {
	return "jsonb"
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
