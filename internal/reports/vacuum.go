package reports

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// VacuumLine is the total weight to prepare of one package and marinade pair.
type VacuumLine struct {
	PackageID    uuid.UUID       `json:"package_id"`
	PackageName  string          `json:"package_name"`
	MarinadeID   uuid.UUID       `json:"marinade_id"`
	MarinadeName string          `json:"marinade_name"`
	QuantityKg   decimal.Decimal `json:"quantity_kg"`
}

// VacuumSummary is the vacuum kitchen sheet of a day.
type VacuumSummary struct {
	Date    types.Date      `json:"date"`
	Orders  int             `json:"orders"`
	Lines   []VacuumLine    `json:"lines"`
	TotalKg decimal.Decimal `json:"total_kg"`
}

type vacuumKey struct {
	pkg      uuid.UUID
	marinade uuid.UUID
}

// BuildVacuumSummary sums the kilograms of every order placed on the date by
// package and marinade.
func BuildVacuumSummary(s *Snapshot) VacuumSummary {
	out := VacuumSummary{Date: s.Date, Lines: []VacuumLine{}, TotalKg: decimal.Zero}
	lines := map[vacuumKey]*VacuumLine{}
	for _, order := range s.OrdersPlaced {
		if order.OrderDate != s.Date {
			continue
		}
		out.Orders++
		for _, item := range order.Items {
			key := vacuumKey{pkg: item.PackageID, marinade: item.MarinadeID}
			line := lines[key]
			if line == nil {
				line = &VacuumLine{
					PackageID:    item.PackageID,
					PackageName:  vacuumPackageName(s.VacuumPackages, item.PackageID),
					MarinadeID:   item.MarinadeID,
					MarinadeName: marinadeName(s.Marinades, item.MarinadeID),
					QuantityKg:   decimal.Zero,
				}
				lines[key] = line
			}
			line.QuantityKg = line.QuantityKg.Add(item.QuantityKg)
			out.TotalKg = out.TotalKg.Add(item.QuantityKg)
		}
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, *line)
	}
	sort.Slice(out.Lines, func(i, j int) bool {
		a, b := out.Lines[i], out.Lines[j]
		if a.PackageName != b.PackageName {
			return a.PackageName < b.PackageName
		}
		if a.MarinadeName != b.MarinadeName {
			return a.MarinadeName < b.MarinadeName
		}
		if a.PackageID != b.PackageID {
			return a.PackageID.String() < b.PackageID.String()
		}
		return a.MarinadeID.String() < b.MarinadeID.String()
	})
	return out
}

func vacuumPackageName(packages map[uuid.UUID]models.VacuumPackage, id uuid.UUID) string {
	if p, ok := packages[id]; ok {
		return p.Name
	}
	return UnknownPackage
}

func marinadeName(marinades map[uuid.UUID]models.Marinade, id uuid.UUID) string {
	if m, ok := marinades[id]; ok {
		return m.Name
	}
	return "unknown marinade"
}
