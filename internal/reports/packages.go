package reports

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// PackageColumn heads one column of the packages matrix.
type PackageColumn struct {
	PackageID uuid.UUID `json:"package_id"`
	Name      string    `json:"name"`
}

// MatrixRow counts one meal across packages. Total is the row total.
type MatrixRow struct {
	MealID uuid.UUID         `json:"meal_id"`
	Name   string            `json:"name"`
	Counts map[uuid.UUID]int `json:"counts"`
	Total  int               `json:"total"`
}

// CategoryMatrix is the block of rows of one category with its subtotals.
type CategoryMatrix struct {
	Category enums.MealCategory `json:"category"`
	Rows     []MatrixRow        `json:"rows"`
	Totals   map[uuid.UUID]int  `json:"totals"`
	Total    int                `json:"total"`
}

// PackagesMatrix is the package by meal breakdown of a day.
type PackagesMatrix struct {
	Date         types.Date        `json:"date"`
	Packages     []PackageColumn   `json:"packages"`
	Categories   []CategoryMatrix  `json:"categories"`
	ColumnTotals map[uuid.UUID]int `json:"column_totals"`
	GrandTotal   int               `json:"grand_total"`
}

// BuildPackagesMatrix counts selected meals per package. Columns follow the
// catalog; a package referenced by a subscription but missing from the catalog
// gets an extra "unknown package" column.
func BuildPackagesMatrix(s *Snapshot) PackagesMatrix {
	out := PackagesMatrix{
		Date:         s.Date,
		Packages:     make([]PackageColumn, 0, len(s.Packages)),
		Categories:   []CategoryMatrix{},
		ColumnTotals: map[uuid.UUID]int{},
	}
	columns := map[uuid.UUID]bool{}
	for _, p := range s.Packages {
		out.Packages = append(out.Packages, PackageColumn{PackageID: p.ID, Name: p.Name})
		columns[p.ID] = true
	}

	rows := map[enums.MealCategory]map[uuid.UUID]*MatrixRow{}
	for _, sub := range s.Served() {
		picks := s.picks(sub)
		if len(picks) > 0 && !columns[sub.PackageID] {
			out.Packages = append(out.Packages, PackageColumn{PackageID: sub.PackageID, Name: UnknownPackage})
			columns[sub.PackageID] = true
		}
		for _, p := range picks {
			block := rows[p.category]
			if block == nil {
				block = map[uuid.UUID]*MatrixRow{}
				rows[p.category] = block
			}
			row := block[p.mealID]
			if row == nil {
				row = &MatrixRow{MealID: p.mealID, Name: p.name(), Counts: map[uuid.UUID]int{}}
				block[p.mealID] = row
			}
			row.Counts[sub.PackageID]++
		}
	}

	less := s.mealLess()
	for _, category := range enums.MealCategoryOrder {
		block := rows[category]
		if len(block) == 0 {
			continue
		}
		cm := CategoryMatrix{Category: category, Rows: make([]MatrixRow, 0, len(block)), Totals: map[uuid.UUID]int{}}
		for _, row := range block {
			for pkgID, n := range row.Counts {
				row.Total += n
				cm.Totals[pkgID] += n
				out.ColumnTotals[pkgID] += n
			}
			cm.Total += row.Total
			cm.Rows = append(cm.Rows, *row)
		}
		sort.Slice(cm.Rows, func(i, j int) bool { return less(cm.Rows[i].MealID, cm.Rows[j].MealID) })
		out.GrandTotal += cm.Total
		out.Categories = append(out.Categories, cm)
	}
	return out
}
