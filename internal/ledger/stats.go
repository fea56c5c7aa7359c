package ledger

import (
	"time"

	"alkozay-factory-api/internal/model"
)

// ComputeStats summarises doc. "Today" is the UTC calendar day of now, matching how
// record dates are stored.
func ComputeStats(doc *model.Document, now time.Time) model.Stats {
	today := now.UTC().Format(time.DateOnly)

	var sales model.TotalsStats
	for _, s := range doc.Sales {
		sales.Total = sales.Total.Add(s.Total)
		if sameDay(s.Date, today) {
			sales.Today = sales.Today.Add(s.Total)
		}
	}
	sales.Count = len(doc.Sales)

	var imports model.TotalsStats
	for _, i := range doc.Imports {
		imports.Total = imports.Total.Add(i.Total)
		if sameDay(i.Date, today) {
			imports.Today = imports.Today.Add(i.Total)
		}
	}
	imports.Count = len(doc.Imports)

	return model.Stats{
		Inventory: model.InventoryStats{
			Small: doc.Inventory.Small,
			Large: doc.Inventory.Large,
			Total: doc.Inventory.Small + doc.Inventory.Large,
		},
		Sales:   sales,
		Imports: imports,
		Bottles: doc.BottlesData,
	}
}

func sameDay(t time.Time, day string) bool {
	return t.UTC().Format(time.DateOnly) == day
}
