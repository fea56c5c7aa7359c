package report

import (
	"github.com/shopspring/decimal"

	"alkozay-factory-api/internal/model"
)

// Alert flags a size whose stock is below its minimum.
type Alert struct {
	Size    string `json:"size"`
	OnHand  int    `json:"onHand"`
	Minimum int    `json:"minimum"`
}

// Stock is the inventory view: bottles, whole packs, value and alerts.
type Stock struct {
	Small      int             `json:"small"`
	Large      int             `json:"large"`
	Total      int             `json:"total"`
	PacksSmall int             `json:"packsSmall"`
	PacksLarge int             `json:"packsLarge"`
	Value      decimal.Decimal `json:"value"`
	Alerts     []Alert         `json:"alerts"`
}

// StockOf builds the inventory view of doc.
func StockOf(doc *model.Document) Stock {
	inv := doc.Inventory
	ps, pl := PacksOnHand(inv)
	return Stock{
		Small:      inv.Small,
		Large:      inv.Large,
		Total:      inv.Small + inv.Large,
		PacksSmall: ps,
		PacksLarge: pl,
		Value:      StockValue(inv, doc.Settings),
		Alerts:     LowStock(inv, doc.Settings),
	}
}

// StockValue prices the on-hand bottles at the current pack prices, rounded to
// a whole amount.
func StockValue(inv model.Inventory, st model.Settings) decimal.Decimal {
	small := decimal.NewFromInt(int64(inv.Small)).Mul(st.PriceSmall).Div(decimal.NewFromInt(model.PackSizeSmall))
	large := decimal.NewFromInt(int64(inv.Large)).Mul(st.PriceLarge).Div(decimal.NewFromInt(model.PackSizeLarge))
	return small.Add(large).Round(0)
}

// PacksOnHand returns the number of whole packs in stock for each size.
func PacksOnHand(inv model.Inventory) (small, large int) {
	return inv.Small / model.PackSizeSmall, inv.Large / model.PackSizeLarge
}

// LowStock lists the sizes whose stock is below the configured minimum.
func LowStock(inv model.Inventory, st model.Settings) []Alert {
	alerts := []Alert{}
	if inv.Small < st.MinSmall {
		alerts = append(alerts, Alert{Size: "small", OnHand: inv.Small, Minimum: st.MinSmall})
	}
	if inv.Large < st.MinLarge {
		alerts = append(alerts, Alert{Size: "large", OnHand: inv.Large, Minimum: st.MinLarge})
	}
	return alerts
}
