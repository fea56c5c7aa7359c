package model

import "github.com/shopspring/decimal"

// Stats is the dashboard summary computed from a document.
type Stats struct {
	Inventory InventoryStats `json:"inventory"`
	Sales     TotalsStats    `json:"sales"`
	Imports   TotalsStats    `json:"imports"`
	Bottles   BottlesData    `json:"bottles"`
}

// InventoryStats is an inventory snapshot with its combined total.
type InventoryStats struct {
	Small int `json:"small"`
	Large int `json:"large"`
	Total int `json:"total"`
}

// TotalsStats sums record totals for today and for all time.
type TotalsStats struct {
	Today decimal.Decimal `json:"today"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// SettingsPatch carries a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Name       *string          `json:"name,omitempty"`
	Location   *string          `json:"location,omitempty"`
	PriceSmall *decimal.Decimal `json:"priceSmall,omitempty"`
	PriceLarge *decimal.Decimal `json:"priceLarge,omitempty"`
	MinSmall   *int             `json:"minSmall,omitempty"`
	MinLarge   *int             `json:"minLarge,omitempty"`
}
