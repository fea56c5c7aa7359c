package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money fields are written as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Pack sizes in base units (bottles).
const (
	PackSizeSmall = 12
	PackSizeLarge = 6
)

// MaxActivities is the capacity of the activity log.
const MaxActivities = 50

// ImportType selects which product sizes an import delivers.
type ImportType string

const (
	ImportTypeSmall ImportType = "small"
	ImportTypeLarge ImportType = "large"
	ImportTypeBoth  ImportType = "both"
)

// IncludesSmall reports whether the import type delivers small stock.
func (t ImportType) IncludesSmall() bool {
	return t == ImportTypeSmall || t == ImportTypeBoth
}

// IncludesLarge reports whether the import type delivers large stock.
func (t ImportType) IncludesLarge() bool {
	return t == ImportTypeLarge || t == ImportTypeBoth
}

// Valid reports whether t is a known import type.
func (t ImportType) Valid() bool {
	return t == ImportTypeSmall || t == ImportTypeLarge || t == ImportTypeBoth
}

// ActivityType tags an activity log entry.
type ActivityType string

const (
	ActivityImport ActivityType = "import"
	ActivitySale   ActivityType = "sale"
)

// Document is the root ledger state and the unit of persistence.
type Document struct {
	Meta        Meta           `json:"meta"`
	Settings    Settings       `json:"settings"`
	Inventory   Inventory      `json:"inventory"`
	Imports     []ImportRecord `json:"imports"`
	Sales       []SaleRecord   `json:"sales"`
	BottlesData BottlesData    `json:"bottlesData"`
	Activities  []Activity     `json:"activities"`
}

// Meta describes the factory and the document lifecycle.
type Meta struct {
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Version  string     `json:"version"`
	Created  time.Time  `json:"created"`
	LastSave *time.Time `json:"lastSave"`
}

// Settings holds pack prices and minimum stock thresholds.
type Settings struct {
	PriceSmall decimal.Decimal `json:"priceSmall"`
	PriceLarge decimal.Decimal `json:"priceLarge"`
	MinSmall   int             `json:"minSmall"`
	MinLarge   int             `json:"minLarge"`
}

// Inventory is the on-hand stock in base units.
type Inventory struct {
	Small int `json:"small"`
	Large int `json:"large"`
}

// ImportRecord is a supplier delivery.
type ImportRecord struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Supplier      string          `json:"sup"`
	Type          ImportType      `json:"type"`
	QtySmall      int             `json:"qs"`
	QtyLarge      int             `json:"ql"`
	CostPerBottle decimal.Decimal `json:"costPerBottle"`
	Total         decimal.Decimal `json:"total"`
}

// SaleRecord is a sale of packs. Quantities are in packs.
type SaleRecord struct {
	ID       int64           `json:"id"`
	Date     time.Time       `json:"date"`
	QtySmall int             `json:"qs"`
	QtyLarge int             `json:"ql"`
	Note     string          `json:"note"`
	Total    decimal.Decimal `json:"total"`
}

// BottlesSmall returns the sold small quantity in base units.
func (s SaleRecord) BottlesSmall() int {
	return s.QtySmall * PackSizeSmall
}

// BottlesLarge returns the sold large quantity in base units.
func (s SaleRecord) BottlesLarge() int {
	return s.QtyLarge * PackSizeLarge
}

// BottlesData holds lifetime counters in base units.
type BottlesData struct {
	ImportedSmall int `json:"importedS"`
	ImportedLarge int `json:"importedL"`
	SoldSmall     int `json:"soldS"`
	SoldLarge     int `json:"soldL"`
}

// Activity is one entry of the capped activity log.
type Activity struct {
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Meta.LastSave != nil {
		ls := *d.Meta.LastSave
		c.Meta.LastSave = &ls
	}
	c.Imports = append([]ImportRecord(nil), d.Imports...)
	c.Sales = append([]SaleRecord(nil), d.Sales...)
	c.Activities = append([]Activity(nil), d.Activities...)
	if c.Imports == nil {
		c.Imports = []ImportRecord{}
	}
	if c.Sales == nil {
		c.Sales = []SaleRecord{}
	}
	if c.Activities == nil {
		c.Activities = []Activity{}
	}
	return &c
}
