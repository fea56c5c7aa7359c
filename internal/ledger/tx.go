package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"alkozay-factory-api/internal/model"
)

// ImportInput describes a supplier delivery. Quantities are bottles.
type ImportInput struct {
	Supplier      string
	Type          model.ImportType
	QtySmall      int
	QtyLarge      int
	CostPerBottle decimal.Decimal
}

// SaleInput describes a sale. Quantities are packs.
type SaleInput struct {
	QtySmall int
	QtyLarge int
	Note     string
}

// Tx applies operations to the document held by a Store. It is only valid inside
// the Store call that created it.
type Tx struct {
	doc *model.Document
	ids IDGenerator
	now func() time.Time
}

// RecordImport validates in, adds the delivery to inventory and prepends the
// record to the import log.
func (tx *Tx) RecordImport(in ImportInput) (model.ImportRecord, error) {
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return model.ImportRecord{}, ErrInvalidSupplier
	}
	if !in.Type.Valid() {
		return model.ImportRecord{}, ErrInvalidMode
	}
	if !in.CostPerBottle.IsPositive() {
		return model.ImportRecord{}, ErrInvalidCost
	}
	if in.QtySmall < 0 || in.QtyLarge < 0 {
		return model.ImportRecord{}, ErrInvalidQuantity
	}

	qs, ql := in.QtySmall, in.QtyLarge
	if !in.Type.IncludesSmall() {
		qs = 0
	}
	if !in.Type.IncludesLarge() {
		ql = 0
	}
	switch in.Type {
	case model.ImportTypeSmall:
		if qs <= 0 {
			return model.ImportRecord{}, ErrInvalidQuantity
		}
	case model.ImportTypeLarge:
		if ql <= 0 {
			return model.ImportRecord{}, ErrInvalidQuantity
		}
	default:
		if qs <= 0 && ql <= 0 {
			return model.ImportRecord{}, ErrInvalidQuantity
		}
	}

	inv, bd := tx.doc.Inventory, tx.doc.BottlesData
	if !fits(inv.Small, qs) || !fits(inv.Large, ql) ||
		!fits(bd.ImportedSmall, qs) || !fits(bd.ImportedLarge, ql) || !fits(qs, ql) {
		return model.ImportRecord{}, fmt.Errorf("%w: quantity too large", ErrInvalidQuantity)
	}

	now := tx.now().UTC()
	rec := model.ImportRecord{
		ID:            tx.ids.NextID(),
		Date:          now,
		Supplier:      supplier,
		Type:          in.Type,
		QtySmall:      qs,
		QtyLarge:      ql,
		CostPerBottle: in.CostPerBottle,
		Total:         decimal.NewFromInt(int64(qs + ql)).Mul(in.CostPerBottle),
	}

	tx.doc.Inventory.Small += qs
	tx.doc.Inventory.Large += ql
	tx.doc.BottlesData.ImportedSmall += qs
	tx.doc.BottlesData.ImportedLarge += ql

	tx.doc.Imports = append([]model.ImportRecord{rec}, tx.doc.Imports...)
	tx.addActivity(model.ActivityImport, fmt.Sprintf("Imported %d bottles", qs+ql), now)
	return rec, nil
}

// DeleteImport removes import id. Inventory is reduced by the delivered
// quantities but never below zero; the lifetime import counters are reduced
// without a floor.
func (tx *Tx) DeleteImport(id int64) (model.ImportRecord, error) {
	i := indexOfImport(tx.doc.Imports, id)
	if i < 0 {
		return model.ImportRecord{}, ErrImportNotFound
	}
	rec := tx.doc.Imports[i]

	if rec.Type.IncludesSmall() {
		tx.doc.Inventory.Small = max(0, tx.doc.Inventory.Small-rec.QtySmall)
		tx.doc.BottlesData.ImportedSmall -= rec.QtySmall
	}
	if rec.Type.IncludesLarge() {
		tx.doc.Inventory.Large = max(0, tx.doc.Inventory.Large-rec.QtyLarge)
		tx.doc.BottlesData.ImportedLarge -= rec.QtyLarge
	}

	tx.doc.Imports = append(tx.doc.Imports[:i:i], tx.doc.Imports[i+1:]...)
	return rec, nil
}

// RecordSale sells packs at the current prices. The stock check happens before
// any field is touched, so a rejected sale leaves the document unchanged.
func (tx *Tx) RecordSale(in SaleInput) (model.SaleRecord, error) {
	if in.QtySmall < 0 || in.QtyLarge < 0 {
		return model.SaleRecord{}, ErrInvalidQuantity
	}
	if in.QtySmall == 0 && in.QtyLarge == 0 {
		return model.SaleRecord{}, ErrInvalidQuantity
	}
	if in.QtySmall > math.MaxInt/model.PackSizeSmall || in.QtyLarge > math.MaxInt/model.PackSizeLarge ||
		!fits(in.QtySmall, in.QtyLarge) {
		return model.SaleRecord{}, fmt.Errorf("%w: quantity too large", ErrInvalidQuantity)
	}

	bottlesSmall := in.QtySmall * model.PackSizeSmall
	bottlesLarge := in.QtyLarge * model.PackSizeLarge
	inv := tx.doc.Inventory
	bd := tx.doc.BottlesData
	if !fits(bd.SoldSmall, bottlesSmall) || !fits(bd.SoldLarge, bottlesLarge) {
		return model.SaleRecord{}, fmt.Errorf("%w: quantity too large", ErrInvalidQuantity)
	}
	if bottlesSmall > inv.Small || bottlesLarge > inv.Large {
		return model.SaleRecord{}, fmt.Errorf("%w: need %d small and %d large bottles, have %d and %d",
			ErrInsufficientStock, bottlesSmall, bottlesLarge, inv.Small, inv.Large)
	}

	tx.doc.Inventory.Small -= bottlesSmall
	tx.doc.Inventory.Large -= bottlesLarge
	tx.doc.BottlesData.SoldSmall += bottlesSmall
	tx.doc.BottlesData.SoldLarge += bottlesLarge

	now := tx.now().UTC()
	st := tx.doc.Settings
	rec := model.SaleRecord{
		ID:       tx.ids.NextID(),
		Date:     now,
		QtySmall: in.QtySmall,
		QtyLarge: in.QtyLarge,
		Note:     strings.TrimSpace(in.Note),
		Total: decimal.NewFromInt(int64(in.QtySmall)).Mul(st.PriceSmall).
			Add(decimal.NewFromInt(int64(in.QtyLarge)).Mul(st.PriceLarge)),
	}

	tx.doc.Sales = append([]model.SaleRecord{rec}, tx.doc.Sales...)
	tx.addActivity(model.ActivitySale, fmt.Sprintf("Sold %d packs", in.QtySmall+in.QtyLarge), now)
	return rec, nil
}

// DeleteSale removes sale id and returns its bottles to stock.
func (tx *Tx) DeleteSale(id int64) (model.SaleRecord, error) {
	i := indexOfSale(tx.doc.Sales, id)
	if i < 0 {
		return model.SaleRecord{}, ErrSaleNotFound
	}
	rec := tx.doc.Sales[i]

	tx.doc.Inventory.Small += rec.BottlesSmall()
	tx.doc.Inventory.Large += rec.BottlesLarge()
	tx.doc.BottlesData.SoldSmall -= rec.BottlesSmall()
	tx.doc.BottlesData.SoldLarge -= rec.BottlesLarge()

	tx.doc.Sales = append(tx.doc.Sales[:i:i], tx.doc.Sales[i+1:]...)
	return rec, nil
}

func (tx *Tx) addActivity(kind model.ActivityType, description string, at time.Time) {
	entry := model.Activity{Type: kind, Description: description, Timestamp: at}
	acts := append([]model.Activity{entry}, tx.doc.Activities...)
	if len(acts) > model.MaxActivities {
		acts = acts[:model.MaxActivities]
	}
	tx.doc.Activities = acts
}

// fits reports whether a+n stays within int for a non-negative n.
func fits(a, n int) bool {
	return a < 0 || n <= math.MaxInt-a
}

func indexOfImport(recs []model.ImportRecord, id int64) int {
	for i := range recs {
		if recs[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfSale(recs []model.SaleRecord, id int64) int {
	for i := range recs {
		if recs[i].ID == id {
			return i
		}
	}
	return -1
}
