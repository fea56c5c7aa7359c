// Package report derives read-only views of the ledger: monthly profit and loss,
// the sales chart, stock valuation and receipts.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"alkozay-factory-api/internal/model"
)

// ErrInvalidMonth is returned for a month that is not in YYYY-MM form.
var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

const monthLayout = "2006-01"

// ChartMonths is the number of months shown on the sales chart.
const ChartMonths = 6

// Line kinds in the monthly ledger.
const (
	LineSale   = "Sale"
	LineImport = "Import"
)

// LedgerLine is one income or expense entry of a monthly report. Imports carry a
// negative amount.
type LedgerLine struct {
	Date   time.Time       `json:"date"`
	Type   string          `json:"type"`
	Detail string          `json:"detail"`
	Amount decimal.Decimal `json:"amount"`
}

// Monthly is the profit and loss report for one calendar month.
type Monthly struct {
	Month         string            `json:"month"`
	Income        decimal.Decimal   `json:"income"`
	Expense       decimal.Decimal   `json:"expense"`
	Net           decimal.Decimal   `json:"net"`
	SalesCount    int               `json:"salesCount"`
	ImportsCount  int               `json:"importsCount"`
	Bottles       model.BottlesData `json:"bottles"`
	TotalImported int               `json:"totalImported"`
	TotalSold     int               `json:"totalSold"`
	Stock         Stock             `json:"stock"`
	Lines         []LedgerLine      `json:"lines"`
}

// ChartPoint is one bar of the sales chart.
type ChartPoint struct {
	Month string          `json:"month"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return t, nil
}

func inMonth(t time.Time, month string) bool {
	return t.UTC().Format(monthLayout) == month
}

// MonthlyReport builds the report for month. Lifetime bottle counters and the
// current stock are included as they stand today.
func MonthlyReport(doc *model.Document, month string) (Monthly, error) {
	if _, err := ParseMonth(month); err != nil {
		return Monthly{}, err
	}

	r := Monthly{
		Month:   month,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Bottles: doc.BottlesData,
		Stock:   StockOf(doc),
		Lines:   []LedgerLine{},
	}

	for _, s := range doc.Sales {
		if !inMonth(s.Date, month) {
			continue
		}
		r.SalesCount++
		r.Income = r.Income.Add(s.Total)
		r.Lines = append(r.Lines, LedgerLine{
			Date:   s.Date,
			Type:   LineSale,
			Detail: fmt.Sprintf("Sale #%d", s.ID),
			Amount: s.Total,
		})
	}
	for _, i := range doc.Imports {
		if !inMonth(i.Date, month) {
			continue
		}
		r.ImportsCount++
		r.Expense = r.Expense.Add(i.Total)
		r.Lines = append(r.Lines, LedgerLine{
			Date:   i.Date,
			Type:   LineImport,
			Detail: i.Supplier,
			Amount: i.Total.Neg(),
		})
	}

	sort.SliceStable(r.Lines, func(a, b int) bool {
		return r.Lines[a].Date.Before(r.Lines[b].Date)
	})

	r.Net = r.Income.Sub(r.Expense)
	r.TotalImported = doc.BottlesData.ImportedSmall + doc.BottlesData.ImportedLarge
	r.TotalSold = doc.BottlesData.SoldSmall + doc.BottlesData.SoldLarge
	return r, nil
}

// SalesChart sums sales for the ChartMonths months ending with the month of
// now, oldest first.
func SalesChart(sales []model.SaleRecord, now time.Time) []ChartPoint {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	points := make([]ChartPoint, ChartMonths)
	index := make(map[string]int, ChartMonths)
	for i := range points {
		m := first.AddDate(0, i-(ChartMonths-1), 0)
		key := m.Format(monthLayout)
		points[i] = ChartPoint{Month: key, Label: m.Format("Jan"), Total: decimal.Zero}
		index[key] = i
	}

	for _, s := range sales {
		if i, ok := index[s.Date.UTC().Format(monthLayout)]; ok {
			points[i].Total = points[i].Total.Add(s.Total)
		}
	}
	return points
}
