package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alkozay-factory-api/internal/model"
)

func day(m time.Month, d, h int) time.Time {
	return time.Date(2024, m, d, h, 0, 0, 0, time.UTC)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sampleDoc() *model.Document {
	return &model.Document{
		Meta: model.Meta{Name: "Alkozay Water Factory", Location: "Peshawar"},
		Settings: model.Settings{
			PriceSmall: dec(500), PriceLarge: dec(300), MinSmall: 1000, MinLarge: 500,
		},
		Inventory: model.Inventory{Small: 1200, Large: 100},
		Imports: []model.ImportRecord{
			{ID: 3, Date: day(3, 20, 9), Supplier: "Khan Traders", Type: model.ImportTypeSmall, QtySmall: 600, Total: dec(6000)},
			{ID: 2, Date: day(3, 2, 9), Supplier: "Peshawar Plastics", Type: model.ImportTypeBoth, QtySmall: 600, QtyLarge: 112, Total: dec(7120)},
			{ID: 1, Date: day(2, 10, 9), Supplier: "Old Supplier", Type: model.ImportTypeLarge, QtyLarge: 10, Total: dec(100)},
		},
		Sales: []model.SaleRecord{
			{ID: 1710900000123, Date: day(3, 21, 12), QtySmall: 2, Total: dec(1000), Note: "Bilal Store"},
			{ID: 1710300000456, Date: day(3, 5, 12), QtyLarge: 2, Total: dec(600)},
			{ID: 1707000000789, Date: day(1, 20, 12), QtySmall: 1, Total: dec(500)},
		},
		BottlesData: model.BottlesData{ImportedSmall: 1224, ImportedLarge: 122, SoldSmall: 36, SoldLarge: 12},
	}
}

func TestMonthlyReport(t *testing.T) {
	r, err := MonthlyReport(sampleDoc(), "2024-03")
	require.NoError(t, err)

	assert.True(t, r.Income.Equal(dec(1600)))
	assert.True(t, r.Expense.Equal(dec(13120)))
	assert.True(t, r.Net.Equal(dec(-11520)))
	assert.Equal(t, 2, r.SalesCount)
	assert.Equal(t, 2, r.ImportsCount)
	assert.Equal(t, 1346, r.TotalImported)
	assert.Equal(t, 48, r.TotalSold)
	assert.Equal(t, 1300, r.Stock.Total)

	require.Len(t, r.Lines, 4)
	assert.Equal(t, "Peshawar Plastics", r.Lines[0].Detail)
	assert.True(t, r.Lines[0].Amount.Equal(dec(-7120)))
	assert.Equal(t, "Sale #1710300000456", r.Lines[1].Detail)
	assert.Equal(t, LineImport, r.Lines[2].Type)
	assert.Equal(t, LineSale, r.Lines[3].Type)
	for i := 1; i < len(r.Lines); i++ {
		assert.False(t, r.Lines[i].Date.Before(r.Lines[i-1].Date))
	}
}

func TestMonthlyReportEmptyMonth(t *testing.T) {
	r, err := MonthlyReport(sampleDoc(), "2023-07")
	require.NoError(t, err)
	assert.True(t, r.Income.IsZero())
	assert.True(t, r.Net.IsZero())
	assert.Empty(t, r.Lines)
	assert.NotNil(t, r.Lines)
}

func TestMonthlyReportInvalidMonth(t *testing.T) {
	for _, m := range []string{"", "2024", "2024-13", "March", "2024-3-01"} {
		_, err := MonthlyReport(sampleDoc(), m)
		assert.ErrorIs(t, err, ErrInvalidMonth, m)
	}
}

func TestSalesChart(t *testing.T) {
	points := SalesChart(sampleDoc().Sales, day(3, 31, 23))

	require.Len(t, points, ChartMonths)
	months := make([]string, len(points))
	for i, p := range points {
		months[i] = p.Month
	}
	assert.Equal(t, []string{"2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}, months)
	assert.Equal(t, "Oct", points[0].Label)
	assert.True(t, points[3].Total.Equal(dec(500)))
	assert.True(t, points[4].Total.IsZero())
	assert.True(t, points[5].Total.Equal(dec(1600)))
}

func TestStockValue(t *testing.T) {
	st := model.Settings{PriceSmall: dec(500), PriceLarge: dec(300)}

	assert.True(t, StockValue(model.Inventory{Small: 1200, Large: 100}, st).Equal(dec(55000)))
	// 13*500/12 = 541.67, 7*300/6 = 350
	assert.True(t, StockValue(model.Inventory{Small: 13, Large: 7}, st).Equal(dec(892)))
	assert.True(t, StockValue(model.Inventory{}, st).IsZero())
}

func TestPacksOnHand(t *testing.T) {
	s, l := PacksOnHand(model.Inventory{Small: 25, Large: 17})
	assert.Equal(t, 2, s)
	assert.Equal(t, 2, l)
}

func TestLowStock(t *testing.T) {
	st := model.Settings{MinSmall: 1000, MinLarge: 500}

	alerts := LowStock(model.Inventory{Small: 1200, Large: 100}, st)
	assert.Equal(t, []Alert{{Size: "large", OnHand: 100, Minimum: 500}}, alerts)

	assert.Len(t, LowStock(model.Inventory{}, st), 2)
	assert.Empty(t, LowStock(model.Inventory{Small: 1000, Large: 500}, st))
}

func TestReceipt(t *testing.T) {
	doc := sampleDoc()
	out := Receipt(doc, doc.Sales[0])

	assert.Contains(t, out, "Alkozay Water Factory")
	assert.Contains(t, out, "Receipt #000123")
	assert.Contains(t, out, "Small Packs x 2")
	assert.NotContains(t, out, "Large Packs")
	assert.Contains(t, out, "Customer: Bilal Store")
	assert.Regexp(t, `TOTAL\s+1,000\n`, out)

	out = Receipt(doc, doc.Sales[1])
	assert.Contains(t, out, "Large Packs x 2")
	assert.Contains(t, out, "Customer: N/A")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatMoney(dec(1234567)))
	assert.Equal(t, "12.50", FormatMoney(decimal.RequireFromString("12.5")))
	assert.Equal(t, "-7,120", FormatMoney(dec(-7120)))
}

func TestWriteMonthlyXLSX(t *testing.T) {
	r, err := MonthlyReport(sampleDoc(), "2024-03")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Ledger"}, f.GetSheetList())

	month, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", month)

	rows, err := f.GetRows("Ledger")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Date", "Type", "Detail", "Amount"}, rows[0])
	assert.Equal(t, "2024-03-02", rows[1][0])
	assert.True(t, strings.HasPrefix(rows[1][3], "-7120"))
}

func TestXLSXFileName(t *testing.T) {
	assert.Equal(t, "alkozay_report_2024-03.xlsx", XLSXFileName("2024-03"))
}
