package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"alkozay-factory-api/internal/model"
)

const receiptWidth = 36

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands grouping, dropping the fraction
// when it is zero.
func FormatMoney(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("%d", d.IntPart())
	}
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

// ReceiptNumber is the short number printed on a receipt: the last six digits
// of the sale id.
func ReceiptNumber(id int64) string {
	s := fmt.Sprint(id)
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	return s
}

// Receipt renders a plain-text receipt for sale. Line items are priced at the
// current settings; the total is the one stored with the sale.
func Receipt(doc *model.Document, sale model.SaleRecord) string {
	var b strings.Builder

	center(&b, doc.Meta.Name)
	center(&b, doc.Meta.Location)
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")
	fmt.Fprintf(&b, "Receipt #%s\n", ReceiptNumber(sale.ID))
	fmt.Fprintf(&b, "Date: %s\n", sale.Date.UTC().Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")

	if sale.QtySmall > 0 {
		amount := decimal.NewFromInt(int64(sale.QtySmall)).Mul(doc.Settings.PriceSmall)
		item(&b, fmt.Sprintf("Small Packs x %d", sale.QtySmall), FormatMoney(amount))
	}
	if sale.QtyLarge > 0 {
		amount := decimal.NewFromInt(int64(sale.QtyLarge)).Mul(doc.Settings.PriceLarge)
		item(&b, fmt.Sprintf("Large Packs x %d", sale.QtyLarge), FormatMoney(amount))
	}
	b.WriteString(strings.Repeat("=", receiptWidth) + "\n")
	item(&b, "TOTAL", FormatMoney(sale.Total))
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")

	customer := sale.Note
	if customer == "" {
		customer = "N/A"
	}
	fmt.Fprintf(&b, "Customer: %s\n\n", customer)
	center(&b, "Thank you for your business!")
	return b.String()
}

func center(b *strings.Builder, s string) {
	if pad := (receiptWidth - len(s)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s + "\n")
}

func item(b *strings.Builder, label, amount string) {
	gap := receiptWidth - len(label) - len(amount)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label + strings.Repeat(" ", gap) + amount + "\n")
}
