package sales

import (
	"github.com/shopspring/decimal"

	"ledger-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATRate   decimal.Decimal `json:"vat_rate"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`
}

// ComputeTotals sums the lines and applies VAT, rounded to cents.
func ComputeTotals(lines []models.CartLine, vatRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	vat := subtotal.Mul(vatRatePercent).Div(hundred).Round(2)
	return Totals{
		Subtotal:  subtotal,
		VATRate:   vatRatePercent,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}
}
