// Package report aggregates committed sales and builds read-only documents
// for receipts and invoices.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/models"
)

const dateLayout = "2006-01-02"

// Range is a half-open [From, To) time window. A zero bound is unbounded.
type Range struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// ParseRange reads yyyy-mm-dd bounds. The to date is inclusive, so the
// window ends at the following midnight.
func ParseRange(from, to string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}

	var r Range
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return Range{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		r.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return Range{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		r.To = t.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return Range{}, fmt.Errorf("from date %s is after to date %s", from, to)
	}
	return r, nil
}

// FilterSales keeps the sales created inside r.
func FilterSales(sales []models.Sale, r Range) []models.Sale {
	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if r.Contains(s.CreatedAt) {
			out = append(out, s)
		}
	}
	return out
}

type PaymentTotal struct {
	Method models.PaymentMethod `json:"method"`
	Count  int                  `json:"count"`
	Total  decimal.Decimal      `json:"total"`
}

type SalesSummary struct {
	Range       Range           `json:"range"`
	Count       int             `json:"count"`
	Completed   int             `json:"completed"`
	Cancelled   int             `json:"cancelled"`
	Net         decimal.Decimal `json:"net"`
	VAT         decimal.Decimal `json:"vat"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Deferred    decimal.Decimal `json:"deferred"`
	ByPayment   []PaymentTotal  `json:"by_payment"`
}

// Summarize totals the completed sales inside r. Cancelled sales are only
// counted.
func Summarize(sales []models.Sale, r Range) SalesSummary {
	summary := SalesSummary{
		Range:       r,
		Net:         decimal.Zero,
		VAT:         decimal.Zero,
		Revenue:     decimal.Zero,
		Cost:        decimal.Zero,
		GrossProfit: decimal.Zero,
		Deferred:    decimal.Zero,
		ByPayment:   make([]PaymentTotal, 0, 4),
	}
	byPayment := map[models.PaymentMethod]*PaymentTotal{}

	for _, s := range sales {
		if !r.Contains(s.CreatedAt) {
			continue
		}
		summary.Count++
		if s.Status == models.SaleStatusCancelled {
			summary.Cancelled++
			continue
		}
		if s.Status != models.SaleStatusCompleted {
			continue
		}

		summary.Completed++
		summary.Net = summary.Net.Add(s.Subtotal)
		summary.VAT = summary.VAT.Add(s.VATAmount)
		summary.Revenue = summary.Revenue.Add(s.Total)
		summary.Cost = summary.Cost.Add(s.Cost())
		if unpaid := s.Total.Sub(s.AmountPaid); unpaid.IsPositive() {
			summary.Deferred = summary.Deferred.Add(unpaid)
		}

		payment := byPayment[s.PaymentMethod]
		if payment == nil {
			payment = &PaymentTotal{Method: s.PaymentMethod, Total: decimal.Zero}
			byPayment[s.PaymentMethod] = payment
		}
		payment.Count++
		payment.Total = payment.Total.Add(s.Total)
	}

	summary.GrossProfit = summary.Net.Sub(summary.Cost)
	for _, p := range byPayment {
		summary.ByPayment = append(summary.ByPayment, *p)
	}
	slices.SortFunc(summary.ByPayment, func(a, b PaymentTotal) int {
		return cmp.Compare(a.Method, b.Method)
	})

	return summary
}

type ProductTotal struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopProducts ranks products by units sold in completed sales. n <= 0
// returns every product.
func TopProducts(sales []models.Sale, r Range, n int) []ProductTotal {
	totals := map[uuid.UUID]*ProductTotal{}
	for _, s := range sales {
		if s.Status != models.SaleStatusCompleted || !r.Contains(s.CreatedAt) {
			continue
		}
		for _, item := range s.Items {
			t := totals[item.ProductID]
			if t == nil {
				t = &ProductTotal{ProductID: item.ProductID, Name: item.Name, SKU: item.SKU, Revenue: decimal.Zero}
				totals[item.ProductID] = t
			}
			t.Quantity += item.Quantity
			t.Revenue = t.Revenue.Add(item.LineTotal)
		}
	}

	out := make([]ProductTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b ProductTotal) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.SKU, b.SKU)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
