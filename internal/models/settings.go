package models

import "github.com/shopspring/decimal"

type Settings struct {
	StoreName     string          `json:"store_name"`
	Currency      string          `json:"currency"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	InvoicePrefix string          `json:"invoice_prefix"`
}
