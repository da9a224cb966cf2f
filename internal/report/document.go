package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/models"
)

// InvoiceDocument is everything a receipt or invoice renderer needs. It is
// a snapshot and never changes after it is built.
type InvoiceDocument struct {
	StoreName     string               `json:"store_name"`
	Currency      string               `json:"currency"`
	InvoiceNumber string               `json:"invoice_number"`
	IssuedAt      time.Time            `json:"issued_at"`
	Status        models.SaleStatus    `json:"status"`
	Customer      *models.Customer     `json:"customer,omitempty"`
	SellerID      uuid.UUID            `json:"seller_id"`
	Lines         []models.SaleItem    `json:"lines"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	VATRate       decimal.Decimal      `json:"vat_rate"`
	VATAmount     decimal.Decimal      `json:"vat_amount"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	ChangeDue     decimal.Decimal      `json:"change_due"`
	Balance       decimal.Decimal      `json:"balance"`
}

func NewInvoiceDocument(settings models.Settings, sale models.Sale, customer *models.Customer) InvoiceDocument {
	lines := make([]models.SaleItem, len(sale.Items))
	copy(lines, sale.Items)

	var c *models.Customer
	if customer != nil {
		cp := *customer
		c = &cp
	}

	return InvoiceDocument{
		StoreName:     settings.StoreName,
		Currency:      settings.Currency,
		InvoiceNumber: sale.InvoiceNumber,
		IssuedAt:      sale.CreatedAt,
		Status:        sale.Status,
		Customer:      c,
		SellerID:      sale.SellerID,
		Lines:         lines,
		Subtotal:      sale.Subtotal,
		VATRate:       sale.VATRate,
		VATAmount:     sale.VATAmount,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		AmountPaid:    sale.AmountPaid,
		ChangeDue:     sale.ChangeDue,
		Balance:       decimal.Max(sale.Total.Sub(sale.AmountPaid), decimal.Zero),
	}
}
