// Package export writes ledger data as delimited text for spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"ledger-service/internal/models"
)

type Kind string

const (
	KindProducts  Kind = "products"
	KindSales     Kind = "sales"
	KindDebts     Kind = "debts"
	KindMovements Kind = "movements"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindProducts, KindSales, KindDebts, KindMovements:
		return k, nil
	}
	return "", fmt.Errorf("unknown export %q", s)
}

// Writer emits one table per call. Fields holding the delimiter, a quote or
// a line break are quoted, with inner quotes doubled.
type Writer struct {
	w *csv.Writer
}

func NewWriter(w io.Writer, delimiter rune) (*Writer, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	if delimiter == '"' || delimiter == '\r' || delimiter == '\n' || delimiter == utf8.RuneError {
		return nil, fmt.Errorf("invalid delimiter %q", delimiter)
	}
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	return &Writer{w: cw}, nil
}

// ParseDelimiter accepts a single character or the names "tab" and "semicolon".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	case "semicolon":
		return ';', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r, nil
}

func (w *Writer) write(header []string, rows [][]string) error {
	if err := w.w.Write(header); err != nil {
		return err
	}
	if err := w.w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func (w *Writer) Products(products []models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.ProductID.String(),
			p.SKU,
			p.Name,
			p.PurchasePrice.StringFixed(2),
			p.SalePrice.StringFixed(2),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.MinQuantity),
		})
	}
	return w.write([]string{"product_id", "sku", "name", "purchase_price", "sale_price", "quantity", "min_quantity"}, rows)
}

func (w *Writer) Sales(sales []models.Sale) error {
	rows := make([][]string, 0, len(sales))
	for _, s := range sales {
		customer := ""
		if s.CustomerID != nil {
			customer = s.CustomerID.String()
		}
		rows = append(rows, []string{
			s.InvoiceNumber,
			s.CreatedAt.Format(time.RFC3339),
			string(s.Status),
			customer,
			strconv.Itoa(len(s.Items)),
			s.Subtotal.StringFixed(2),
			s.VATAmount.StringFixed(2),
			s.Total.StringFixed(2),
			string(s.PaymentMethod),
			s.AmountPaid.StringFixed(2),
		})
	}
	return w.write([]string{"invoice", "created_at", "status", "customer_id", "items", "subtotal", "vat", "total", "payment_method", "paid"}, rows)
}

func (w *Writer) Debts(debts []models.Debt) error {
	rows := make([][]string, 0, len(debts))
	for _, d := range debts {
		due := ""
		if d.DueDate != nil {
			due = d.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			d.DebtID.String(),
			d.CustomerID.String(),
			d.Amount.StringFixed(2),
			d.Paid.StringFixed(2),
			d.Remaining.StringFixed(2),
			string(d.Status),
			due,
		})
	}
	return w.write([]string{"debt_id", "customer_id", "amount", "paid", "remaining", "status", "due_date"}, rows)
}

func (w *Writer) Movements(movements []models.StockMovement) error {
	rows := make([][]string, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []string{
			m.CreatedAt.Format(time.RFC3339),
			m.ProductID.String(),
			string(m.Direction),
			strconv.Itoa(m.Quantity),
			m.Reason,
			m.ActorID.String(),
		})
	}
	return w.write([]string{"created_at", "product_id", "direction", "quantity", "reason", "actor_id"}, rows)
}
