package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ledger-service/internal/debts"
	"ledger-service/internal/ids"
	"ledger-service/internal/inventory"
	"ledger-service/internal/logger"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

// StockMover is the part of the inventory ledger a sale needs.
type StockMover interface {
	Debit(ctx context.Context, lines []inventory.Line, reason string, actorID uuid.UUID, saleID *uuid.UUID) ([]models.StockMovement, error)
	Credit(ctx context.Context, lines []inventory.Line, reason string, actorID uuid.UUID, saleID *uuid.UUID) ([]models.StockMovement, error)
}

// DebtOpener opens the debt left by a partially paid mixed sale. Check runs
// before any stock moves so that Open cannot fail for a valid request.
type DebtOpener interface {
	Check(ctx context.Context, req debts.OpenRequest) error
	Open(ctx context.Context, req debts.OpenRequest) (*models.Debt, error)
}

type CustomerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Reader is the read-only view of committed sales.
type Reader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context) ([]models.Sale, error)
}

type Deps struct {
	Products  repository.ProductReader
	Sales     repository.SaleRepository
	Stock     StockMover
	Debts     DebtOpener
	Customers CustomerLookup
	Numberer  *Numberer
	IDs       ids.Generator
	Now       func() time.Time
}

// CommitRequest carries everything needed to finalize a cart.
type CommitRequest struct {
	Lines         []models.CartLine
	CustomerID    *uuid.UUID
	PaymentMethod models.PaymentMethod
	AmountPaid    decimal.Decimal
	SellerID      uuid.UUID
	VATRate       decimal.Decimal
	// DueDate applies to the debt opened for an unpaid remainder.
	DueDate *time.Time
}

// Engine commits and cancels sales. Commits are serialised so that stock
// checks and invoice numbers never interleave.
type Engine struct {
	mu sync.Mutex

	products  repository.ProductReader
	sales     repository.SaleRepository
	stock     StockMover
	debts     DebtOpener
	customers CustomerLookup
	numberer  *Numberer
	ids       ids.Generator
	now       func() time.Time
	log       zerolog.Logger
}

func NewEngine(d Deps) *Engine {
	if d.IDs == nil {
		d.IDs = ids.Random{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Numberer == nil {
		d.Numberer = &Numberer{mode: SequenceGlobal, prefix: DefaultInvoicePrefix}
	}
	return &Engine{
		products:  d.Products,
		sales:     d.Sales,
		stock:     d.Stock,
		debts:     d.Debts,
		customers: d.Customers,
		numberer:  d.Numberer,
		ids:       d.IDs,
		now:       d.Now,
		log:       logger.WithComponent("sales"),
	}
}

var _ Reader = (*Engine)(nil)

// AddToCart resolves the product and adds it to the cart.
func (e *Engine) AddToCart(ctx context.Context, cart *Cart, productID uuid.UUID, qty int) error {
	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return cart.AddLine(*product, qty)
}

func (e *Engine) UpdateCartLine(ctx context.Context, cart *Cart, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		cart.RemoveLine(productID)
		return nil
	}
	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return cart.UpdateLine(*product, qty)
}

// Commit finalizes the lines into a completed sale. On any error nothing is
// recorded and stock is left as it was. The caller clears its cart.
func (e *Engine) Commit(ctx context.Context, req CommitRequest) (*models.Sale, error) {
	if len(req.Lines) == 0 {
		return nil, repository.ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", repository.ErrInvalidInput, req.PaymentMethod)
	}
	if req.AmountPaid.IsNegative() {
		return nil, fmt.Errorf("%w: paid amount cannot be negative", repository.ErrInvalidAmount)
	}
	if req.VATRate.IsNegative() {
		return nil, fmt.Errorf("%w: VAT rate cannot be negative", repository.ErrInvalidAmount)
	}

	stockLines := make([]inventory.Line, 0, len(req.Lines))
	items := make([]models.SaleItem, 0, len(req.Lines))
	lines := make([]models.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %s has quantity %d", repository.ErrInvalidAmount, l.SKU, l.Quantity)
		}
		l.LineTotal = lineTotal(l.UnitPrice, l.Quantity)
		lines = append(lines, l)
		stockLines = append(stockLines, inventory.Line{ProductID: l.ProductID, Quantity: l.Quantity})
		items = append(items, models.SaleItem(l))
	}

	totals := ComputeTotals(lines, req.VATRate)
	unpaid := totals.Total.Sub(req.AmountPaid)

	openDebt := false
	if unpaid.IsPositive() {
		if req.PaymentMethod != models.PaymentMixed {
			return nil, fmt.Errorf("%w: paid %s of %s",
				repository.ErrInsufficientPayment, req.AmountPaid.StringFixed(2), totals.Total.StringFixed(2))
		}
		if req.CustomerID == nil || *req.CustomerID == uuid.Nil {
			return nil, fmt.Errorf("%w: a customer is required to defer payment", repository.ErrInvalidInput)
		}
		if e.debts == nil {
			return nil, fmt.Errorf("%w: deferred payment is not available", repository.ErrInvalidState)
		}
		openDebt = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.CustomerID != nil && e.customers != nil {
		if _, err := e.customers.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	var debtReq debts.OpenRequest
	if openDebt {
		debtReq = debts.OpenRequest{CustomerID: *req.CustomerID, Amount: unpaid, DueDate: req.DueDate}
		if err := e.debts.Check(ctx, debtReq); err != nil {
			return nil, err
		}
	}

	existing, err := e.sales.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	seq, number := e.numberer.Next(existing, now)
	sale := &models.Sale{
		SaleID:        e.ids.New(),
		InvoiceNumber: number,
		Sequence:      seq,
		CustomerID:    req.CustomerID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		VATRate:       totals.VATRate,
		VATAmount:     totals.VATAmount,
		Total:         totals.Total,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		ChangeDue:     decimal.Max(req.AmountPaid.Sub(totals.Total), decimal.Zero),
		SellerID:      req.SellerID,
		Status:        models.SaleStatusCompleted,
		CreatedAt:     now,
	}

	// Everything that can reject the commit has run. From here on only
	// storage faults can fail, and those are compensated.
	if _, err := e.stock.Debit(ctx, stockLines, "sale "+number, req.SellerID, &sale.SaleID); err != nil {
		return nil, err
	}

	if err := e.sales.Create(ctx, sale); err != nil {
		e.restock(ctx, stockLines, "rollback "+number, req.SellerID, &sale.SaleID)
		return nil, err
	}

	if openDebt {
		debtReq.SaleID = &sale.SaleID
		debt, err := e.debts.Open(ctx, debtReq)
		if err == nil {
			err = e.sales.LinkDebt(ctx, sale.SaleID, debt.DebtID)
		}
		if err != nil {
			e.restock(ctx, stockLines, "rollback "+number, req.SellerID, &sale.SaleID)
			if uerr := e.sales.UpdateStatus(ctx, sale.SaleID, models.SaleStatusCancelled, now); uerr != nil {
				e.log.Error().Err(uerr).Str("invoice", number).Msg("failed to void sale after debt error")
			}
			return nil, err
		}
		sale.DebtID = &debt.DebtID
	}

	e.log.Info().
		Str("invoice", sale.InvoiceNumber).
		Str("total", sale.Total.StringFixed(2)).
		Str("method", string(sale.PaymentMethod)).
		Int("items", len(sale.Items)).
		Msg("sale committed")

	return sale, nil
}

func (e *Engine) restock(ctx context.Context, lines []inventory.Line, reason string, actorID uuid.UUID, saleID *uuid.UUID) {
	if _, err := e.stock.Credit(ctx, lines, reason, actorID, saleID); err != nil {
		e.log.Error().Err(err).Str("sale_id", saleID.String()).Msg("failed to restock after aborted commit")
	}
}

// Cancel moves a completed sale to cancelled and puts its items back in stock.
func (e *Engine) Cancel(ctx context.Context, saleID, actorID uuid.UUID) (*models.Sale, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sale, err := e.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != models.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: sale %s is %s", repository.ErrInvalidState, sale.InvoiceNumber, sale.Status)
	}

	// Products deleted since the sale cannot be restocked. The rest are.
	lines := make([]inventory.Line, 0, len(sale.Items))
	var skipped []string
	for _, item := range sale.Items {
		if _, err := e.products.GetByID(ctx, item.ProductID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			skipped = append(skipped, item.SKU)
			continue
		}
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if len(skipped) > 0 {
		e.log.Warn().
			Str("invoice", sale.InvoiceNumber).
			Strs("skus", skipped).
			Msg("cancelling without restock for deleted products")
	}
	if len(lines) > 0 {
		if _, err := e.stock.Credit(ctx, lines, "cancel "+sale.InvoiceNumber, actorID, &sale.SaleID); err != nil {
			return nil, err
		}
	}

	now := e.now()
	if err := e.sales.UpdateStatus(ctx, saleID, models.SaleStatusCancelled, now); err != nil {
		return nil, err
	}
	sale.Status = models.SaleStatusCancelled
	sale.CancelledAt = &now

	e.log.Info().
		Str("invoice", sale.InvoiceNumber).
		Str("actor_id", actorID.String()).
		Msg("sale cancelled")

	return sale, nil
}

func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return e.sales.GetByID(ctx, id)
}

func (e *Engine) List(ctx context.Context) ([]models.Sale, error) {
	return e.sales.GetAll(ctx)
}
