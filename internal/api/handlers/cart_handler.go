package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/models"
	"ledger-service/internal/repository"
	"ledger-service/internal/sales"
)

// Carts keeps one open cart per user. The lock also serialises access to
// each cart, which is not safe for concurrent use on its own.
type Carts struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*sales.Cart
}

func NewCarts() *Carts {
	return &Carts{carts: make(map[uuid.UUID]*sales.Cart)}
}

// with runs fn on the user's cart while holding the registry lock.
func (c *Carts) with(userID uuid.UUID, fn func(*sales.Cart) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[userID]
	if !ok {
		cart = sales.NewCart()
		c.carts[userID] = cart
	}
	return fn(cart)
}

type CartHandler struct {
	carts    *Carts
	engine   *sales.Engine
	settings repository.SettingsRepository
}

func NewCartHandler(carts *Carts, engine *sales.Engine, settings repository.SettingsRepository) *CartHandler {
	return &CartHandler{carts: carts, engine: engine, settings: settings}
}

type CartView struct {
	State sales.CartState   `json:"state"`
	Lines []models.CartLine `json:"lines"`
	sales.Totals
}

type AddLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,gt=0"`
}

type UpdateLineRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	CustomerID    *uuid.UUID           `json:"customer_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=cash card transfer mixed"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	DueDate       *time.Time           `json:"due_date"`
}

func (h *CartHandler) view(r *http.Request, cart *sales.Cart) (CartView, error) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		return CartView{}, err
	}
	return CartView{
		State:  cart.State(),
		Lines:  cart.Lines(),
		Totals: cart.Totals(settings.VATRate),
	}, nil
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, status int, mutate func(*sales.Cart) error) {
	session, _ := SessionFrom(r.Context())

	var out CartView
	err := h.carts.with(session.UserID, func(cart *sales.Cart) error {
		if mutate != nil {
			if err := mutate(cart); err != nil {
				return err
			}
		}
		var err error
		out, err = h.view(r, cart)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err, "update cart")
		return
	}
	writeJSON(w, status, out)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, nil)
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	h.respond(w, r, http.StatusOK, func(cart *sales.Cart) error {
		return h.engine.AddToCart(r.Context(), cart, req.ProductID, req.Quantity)
	})
}

func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "productID", "product")
	if !ok {
		return
	}

	var req UpdateLineRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	h.respond(w, r, http.StatusOK, func(cart *sales.Cart) error {
		return h.engine.UpdateCartLine(r.Context(), cart, id, req.Quantity)
	})
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "productID", "product")
	if !ok {
		return
	}

	h.respond(w, r, http.StatusOK, func(cart *sales.Cart) error {
		cart.RemoveLine(id)
		return nil
	})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, func(cart *sales.Cart) error {
		cart.Clear()
		return nil
	})
}

// Checkout commits the cart and clears it only when the sale went through.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "load settings")
		return
	}

	session, _ := SessionFrom(r.Context())
	var sale *models.Sale
	err = h.carts.with(session.UserID, func(cart *sales.Cart) error {
		var err error
		sale, err = h.engine.Commit(r.Context(), sales.CommitRequest{
			Lines:         cart.Lines(),
			CustomerID:    req.CustomerID,
			PaymentMethod: req.PaymentMethod,
			AmountPaid:    req.AmountPaid,
			SellerID:      session.UserID,
			VATRate:       settings.VATRate,
			DueDate:       req.DueDate,
		})
		if err != nil {
			return err
		}
		cart.Clear()
		return nil
	})
	if err != nil {
		writeServiceError(w, r, err, "commit sale")
		return
	}

	w.Header().Set("Location", "/sales/"+sale.SaleID.String())
	writeJSON(w, http.StatusCreated, sale)
}
