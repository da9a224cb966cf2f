package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/debts"
	"ledger-service/internal/models"
)

type DebtHandler struct {
	ledger *debts.Ledger
}

func NewDebtHandler(ledger *debts.Ledger) *DebtHandler {
	return &DebtHandler{ledger: ledger}
}

type DebtOpenRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	SaleID     *uuid.UUID      `json:"sale_id"`
	DueDate    *time.Time      `json:"due_date"`
}

type PaymentRequest struct {
	Amount decimal.Decimal      `json:"amount"`
	Method models.PaymentMethod `json:"method" validate:"omitempty,oneof=cash card transfer"`
	Note   string               `json:"note" validate:"max=500"`
}

func (h *DebtHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.All(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get debts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DebtHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "debt")
	if !ok {
		return
	}

	d, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get debt")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DebtHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.Overdue(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get overdue debts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DebtHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req DebtOpenRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	d, err := h.ledger.Open(r.Context(), debts.OpenRequest{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		SaleID:     req.SaleID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		writeServiceError(w, r, err, "open debt")
		return
	}

	w.Header().Set("Location", "/debts/"+d.DebtID.String())
	writeJSON(w, http.StatusCreated, d)
}

func (h *DebtHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "debt")
	if !ok {
		return
	}

	var req PaymentRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	d, err := h.ledger.RecordPayment(r.Context(), id, req.Amount, req.Method, req.Note)
	if err != nil {
		writeServiceError(w, r, err, "record payment")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
