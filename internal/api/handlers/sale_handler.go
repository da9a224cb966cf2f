package handlers

import (
	"net/http"

	"ledger-service/internal/report"
	"ledger-service/internal/sales"
)

type SaleHandler struct {
	engine  *sales.Engine
	reports *report.Service
}

func NewSaleHandler(engine *sales.Engine, reports *report.Service) *SaleHandler {
	return &SaleHandler{engine: engine, reports: reports}
}

func (h *SaleHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.engine.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get sales")
		return
	}

	rng, err := report.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, report.FilterSales(all, rng))
}

func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get sale")
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "sale")
	if !ok {
		return
	}

	session, _ := SessionFrom(r.Context())
	sale, err := h.engine.Cancel(r.Context(), id, session.UserID)
	if err != nil {
		writeServiceError(w, r, err, "cancel sale")
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

// Document returns the invoice snapshot for external renderers.
func (h *SaleHandler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "sale")
	if !ok {
		return
	}

	doc, err := h.reports.Invoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "build invoice")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
