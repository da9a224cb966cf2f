package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ledger-service/internal/export"
	"ledger-service/internal/report"
	"ledger-service/internal/repository"
)

type ReportHandler struct {
	reports   *report.Service
	products  repository.ProductReader
	sales     repository.SaleRepository
	debts     repository.DebtRepository
	movements repository.MovementRepository
}

func NewReportHandler(reports *report.Service, products repository.ProductReader, sales repository.SaleRepository, debts repository.DebtRepository, movements repository.MovementRepository) *ReportHandler {
	return &ReportHandler{reports: reports, products: products, sales: sales, debts: debts, movements: movements}
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, err := report.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	summary, err := h.reports.Summary(r.Context(), rng)
	if err != nil {
		writeServiceError(w, r, err, "build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := report.ParseRange(q.Get("from"), q.Get("to"), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	limit := 10
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a positive integer", nil)
			return
		}
	}

	top, err := h.reports.TopProducts(r.Context(), rng, limit)
	if err != nil {
		writeServiceError(w, r, err, "rank products")
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *ReportHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.reports.Overview(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "build overview")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Export streams one table as delimited text.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
		return
	}
	delimiter, err := export.ParseDelimiter(r.URL.Query().Get("delimiter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	ctx := r.Context()
	var write func(*export.Writer) error
	switch kind {
	case export.KindProducts:
		products, err := h.products.GetAll(ctx)
		if err != nil {
			writeServiceError(w, r, err, "export products")
			return
		}
		write = func(ew *export.Writer) error { return ew.Products(products) }
	case export.KindSales:
		sales, err := h.sales.GetAll(ctx)
		if err != nil {
			writeServiceError(w, r, err, "export sales")
			return
		}
		write = func(ew *export.Writer) error { return ew.Sales(sales) }
	case export.KindDebts:
		debts, err := h.debts.GetAll(ctx)
		if err != nil {
			writeServiceError(w, r, err, "export debts")
			return
		}
		write = func(ew *export.Writer) error { return ew.Debts(debts) }
	case export.KindMovements:
		movements, err := h.movements.GetAll(ctx)
		if err != nil {
			writeServiceError(w, r, err, "export movements")
			return
		}
		write = func(ew *export.Writer) error { return ew.Movements(movements) }
	}

	ew, err := export.NewWriter(w, delimiter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(kind)+".csv"))
	w.WriteHeader(http.StatusOK)
	if err := write(ew); err != nil {
		requestLogger(r).Error().Err(err).Str("kind", string(kind)).Msg("export interrupted")
	}
}
