package handlers

import (
	"net/http"

	"ledger-service/internal/inventory"
)

type InventoryHandler struct {
	stock StockAdjuster
	view  inventory.View
}

func NewInventoryHandler(stock StockAdjuster, view inventory.View) *InventoryHandler {
	return &InventoryHandler{stock: stock, view: view}
}

type AdjustRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	var req AdjustRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	session, _ := SessionFrom(r.Context())
	movement, err := h.stock.Adjust(r.Context(), id, req.Delta, req.Reason, session.UserID)
	if err != nil {
		writeServiceError(w, r, err, "adjust stock")
		return
	}

	writeJSON(w, http.StatusCreated, movement)
}

func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.view.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get low stock")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *InventoryHandler) OutOfStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.view.OutOfStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get out of stock")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *InventoryHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	movements, err := h.view.Movements(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get movements")
		return
	}
	writeJSON(w, http.StatusOK, movements)
}
