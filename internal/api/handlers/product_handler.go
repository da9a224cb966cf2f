package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

// StockAdjuster records quantity changes as stock movements.
type StockAdjuster interface {
	Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string, actorID uuid.UUID) (*models.StockMovement, error)
}

type ProductHandler struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	stock      StockAdjuster
}

func NewProductHandler(repo repository.ProductRepository, categories repository.CategoryRepository, stock StockAdjuster) *ProductHandler {
	return &ProductHandler{repo: repo, categories: categories, stock: stock}
}

type ProductCreateRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	SupplierID    *uuid.UUID      `json:"supplier_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	MinQuantity   int             `json:"min_quantity" validate:"gte=0"`
}

// ProductUpdateRequest has no quantity: stock only moves through the
// inventory endpoints.
type ProductUpdateRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	SupplierID    *uuid.UUID      `json:"supplier_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinQuantity   int             `json:"min_quantity" validate:"gte=0"`
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByCategory accepts a category id or name.
func (h *ProductHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "category is required", nil)
		return
	}

	categoryID, err := uuid.Parse(category)
	if err != nil {
		c, err := h.categories.GetByName(r.Context(), category)
		if err != nil {
			writeServiceError(w, r, err, "get category")
			return
		}
		categoryID = c.CategoryID
	}

	products, err := h.repo.GetByCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err, "get products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := models.Product{
		Name:          req.Name,
		SKU:           req.SKU,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		MinQuantity:   req.MinQuantity,
	}

	if err := h.repo.Create(r.Context(), &p); err != nil {
		writeServiceError(w, r, err, "create product")
		return
	}

	if req.Quantity > 0 {
		session, _ := SessionFrom(r.Context())
		if _, err := h.stock.Adjust(r.Context(), p.ProductID, req.Quantity, "initial stock", session.UserID); err != nil {
			writeServiceError(w, r, err, "record initial stock")
			return
		}
		p.Quantity = req.Quantity
	}

	w.Header().Set("Location", "/products/"+p.ProductID.String())
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	var req ProductUpdateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := models.Product{
		ProductID:     id,
		Name:          req.Name,
		SKU:           req.SKU,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		MinQuantity:   req.MinQuantity,
	}

	if err := h.repo.Update(r.Context(), &p); err != nil {
		writeServiceError(w, r, err, "update product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete product")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
