package handlers

import (
	"net/http"

	"ledger-service/internal/debts"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
)

type CustomerHandler struct {
	repo  repository.CustomerRepository
	debts debts.View
}

func NewCustomerHandler(repo repository.CustomerRepository, d debts.View) *CustomerHandler {
	return &CustomerHandler{repo: repo, debts: d}
}

type CustomerCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"max=300"`
}

func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customers, err := h.repo.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get customers")
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "customer")
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get customer")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	c := models.Customer{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
	}
	if err := h.repo.Create(r.Context(), &c); err != nil {
		writeServiceError(w, r, err, "create customer")
		return
	}

	w.Header().Set("Location", "/customers/"+c.CustomerID.String())
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Debts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "customer")
	if !ok {
		return
	}

	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "get customer")
		return
	}

	list, err := h.debts.ForCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get debts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
