package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeniistore/jenii-admin/internal/services"
)

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	products, err := h.catalog.ListProducts(r.Context(), limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromRequest(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input services.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromRequest(w, r)
	if !ok {
		return
	}

	var input services.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), productID, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateInventoryRequest struct {
	Stock *int `json:"stock"`
	Delta *int `json:"delta"`
}

func (h *Handlers) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromRequest(w, r)
	if !ok {
		return
	}

	var req updateInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.UpdateInventory(r.Context(), productID, req.Stock, req.Delta)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *Handlers) productIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return productID, true
}
