package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeniistore/jenii-admin/internal/models"
)

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := decodeJSON(r, &category); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.CreateCategory(r.Context(), &category); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, category)
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid category id")
		return
	}

	var category models.Category
	if err := decodeJSON(r, &category); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category.ID = categoryID

	if err := h.catalog.UpdateCategory(r.Context(), &category); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, category)
}

func (h *Handlers) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.catalog.ListSlides(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"slides": slides})
}

func (h *Handlers) CreateSlide(w http.ResponseWriter, r *http.Request) {
	var slide models.Slide
	if err := decodeJSON(r, &slide); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.CreateSlide(r.Context(), &slide); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, slide)
}

func (h *Handlers) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	slideID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid slide id")
		return
	}

	if err := h.catalog.DeleteSlide(r.Context(), slideID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
