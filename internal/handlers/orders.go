package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeniistore/jenii-admin/internal/models"
	"github.com/jeniistore/jenii-admin/internal/services"
)

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	status := models.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.lifecycle.ListOrders(r.Context(), status, limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderIDFromRequest(w, r)
	if !ok {
		return
	}

	order, history, err := h.lifecycle.GetOrder(r.Context(), orderID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"order":   order,
		"history": history,
	})
}

type updateOrderStatusRequest struct {
	Status  models.OrderStatus `json:"status"`
	Comment string             `json:"comment"`
}

// UpdateOrderStatus is the admin status override. It accepts the six
// admin-settable statuses and records the change in the order's history.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderIDFromRequest(w, r)
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.lifecycle.SetStatus(r.Context(), services.SetStatusInput{
		OrderID: orderID,
		Status:  req.Status,
		Comment: req.Comment,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"order":           result.Order,
		"previous_status": result.PreviousStatus,
	})
}

func (h *Handlers) orderIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return orderID, true
}
