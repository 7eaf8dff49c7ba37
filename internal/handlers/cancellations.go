package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeniistore/jenii-admin/internal/models"
	"github.com/jeniistore/jenii-admin/internal/services"
)

func (h *Handlers) ListCancellationRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	status := models.CancellationStatus(r.URL.Query().Get("status"))

	requests, err := h.cancellations.ListRequests(r.Context(), status, limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

type cancellationDecisionRequest struct {
	AdminNote string `json:"admin_note"`
}

func (h *Handlers) ApproveCancellation(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.cancellationIDFromRequest(w, r)
	if !ok {
		return
	}

	var req cancellationDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.cancellations.Approve(r.Context(), services.DecisionInput{
		RequestID:   requestID,
		AdminNote:   req.AdminNote,
		ProcessedBy: adminSubjectFromContext(r.Context()),
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"request":      result.Request,
		"order":        result.Order,
		"final_status": result.FinalStatus,
	})
}

func (h *Handlers) RejectCancellation(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.cancellationIDFromRequest(w, r)
	if !ok {
		return
	}

	var req cancellationDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.cancellations.Reject(r.Context(), services.DecisionInput{
		RequestID:   requestID,
		AdminNote:   req.AdminNote,
		ProcessedBy: adminSubjectFromContext(r.Context()),
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"request": request,
	})
}

func (h *Handlers) cancellationIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	requestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request id")
		return uuid.Nil, false
	}
	return requestID, true
}
