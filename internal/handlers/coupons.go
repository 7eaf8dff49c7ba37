package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeniistore/jenii-admin/internal/services"
)

func (h *Handlers) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"coupons": coupons})
}

func (h *Handlers) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var input services.CouponInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.coupons.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, coupon)
}

func (h *Handlers) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, ok := h.couponIDFromRequest(w, r)
	if !ok {
		return
	}

	var input services.CouponInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.coupons.Update(r.Context(), couponID, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, coupon)
}

func (h *Handlers) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, ok := h.couponIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.coupons.Delete(r.Context(), couponID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type redeemCouponRequest struct {
	Code string `json:"code"`
}

func (h *Handlers) RedeemCoupon(w http.ResponseWriter, r *http.Request) {
	var req redeemCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.coupons.Redeem(r.Context(), req.Code)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, coupon)
}

func (h *Handlers) couponIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	couponID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid coupon id")
		return uuid.Nil, false
	}
	return couponID, true
}
