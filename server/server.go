package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jeniistore/jenii-admin/internal/config"
	"github.com/jeniistore/jenii-admin/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")
	r.HandleFunc("/webhooks/shiprocket", h.CarrierWebhook).Methods("POST").Name("webhooks.shiprocket")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Admin API - requires a bearer token with the admin role
	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(h.RequireAuth)

	adminRouter.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("admin.orders")
	adminRouter.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET").Name("admin.orders.get")
	adminRouter.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods("PATCH").Name("admin.orders.status")

	adminRouter.HandleFunc("/cancellation-requests", h.ListCancellationRequests).Methods("GET").Name("admin.cancellations")
	adminRouter.HandleFunc("/cancellation-requests/{id}/approve", h.ApproveCancellation).Methods("POST").Name("admin.cancellations.approve")
	adminRouter.HandleFunc("/cancellation-requests/{id}/reject", h.RejectCancellation).Methods("POST").Name("admin.cancellations.reject")

	adminRouter.HandleFunc("/products", h.ListProducts).Methods("GET").Name("admin.products")
	adminRouter.HandleFunc("/products", h.CreateProduct).Methods("POST").Name("admin.products.create")
	adminRouter.HandleFunc("/products/{id}", h.GetProduct).Methods("GET").Name("admin.products.get")
	adminRouter.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT").Name("admin.products.update")
	adminRouter.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE").Name("admin.products.delete")
	adminRouter.HandleFunc("/products/{id}/inventory", h.UpdateInventory).Methods("PATCH").Name("admin.products.inventory")

	adminRouter.HandleFunc("/categories", h.ListCategories).Methods("GET").Name("admin.categories")
	adminRouter.HandleFunc("/categories", h.CreateCategory).Methods("POST").Name("admin.categories.create")
	adminRouter.HandleFunc("/categories/{id}", h.UpdateCategory).Methods("PUT").Name("admin.categories.update")

	adminRouter.HandleFunc("/slides", h.ListSlides).Methods("GET").Name("admin.slides")
	adminRouter.HandleFunc("/slides", h.CreateSlide).Methods("POST").Name("admin.slides.create")
	adminRouter.HandleFunc("/slides/{id}", h.DeleteSlide).Methods("DELETE").Name("admin.slides.delete")

	adminRouter.HandleFunc("/coupons", h.ListCoupons).Methods("GET").Name("admin.coupons")
	adminRouter.HandleFunc("/coupons", h.CreateCoupon).Methods("POST").Name("admin.coupons.create")
	adminRouter.HandleFunc("/coupons/{id}", h.UpdateCoupon).Methods("PUT").Name("admin.coupons.update")
	adminRouter.HandleFunc("/coupons/{id}", h.DeleteCoupon).Methods("DELETE").Name("admin.coupons.delete")
	adminRouter.HandleFunc("/coupons/redeem", h.RedeemCoupon).Methods("POST").Name("admin.coupons.redeem")

	adminRouter.HandleFunc("/users", h.ListUsers).Methods("GET").Name("admin.users")
	adminRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET").Name("admin.dashboard")
	adminRouter.HandleFunc("/stats", h.Stats).Methods("GET").Name("admin.stats")

	return r
}
