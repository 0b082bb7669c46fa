package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/food-cart/internal/domain"
	"github.com/fjod/food-cart/internal/promo"
	"github.com/fjod/food-cart/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Shop interface {
	AddItem(ctx context.Context, dishID int64) error
	RemoveItem(ctx context.Context, dishID int64) error
	UpdateQuantity(ctx context.Context, dishID int64, delta int) error
	ClearCart(ctx context.Context) error
	ApplyPromo(ctx context.Context, rawCode string) (promo.Result, error)
	ClearPromo(ctx context.Context) error
	SortByPrice()
	ViewState() domain.ViewState
	Checkout(ctx context.Context) (domain.CheckoutConfirmation, error)
}

type CartHandler struct {
	shop    Shop
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(shop Shop, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		shop:    shop,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	DishID *int64 `json:"dish_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta *int `json:"delta"`
}

type ApplyPromoRequestDTO struct {
	Code string `json:"code"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// GET /api/v1/view
func (h *CartHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.DishID == nil {
		h.respondError(w, http.StatusBadRequest, "invalid_dish_id", "dish_id is required")
		return
	}

	if err := h.shop.AddItem(ctx, *req.DishID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// PATCH /api/v1/cart/items/{dish_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	dishID, ok := h.dishIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta == nil {
		h.respondError(w, http.StatusBadRequest, "invalid_delta", "delta is required")
		return
	}

	if err := h.shop.UpdateQuantity(ctx, dishID, *req.Delta); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// DELETE /api/v1/cart/items/{dish_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	dishID, ok := h.dishIDParam(w, r)
	if !ok {
		return
	}

	if err := h.shop.RemoveItem(ctx, dishID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.shop.ClearCart(ctx); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// POST /api/v1/promo
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyPromoRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Rejected codes are reported through the view's promo message.
	if _, err := h.shop.ApplyPromo(ctx, req.Code); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// DELETE /api/v1/promo
func (h *CartHandler) ClearPromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.shop.ClearPromo(ctx); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// POST /api/v1/dishes/sort
func (h *CartHandler) SortByPrice(w http.ResponseWriter, r *http.Request) {
	h.shop.SortByPrice()
	h.respondJSON(w, http.StatusOK, h.shop.ViewState())
}

// POST /api/v1/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	confirmation, err := h.shop.Checkout(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, confirmation)
}

func (h *CartHandler) dishIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	dishID, err := strconv.ParseInt(chi.URLParam(r, "dish_id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_dish_id", "dish_id must be an integer")
		return 0, false
	}
	return dishID, true
}

func (h *CartHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *CartHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func (h *CartHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		h.respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, "timeout", "storage did not respond in time")
	default:
		h.log.Error("request failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
