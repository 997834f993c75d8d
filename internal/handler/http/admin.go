package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/internal/session"
	"github.com/LQT2201/Book-UIT/pkg/httputil"
	"github.com/LQT2201/Book-UIT/pkg/pagination"
	"github.com/LQT2201/Book-UIT/pkg/validator"
)

// AdminHandler handles HTTP requests for the admin order console.
type AdminHandler struct {
	service *order.Service
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *order.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  logger,
	}
}

// UpdateStatusRequest is the JSON request body for an order status change.
// The value may be a canonical label, a quoted label, or a legacy code;
// it is normalized before hitting the backend.
type UpdateStatusRequest struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

// ListOrders handles GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	orders, err := h.service.ListAll(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newOrderViews(orders)})
}

// GetOrder handles GET /api/v1/admin/orders/{orderId}
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	o, err := h.service.Get(r.Context(), sess, chi.URLParam(r, "orderId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newOrderView(o)})
}

// UpdateStatus handles PATCH /api/v1/admin/orders/{orderId}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	o, err := h.service.UpdateStatus(r.Context(), sess, chi.URLParam(r, "orderId"), req.OrderStatus)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newOrderView(o)})
}

// DeleteOrder handles DELETE /api/v1/admin/orders/{orderId}
func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.service.Delete(r.Context(), sess, chi.URLParam(r, "orderId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// StatusHistory handles GET /api/v1/admin/orders/{orderId}/history
func (h *AdminHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	changes, total, err := h.service.History(r.Context(), chi.URLParam(r, "orderId"), params.Limit, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(changes, total, params),
	})
}
