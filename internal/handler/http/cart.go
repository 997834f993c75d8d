package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LQT2201/Book-UIT/internal/cart"
	"github.com/LQT2201/Book-UIT/internal/session"
	"github.com/LQT2201/Book-UIT/pkg/httputil"
	"github.com/LQT2201/Book-UIT/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *cart.Service
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *cart.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding a book to the cart.
type AddItemRequest struct {
	ItemID string  `json:"itemId" validate:"required"`
	Title  string  `json:"title"`
	Image  string  `json:"image"`
	Price  float64 `json:"price" validate:"gte=0"`
}

// UpdateQuantityRequest is the JSON request body for setting a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UnmarshalJSON decodes the quantity leniently, the same way cart lines do.
// Quantity inputs come from a free-form text field; non-numeric values decode
// to 0 and fall under the service's clamp-to-1 rule instead of failing.
func (r *UpdateQuantityRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Quantity = cart.LenientQuantity(raw.Quantity)
	return nil
}

type cartResponse struct {
	Items []cart.Line `json:"items"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

func newCartResponse(lines []cart.Line) cartResponse {
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartResponse{
		Items: lines,
		Count: cart.Count(lines),
		Total: cart.Total(lines),
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	lines := h.service.Get(r.Context(), sess)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// RefreshCart handles POST /api/v1/cart/refresh
func (h *CartHandler) RefreshCart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	lines := h.service.Refresh(r.Context(), sess)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	lines, err := h.service.Add(r.Context(), sess, cart.Line{
		ItemID: req.ItemID,
		Title:  req.Title,
		Image:  req.Image,
		Price:  req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// UpdateQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	lines, err := h.service.SetItemQuantity(r.Context(), sess, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// IncrementItem handles POST /api/v1/cart/items/{itemId}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	lines, err := h.service.IncrementItem(r.Context(), sess, chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// DecrementItem handles POST /api/v1/cart/items/{itemId}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	lines, err := h.service.DecrementItem(r.Context(), sess, chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	lines, err := h.service.RemoveItem(r.Context(), sess, chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(lines)})
}

// ClearCart handles DELETE /api/v1/cart. It drops only the local mirror; the
// server cart is untouched and will repopulate on the next fetch.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	h.service.Forget(r.Context(), sess)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(nil)})
}
