package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/LQT2201/Book-UIT/internal/cart"
	"github.com/LQT2201/Book-UIT/internal/catalog"
	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/internal/session"
	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
	"github.com/LQT2201/Book-UIT/pkg/httpclient"
)

// Client is the typed client for the bookstore REST backend. Every call
// receives the session explicitly; there is no ambient auth state.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// New creates a backend client.
func New(baseURL string, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		logger:  logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, sess *session.Session, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil && sess.BearerToken() != "" {
		req.Header.Set("Authorization", "Bearer "+sess.BearerToken())
	}

	return req, nil
}

// do executes the request and returns the response, translating non-2xx
// statuses into AppErrors.
func (c *Client) do(req *http.Request, operation string) (*http.Response, error) {
	resp, err := c.http.Do(req.Context(), req)
	if err != nil {
		return nil, apperrors.BackendUnavailable(fmt.Sprintf("%s: %v", operation, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, operation)
	}
	return resp, nil
}

// decodeData decodes a backend response body into target, unwrapping the
// {"data": ...} envelope when present. The backend is inconsistent about
// wrapping; this is the single place that absorbs it.
func decodeData(body io.Reader, target any) error {
	raw, err := io.ReadAll(io.LimitReader(body, 4<<20)) // 4 MB limit
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// drainClose discards any unread body so the connection can be reused.
func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// FetchCart reads the user's server-held cart. Callers own the empty-cart
// fallback policy; this method reports failures faithfully.
func (c *Client) FetchCart(ctx context.Context, sess *session.Session) ([]cart.Line, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user/cart", sess, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "fetch cart")
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	var lines []cart.Line
	if err := decodeData(resp.Body, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReplaceCart pushes the full line list as the new server cart state. This is
// the only cart write path; there is no incremental patch endpoint.
func (c *Client) ReplaceCart(ctx context.Context, sess *session.Session, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/user/cart", sess, lines)
	if err != nil {
		return err
	}

	resp, err := c.do(req, "replace cart")
	if err != nil {
		return err
	}
	drainClose(resp)
	return nil
}

// GetBook fetches one catalog entry.
func (c *Client) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/book/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "fetch book")
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	var book catalog.Book
	if err := decodeData(resp.Body, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks fetches the catalog, optionally filtered by genre name.
func (c *Client) ListBooks(ctx context.Context, genre string) ([]catalog.Book, error) {
	path := "/book"
	if genre != "" {
		path += "?genre=" + url.QueryEscape(genre)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "list books")
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	var books []catalog.Book
	if err := decodeData(resp.Body, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SearchBooks queries the catalog search endpoint with keyword, genre, and
// sort filters. The genre parameter repeats once per selected genre.
func (c *Client) SearchBooks(ctx context.Context, query catalog.SearchQuery) ([]catalog.Book, error) {
	path := "/book/search"
	if encoded := query.Values().Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "search books")
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	var books []catalog.Book
	if err := decodeData(resp.Body, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListGenres fetches all catalog genres.
func (c *Client) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/genre", nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "list genres")
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	var genres []catalog.Genre
	if err := decodeData(resp.Body, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// Checkout creates a COD order from the supplied cart snapshot. Any 2xx is
// success; the response body carries nothing the storefront needs.
func (c *Client) Checkout(ctx context.Context, sess *session.Session, payload order.CheckoutRequest) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/order/checkout", sess, payload)
	if err != nil {
		return err
	}

	resp, err := c.do(req, "checkout")
	if err != nil {
		return err
	}
	drainClose(resp)
	return nil
}

// CreateVNPayPayment starts an online payment and returns the redirect URL.
// A 2xx response without a paymentUrl is a payment failure, distinct from an
// HTTP failure.
func (c *Client) CreateVNPayPayment(ctx context.Context, sess *session.Session, payload order.CheckoutRequest) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/payment/vn-pay", sess, payload)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req, "create vn-pay payment")
	if err != nil {
		return "", err
	}
	defer drainClose(resp)

	var result struct {
		PaymentURL string `json:"paymentUrl"`
	}
	if err := decodeData(resp.Body, &result); err != nil {
		return "", err
	}
	if result.PaymentURL == "" {
		return "", apperrors.PaymentFailed("payment gateway returned no payment url")
	}
	return result.PaymentURL, nil
}

// GetOrder fetches one order. The backend sometimes returns the order bare
// and sometimes as a single-element list; both shapes are absorbed here.
func (c *Client) GetOrder(ctx context.Context, sess *session.Session, id string) (*order.Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/order/"+url.PathEscape(id), sess, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "fetch order")
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var orders []order.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(orders) == 0 {
			return nil, &apperrors.AppError{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("order %s not found", id),
				Status:  http.StatusNotFound,
				Err:     apperrors.ErrNotFound,
			}
		}
		return &orders[0], nil
	}

	var o order.Order
	if err := json.Unmarshal(trimmed, &o); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &o, nil
}

// ListOrders fetches every order (admin view).
func (c *Client) ListOrders(ctx context.Context, sess *session.Session) ([]order.Order, error) {
	return c.listOrders(ctx, sess, "/order", "list orders")
}

// ListUserOrders fetches the calling user's order history.
func (c *Client) ListUserOrders(ctx context.Context, sess *session.Session) ([]order.Order, error) {
	return c.listOrders(ctx, sess, "/user/order", "list user orders")
}

func (c *Client) listOrders(ctx context.Context, sess *session.Session, path, operation string) ([]order.Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, sess, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, operation)
	if err != nil {
		return nil, err
	}
	defer drainClose(resp)

	var orders []order.Order
	if err := decodeData(resp.Body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus sets the order's status. The wire shape is always the
// wrapped object form; the raw-string variant seen in older clients was a
// latent bug.
func (c *Client) UpdateOrderStatus(ctx context.Context, sess *session.Session, id string, status order.Status) error {
	body := map[string]string{"orderStatus": string(status)}

	req, err := c.newRequest(ctx, http.MethodPatch, "/order/"+url.PathEscape(id), sess, body)
	if err != nil {
		return err
	}

	resp, err := c.do(req, "update order status")
	if err != nil {
		return err
	}
	drainClose(resp)
	return nil
}

// DeleteOrder removes an order (admin only).
func (c *Client) DeleteOrder(ctx context.Context, sess *session.Session, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/order/delete/"+url.PathEscape(id), sess, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req, "delete order")
	if err != nil {
		return err
	}
	drainClose(resp)
	return nil
}
