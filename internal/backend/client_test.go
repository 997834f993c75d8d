package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LQT2201/Book-UIT/internal/cart"
	"github.com/LQT2201/Book-UIT/internal/catalog"
	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/internal/session"
	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
	"github.com/LQT2201/Book-UIT/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	base := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 4,
	})
	cbCfg := httpclient.DefaultCircuitBreakerConfig("test-backend")
	cbCfg.MinRequests = 1000 // keep the breaker closed in tests
	cb := httpclient.NewCircuitBreakerClient(base, cbCfg, logger)

	return New(srv.URL, cb, logger), srv
}

func userSession() *session.Session {
	return &session.Session{Token: "user-token", Username: "alice"}
}

func TestFetchCart_BareArray(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/cart", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"itemId":"b1","title":"Nhà Giả Kim","price":80000,"quantity":2}]`))
	}))

	lines, err := c.FetchCart(context.Background(), userSession())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "b1", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestFetchCart_DataEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"itemId":"b1","price":"80000","quantity":"1"}]}`))
	}))

	lines, err := c.FetchCart(context.Background(), userSession())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 80000.0, lines[0].Price, "string-encoded price must decode")
}

func TestFetchCart_Non200(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no cart", http.StatusNotFound)
	}))

	_, err := c.FetchCart(context.Background(), userSession())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReplaceCart_SendsFullList(t *testing.T) {
	var received []cart.Line
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/cart", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))

	lines := []cart.Line{
		{ItemID: "b1", Quantity: 2, Price: 100},
		{ItemID: "b2", Quantity: 1, Price: 50},
	}
	require.NoError(t, c.ReplaceCart(context.Background(), userSession(), lines))
	assert.Equal(t, lines, received)
}

func TestReplaceCart_NilBecomesEmptyArray(t *testing.T) {
	var body string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
	}))

	require.NoError(t, c.ReplaceCart(context.Background(), userSession(), nil))
	assert.Equal(t, "[]", body, "nil cart must serialize as an empty array, not null")
}

func TestCreateVNPayPayment(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/vn-pay", r.URL.Path)
		_, _ = w.Write([]byte(`{"paymentUrl":"https://pay.vnpay.vn/tx123"}`))
	}))

	url, err := c.CreateVNPayPayment(context.Background(), userSession(), order.CheckoutRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.vnpay.vn/tx123", url)
}

func TestCreateVNPayPayment_MissingURLIsFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))

	_, err := c.CreateVNPayPayment(context.Background(), userSession(), order.CheckoutRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestGetOrder_BareObject(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/ord-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"ord-1","username":"alice","orderStatus":"Đang giao"}`))
	}))

	o, err := c.GetOrder(context.Background(), userSession(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
	assert.Equal(t, order.StatusShipping, o.Status())
}

func TestGetOrder_SingleElementList(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"ord-1","username":"alice"}]`))
	}))

	o, err := c.GetOrder(context.Background(), userSession(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
}

func TestGetOrder_EmptyList(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := c.GetOrder(context.Background(), userSession(), "ord-404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateOrderStatus_WrappedBody(t *testing.T) {
	var body map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/order/ord-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))

	require.NoError(t, c.UpdateOrderStatus(context.Background(), userSession(), "ord-1", order.StatusDelivered))
	assert.Equal(t, map[string]string{"orderStatus": "Đã giao"}, body)
}

func TestDeleteOrder(t *testing.T) {
	var path, method string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
	}))

	require.NoError(t, c.DeleteOrder(context.Background(), userSession(), "ord-1"))
	assert.Equal(t, "/order/delete/ord-1", path)
	assert.Equal(t, http.MethodDelete, method)
}

func TestListBooks_GenreQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/book", r.URL.Path)
		assert.Equal(t, "Văn học", r.URL.Query().Get("genre"))
		assert.Empty(t, r.Header.Get("Authorization"), "catalog reads are unauthenticated")
		_, _ = w.Write([]byte(`{"data":[{"id":"b1","title":"Số Đỏ"}]}`))
	}))

	books, err := c.ListBooks(context.Background(), "Văn học")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Số Đỏ", books[0].Title)
}

func TestSearchBooks_PassesFilters(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/book/search", r.URL.Path)
		params := r.URL.Query()
		assert.Equal(t, "giả kim", params.Get("keyword"))
		assert.Equal(t, []string{"Văn học", "Kỹ năng sống"}, params["genre"])
		assert.Equal(t, "ASC", params.Get("sort"))
		assert.Equal(t, "price", params.Get("by"))
		assert.Empty(t, r.Header.Get("Authorization"), "catalog reads are unauthenticated")
		_, _ = w.Write([]byte(`{"data":[{"id":"b1","title":"Nhà Giả Kim"}]}`))
	}))

	books, err := c.SearchBooks(context.Background(), catalog.SearchQuery{
		Keyword: "giả kim",
		Genres:  []string{"Văn học", "Kỹ năng sống"},
		Sort:    "ASC",
		By:      "price",
	})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Nhà Giả Kim", books[0].Title)
}

func TestSearchBooks_EmptyQueryHasNoParams(t *testing.T) {
	var rawQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))

	books, err := c.SearchBooks(context.Background(), catalog.SearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Empty(t, rawQuery)
}

func TestConnectionFailureIsBackendUnavailable(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := c.FetchCart(context.Background(), userSession())
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavail)
}
