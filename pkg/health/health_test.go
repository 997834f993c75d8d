package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness_AlwaysUp(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(ctx context.Context) error { return errors.New("down") })

	w := httptest.NewRecorder()
	h.LivenessHandler()(w, httptest.NewRequest("GET", "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(ctx context.Context) error { return nil })
	h.Register("postgres", func(ctx context.Context) error { return nil })

	w := httptest.NewRecorder()
	h.ReadinessHandler()(w, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadiness_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("redis", func(ctx context.Context) error { return nil })
	h.Register("kafka", func(ctx context.Context) error { return errors.New("broker unreachable") })

	w := httptest.NewRecorder()
	h.ReadinessHandler()(w, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["kafka"].Status)
	assert.Equal(t, "broker unreachable", resp.Checks["kafka"].Error)
	assert.Equal(t, StatusUp, resp.Checks["redis"].Status)
}
