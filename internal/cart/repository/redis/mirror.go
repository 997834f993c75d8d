package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LQT2201/Book-UIT/internal/cart"
	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
)

const keyPrefix = "cart:"

// Mirror keeps the committed cart state in Redis between mutations so reads
// (cart badge, checkout summary) do not hit the backend. Entries expire; the
// backend remains the source of truth.
type Mirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMirror creates a Redis-backed cart mirror.
func NewMirror(client *redis.Client, ttl time.Duration) *Mirror {
	return &Mirror{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the mirrored cart for a user key. A missing entry is reported
// as ErrNotFound so callers fall through to the backend.
func (m *Mirror) Get(ctx context.Context, key string) ([]cart.Line, error) {
	data, err := m.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", key)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return lines, nil
}

// Save stores the committed cart with the configured TTL.
func (m *Mirror) Save(ctx context.Context, key string, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := m.client.Set(ctx, keyPrefix+key, data, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the mirrored cart.
func (m *Mirror) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
