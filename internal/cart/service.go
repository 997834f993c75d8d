package cart

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/LQT2201/Book-UIT/internal/session"
)

// Backend is the server-held cart resource. Full-replace semantics: the only
// write path overwrites the whole line list.
type Backend interface {
	FetchCart(ctx context.Context, sess *session.Session) ([]Line, error)
	ReplaceCart(ctx context.Context, sess *session.Session, lines []Line) error
}

// Mirror caches the committed cart between mutations.
type Mirror interface {
	Get(ctx context.Context, key string) ([]Line, error)
	Save(ctx context.Context, key string, lines []Line) error
	Delete(ctx context.Context, key string) error
}

// Publisher emits cart domain events. Publish failures never fail a request.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, username string, lines []Line) error
}

// Service owns the cart lifecycle: it stages mutations with the pure ops,
// pushes the staged list to the backend, and commits to the mirror only on
// success. On failure the previous committed state stands, so the caller
// never observes an optimistic update the server rejected.
type Service struct {
	backend Backend
	mirror  Mirror
	events  Publisher
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a cart service. events may be nil.
func NewService(backend Backend, mirror Mirror, events Publisher, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		mirror:  mirror,
		events:  events,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing mutations for one user. Full-replace
// writes racing each other can silently drop lines, so every mutation for a
// given user runs under this lock.
func (s *Service) userLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func mirrorKey(sess *session.Session) string {
	if sess.Username != "" {
		return sess.Username
	}
	return sess.Token
}

// Get returns the user's cart. The mirror is consulted first; on a miss the
// backend is fetched and the result committed to the mirror. Any backend
// failure degrades to an empty cart so the storefront stays usable.
func (s *Service) Get(ctx context.Context, sess *session.Session) []Line {
	key := mirrorKey(sess)

	if lines, err := s.mirror.Get(ctx, key); err == nil {
		return lines
	}

	return s.refresh(ctx, sess, key)
}

// Refresh bypasses the mirror and reads the backend's cart state.
func (s *Service) Refresh(ctx context.Context, sess *session.Session) []Line {
	return s.refresh(ctx, sess, mirrorKey(sess))
}

func (s *Service) refresh(ctx context.Context, sess *session.Session, key string) []Line {
	lines, err := s.backend.FetchCart(ctx, sess)
	if err != nil {
		s.logger.WarnContext(ctx, "cart fetch failed, serving empty cart",
			slog.String("error", err.Error()),
		)
		return []Line{}
	}
	if lines == nil {
		lines = []Line{}
	}

	if err := s.mirror.Save(ctx, key, lines); err != nil {
		s.logger.WarnContext(ctx, "cart mirror save failed",
			slog.String("error", err.Error()),
		)
	}
	return lines
}

// mutate runs one staged mutation under the user's lock: read committed
// state, apply op, push the full list, and commit on success.
func (s *Service) mutate(ctx context.Context, sess *session.Session, op func([]Line) []Line) ([]Line, error) {
	key := mirrorKey(sess)

	lock := s.userLock(key)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.mirror.Get(ctx, key)
	if err != nil {
		current = s.refresh(ctx, sess, key)
	}

	staged := op(current)
	if reflect.DeepEqual(staged, current) {
		return current, nil
	}

	if err := s.backend.ReplaceCart(ctx, sess, staged); err != nil {
		return current, fmt.Errorf("replace cart: %w", err)
	}

	if err := s.mirror.Save(ctx, key, staged); err != nil {
		s.logger.WarnContext(ctx, "cart mirror save failed",
			slog.String("error", err.Error()),
		)
	}

	s.publishUpdated(ctx, sess.Username, staged)
	return staged, nil
}

// Add puts an item in the cart, incrementing its quantity if already present.
func (s *Service) Add(ctx context.Context, sess *session.Session, item Line) ([]Line, error) {
	return s.mutate(ctx, sess, func(lines []Line) []Line {
		return AddOrIncrement(lines, item)
	})
}

// SetItemQuantity sets a line's quantity, clamping values below 1 to 1.
func (s *Service) SetItemQuantity(ctx context.Context, sess *session.Session, itemID string, quantity int) ([]Line, error) {
	return s.mutate(ctx, sess, func(lines []Line) []Line {
		return SetQuantity(lines, itemID, quantity)
	})
}

// IncrementItem raises a line's quantity by 1.
func (s *Service) IncrementItem(ctx context.Context, sess *session.Session, itemID string) ([]Line, error) {
	return s.mutate(ctx, sess, func(lines []Line) []Line {
		return Increment(lines, itemID)
	})
}

// DecrementItem lowers a line's quantity by 1, never below 1.
func (s *Service) DecrementItem(ctx context.Context, sess *session.Session, itemID string) ([]Line, error) {
	return s.mutate(ctx, sess, func(lines []Line) []Line {
		return Decrement(lines, itemID)
	})
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, sess *session.Session, itemID string) ([]Line, error) {
	return s.mutate(ctx, sess, func(lines []Line) []Line {
		return Remove(lines, itemID)
	})
}

// Forget drops the mirrored cart state. Called after checkout, when the
// backend clears the server-side cart itself.
func (s *Service) Forget(ctx context.Context, sess *session.Session) {
	if err := s.mirror.Delete(ctx, mirrorKey(sess)); err != nil {
		s.logger.WarnContext(ctx, "cart mirror delete failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publishUpdated(ctx context.Context, username string, lines []Line) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCartUpdated(ctx, username, lines); err != nil {
		s.logger.WarnContext(ctx, "publish cart.updated failed",
			slog.String("error", err.Error()),
		)
	}
}
