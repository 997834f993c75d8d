package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Reader is the backend surface the catalog needs. Catalog endpoints are
// unauthenticated on the backend.
type Reader interface {
	GetBook(ctx context.Context, id string) (*Book, error)
	ListBooks(ctx context.Context, genre string) ([]Book, error)
	SearchBooks(ctx context.Context, query SearchQuery) ([]Book, error)
	ListGenres(ctx context.Context) ([]Genre, error)
}

const (
	bookKeyPrefix   = "catalog:book:"
	booksKeyPrefix  = "catalog:books:"
	searchKeyPrefix = "catalog:search:"
	genresKey       = "catalog:genres"
)

// Service serves catalog reads through a Redis cache. Cache failures are
// never surfaced; the backend is the source of truth and the cache only
// shaves latency off the hot storefront paths.
type Service struct {
	backend Reader
	cache   *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

// NewService creates a catalog service. cache may be nil to disable caching.
func NewService(backend Reader, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// GetBook returns one book by id.
func (s *Service) GetBook(ctx context.Context, id string) (*Book, error) {
	key := bookKeyPrefix + id

	var book Book
	if s.cacheGet(ctx, key, &book) {
		return &book, nil
	}

	fresh, err := s.backend.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}

	s.cacheSet(ctx, key, fresh)
	return fresh, nil
}

// ListBooks returns books, optionally filtered by genre name.
func (s *Service) ListBooks(ctx context.Context, genre string) ([]Book, error) {
	key := booksKeyPrefix + genre
	if genre == "" {
		key = booksKeyPrefix + "all"
	}

	var books []Book
	if s.cacheGet(ctx, key, &books) {
		return books, nil
	}

	fresh, err := s.backend.ListBooks(ctx, genre)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	s.cacheSet(ctx, key, fresh)
	return fresh, nil
}

// SearchBooks proxies the backend's book search. Results are cached per
// exact parameter set; url.Values.Encode sorts keys, so equivalent queries
// share an entry regardless of parameter order.
func (s *Service) SearchBooks(ctx context.Context, query SearchQuery) ([]Book, error) {
	key := searchKeyPrefix + query.Values().Encode()

	var books []Book
	if s.cacheGet(ctx, key, &books) {
		return books, nil
	}

	fresh, err := s.backend.SearchBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	s.cacheSet(ctx, key, fresh)
	return fresh, nil
}

// ListGenres returns all genres.
func (s *Service) ListGenres(ctx context.Context) ([]Genre, error) {
	var genres []Genre
	if s.cacheGet(ctx, genresKey, &genres) {
		return genres, nil
	}

	fresh, err := s.backend.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}

	s.cacheSet(ctx, genresKey, fresh)
	return fresh, nil
}

// cacheGet loads a cached value into target and reports whether it hit.
func (s *Service) cacheGet(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		s.logger.WarnContext(ctx, "catalog cache entry corrupt, ignoring",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
