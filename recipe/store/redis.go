package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cfg "github.com/mealforge/mealforge/config"
	errorspkg "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/recipe"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements RecipeStore using Redis. With a TTL set it behaves
// as a cache in front of a durable backend.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for keys (0 means no expiration)
}

// NewRedisStore creates a new Redis-based recipe store
func NewRedisStore(config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = &RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "mealforge:recipe:",
			TTL:    0,
		}
	}
	if err := cfg.ValidateRedisConfig(config.Addr, config.DB, config.Prefix); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}, nil
}

func (s *RedisStore) key(id int64) string {
	return fmt.Sprintf("%s%d", s.prefix, id)
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// SaveRecipe stores a recipe and records it in a sorted index keyed by
// creation time so listing stays ordered.
func (s *RedisStore) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	if r == nil {
		return fmt.Errorf("recipe cannot be nil")
	}
	if r.ID == 0 {
		r.ID = time.Now().UnixNano()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := s.client.Set(ctx, s.key(r.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store recipe in Redis: %w", err)
	}
	member := redis.Z{Score: float64(r.CreatedAt.UnixNano()), Member: s.key(r.ID)}
	if err := s.client.ZAdd(ctx, s.indexKey(), member).Err(); err != nil {
		return fmt.Errorf("failed to index recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe by ID
func (s *RedisStore) GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	var r recipe.Recipe
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return &r, nil
}

// ListRecipes returns the most recent recipes, newest first
func (s *RedisStore) ListRecipes(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}
	keys, err := s.client.ZRevRange(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe index: %w", err)
	}

	out := make([]*recipe.Recipe, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// Key expired, drop it from the index.
			s.client.ZRem(ctx, s.indexKey(), key)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get recipe: %w", err)
		}

		var r recipe.Recipe
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
		}
		out = append(out, &r)
	}
	return out, nil
}

// DeleteRecipe removes a recipe by ID
func (s *RedisStore) DeleteRecipe(ctx context.Context, id int64) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	s.client.ZRem(ctx, s.indexKey(), s.key(id))
	if n == 0 {
		return fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis connection is alive
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
