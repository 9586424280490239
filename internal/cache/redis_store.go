package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courseforge/course-engine/internal/domain"
)

const defaultPrefix = "course:"

// RedisStore implements CourseStore on Redis. Courses are content-addressed
// and immutable, so entries carry a long TTL rather than invalidation logic.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// NewRedisStore creates a Redis-backed course store and verifies the
// connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, domain.CacheError("redis ping failed", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &RedisStore{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}, nil
}

// Get retrieves a course by document hash.
func (s *RedisStore) Get(ctx context.Context, hash string) (*domain.Course, error) {
	val, err := s.client.Get(ctx, s.prefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, domain.CacheError("redis get", err)
	}

	var course domain.Course
	if err := json.Unmarshal(val, &course); err != nil {
		return nil, domain.CacheError("decode cached course", err)
	}

	return &course, nil
}

// Put stores the serialized course keyed by its document hash.
func (s *RedisStore) Put(ctx context.Context, rec CourseRecord) error {
	payload, err := json.Marshal(rec.Course)
	if err != nil {
		return domain.CacheError("encode course", err)
	}

	if err := s.client.Set(ctx, s.prefix+rec.DocumentHash, payload, s.ttl).Err(); err != nil {
		return domain.CacheError("redis set", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
