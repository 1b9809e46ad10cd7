package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"travel-blog-server/models"
)

// ErrMiss is returned by Get when the profile is not cached.
var ErrMiss = errors.New("cache: miss")

// ProfileCache stores public user records keyed by hex id. Credential fields
// are never cached.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

func profileKey(userID string) string {
	return "user:" + userID
}

type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*models.User, error) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, user *models.User) error {
	// PasswordHash is tagged json:"-" so it never reaches Redis.
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, profileKey(user.ID.Hex()), data, c.ttl).Err()
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = profileKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// NoopProfileCache is used when no Redis address is configured.
type NoopProfileCache struct{}

func (NoopProfileCache) Get(context.Context, string) (*models.User, error) { return nil, ErrMiss }
func (NoopProfileCache) Set(context.Context, *models.User) error            { return nil }
func (NoopProfileCache) Invalidate(context.Context, ...string) error        { return nil }

var (
	_ ProfileCache = (*RedisProfileCache)(nil)
	_ ProfileCache = NoopProfileCache{}
)
