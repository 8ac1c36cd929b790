package blotter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ContentCache keeps the raw bytes of recently uploaded blotters so the chat
// session can attach the selected file without asking the client to re-send
// it. Entries expire; a miss is not an error, the chat simply sends no
// attachment.
type ContentCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewContentCache creates a content cache with the given retention.
func NewContentCache(redisClient *redis.Client, ttl time.Duration) *ContentCache {
	return &ContentCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "blotter:content:",
	}
}

func (c *ContentCache) key(userID, fileName string) string {
	return c.prefix + userID + ":" + fileName
}

// Put stores file bytes for a user.
func (c *ContentCache) Put(ctx context.Context, userID, fileName string, content []byte) error {
	if err := c.redis.Set(ctx, c.key(userID, fileName), content, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache blotter content: %w", err)
	}
	return nil
}

// Get fetches file bytes for a user. The second return is false on a miss.
func (c *ContentCache) Get(ctx context.Context, userID, fileName string) ([]byte, bool, error) {
	data, err := c.redis.Get(ctx, c.key(userID, fileName)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached blotter content: %w", err)
	}
	return data, true, nil
}

// Delete removes a cached file.
func (c *ContentCache) Delete(ctx context.Context, userID, fileName string) error {
	if err := c.redis.Del(ctx, c.key(userID, fileName)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached blotter content: %w", err)
	}
	return nil
}
