package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// emptyMarker keeps an empty following set cacheable; Redis drops empty sets.
const emptyMarker = "-"

// FollowingCache holds each user's full following set in a Redis set. Writers
// invalidate; readers repopulate on miss.
type FollowingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFollowingCache(client *redis.Client, ttl time.Duration) *FollowingCache {
	return &FollowingCache{client: client, ttl: ttl}
}

func followingKey(userID string) string { return fmt.Sprintf("following:set:%s", userID) }

// Get returns the cached set and whether the key was present.
func (c *FollowingCache) Get(ctx context.Context, userID string) ([]string, bool, error) {
	members, err := c.client.SMembers(ctx, followingKey(userID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m != emptyMarker {
			ids = append(ids, m)
		}
	}
	return ids, true, nil
}

func (c *FollowingCache) Set(ctx context.Context, userID string, ids []string) error {
	key := followingKey(userID)
	members := make([]any, 0, len(ids)+1)
	members = append(members, emptyMarker)
	for _, id := range ids {
		members = append(members, id)
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *FollowingCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, followingKey(userID)).Err()
}
