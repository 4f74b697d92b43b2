package redis

import (
	"context"
	"fmt"
	"time"
)

// UpdateDedup remembers recently processed update IDs so a restart or a
// re-delivered long-poll batch never produces a second job for the same
// message.
type UpdateDedup struct {
	client RedisClient
	ttl    time.Duration
}

func NewUpdateDedup(client RedisClient, ttl time.Duration) *UpdateDedup {
	return &UpdateDedup{client: client, ttl: ttl}
}

// MarkSeen returns true the first time a given chat/message pair is seen
// within the TTL window. On Redis errors it fails open: better a rare
// duplicate reply than a dropped message.
func (d *UpdateDedup) MarkSeen(ctx context.Context, chatID int64, messageID int) (bool, error) {
	key := fmt.Sprintf("seen_update:%d:%d", chatID, messageID)
	first, err := d.client.SetNX(ctx, key, 1, d.ttl)
	if err != nil {
		return true, err
	}
	return first, nil
}
