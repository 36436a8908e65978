package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupTTL = 48 * time.Hour

// WebhookDedup remembers provider event ids so redelivered webhooks can be
// dropped before touching the database. It is a fast-path only: every write
// path behind it is idempotent, so Redis being down or flushed is harmless.
type WebhookDedup struct {
	client *redis.Client
	logger *zap.Logger
}

func NewWebhookDedup(addr string, logger *zap.Logger) *WebhookDedup {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &WebhookDedup{client: client, logger: logger}
}

func dedupKey(eventID string) string {
	return fmt.Sprintf("dedup:webhook:%s", eventID)
}

func (d *WebhookDedup) Seen(ctx context.Context, eventID string) bool {
	n, err := d.client.Exists(ctx, dedupKey(eventID)).Result()
	if err != nil {
		d.logger.Warn("Dedup lookup failed", zap.String("event_id", eventID), zap.Error(err))
		return false
	}
	return n > 0
}

func (d *WebhookDedup) MarkSeen(ctx context.Context, eventID string) {
	if err := d.client.Set(ctx, dedupKey(eventID), "1", dedupTTL).Err(); err != nil {
		d.logger.Warn("Dedup mark failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (d *WebhookDedup) Close() error {
	return d.client.Close()
}
