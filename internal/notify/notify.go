// Package notify delivers user notifications after a ledger change commits.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/walletfc/backend/internal/metrics"
	"github.com/walletfc/backend/internal/models"
)

// Writer persists notifications.
type Writer interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Service stores each notification and publishes it on the recipient's Redis
// channel. Failures are logged and counted, never returned.
type Service struct {
	store Writer
	redis *redis.Client
}

func NewService(store Writer, redisClient *redis.Client) *Service {
	return &Service{store: store, redis: redisClient}
}

// Channel is the Redis pub/sub channel for userID's notifications.
func Channel(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func (s *Service) Notify(ctx context.Context, n models.Notification) {
	if err := s.store.InsertNotification(ctx, &n); err != nil {
		log.Printf("[NOTIFY] Failed to store notification for user %s: %v", n.UserID, err)
		metrics.NotificationsDelivered.WithLabelValues("store", "failed").Inc()
		return
	}
	metrics.NotificationsDelivered.WithLabelValues("store", "ok").Inc()

	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("[NOTIFY] Failed to encode notification %s: %v", n.ID, err)
		return
	}
	if err := s.redis.Publish(ctx, Channel(n.UserID), payload).Err(); err != nil {
		log.Printf("[NOTIFY] Failed to publish notification %s: %v", n.ID, err)
		metrics.NotificationsDelivered.WithLabelValues("redis", "failed").Inc()
		return
	}
	metrics.NotificationsDelivered.WithLabelValues("redis", "ok").Inc()
}
