package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ChangesChannel - канал Redis, в который публикуются изменения отчетов
const ChangesChannel = "incident_reports_changes"

// RedisBridge публикует события в Redis и ретранслирует полученные события в локальный хаб,
// чтобы подписчики любого экземпляра видели изменения, сделанные другими.
type RedisBridge struct {
	redisClient *redis.Client
	hub         *Hub
	logger      *logrus.Logger
}

// NewRedisBridge создает мост между Redis pub/sub и хабом
func NewRedisBridge(client *redis.Client, hub *Hub, logger *logrus.Logger) *RedisBridge {
	return &RedisBridge{
		redisClient: client,
		hub:         hub,
		logger:      logger,
	}
}

// Publish публикует событие в канал изменений
func (b *RedisBridge) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}
	if err := b.redisClient.Publish(ctx, ChangesChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish realtime event to Redis: %w", err)
	}
	return nil
}

// Start запускает горутину, ретранслирующую события канала в хаб
func (b *RedisBridge) Start(ctx context.Context) {
	b.logger.Info("Starting realtime bridge...")
	pubsub := b.redisClient.Subscribe(ctx, ChangesChannel)
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				b.logger.Info("Stopping realtime bridge.")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.relay(msg.Payload)
			}
		}
	}()
}

func (b *RedisBridge) relay(payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		b.logger.WithError(err).Error("Failed to unmarshal realtime event from Redis")
		return
	}
	n := b.hub.Broadcast(e)
	b.logger.WithFields(logrus.Fields{
		"event_type": e.Type,
		"delivered":  n,
	}).Debug("Realtime event relayed")
}
