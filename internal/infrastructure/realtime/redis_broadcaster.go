package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const publishTimeout = 3 * time.Second

var _ order.Notifier = (*RedisBroadcaster)(nil)

// RedisBroadcaster difunde los eventos entre instancias por Redis Pub/Sub.
// El mensaje llega al Hub local a través de la propia suscripción.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *logger.Logger
}

// NewRedisBroadcaster construye el difusor sobre un cliente existente.
func NewRedisBroadcaster(client *redis.Client, channel string, hub *Hub, log *logger.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel, hub: hub, log: log.Component("realtime_redis")}
}

// Emit publica en segundo plano con su propio timeout. Si Redis falla, entrega solo en esta instancia.
func (b *RedisBroadcaster) Emit(_ context.Context, room, event string, payload any) {
	m, err := NewMessage(room, event, payload)
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("evento no serializable")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := b.publish(ctx, m); err != nil {
			b.log.Warn().Err(err).Str("room", room).Str("event", event).Msg("redis no disponible; entrega local")
			b.hub.Publish(m)
		}
	}()
}

func (b *RedisBroadcaster) publish(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Run alimenta el Hub desde el canal hasta que ctx termine. Bloquea.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("suscripción a %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("suscrito a eventos")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *RedisBroadcaster) deliver(payload string) {
	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil || m.Room == "" {
		b.log.Warn().Str("payload", payload).Msg("mensaje de realtime inválido")
		return
	}
	b.hub.Publish(m)
}
