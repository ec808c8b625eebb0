package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/moxuan/werewolf-judge/internal/observability"
	"github.com/moxuan/werewolf-judge/internal/types"
)

const (
	publishAttempts = 3
	publishBackoff  = 100 * time.Millisecond
	// degradedAfter consecutive drops marks the room degraded; delivery
	// keeps being attempted and participants recover via rejoin.
	degradedAfter = 8
	outboxDepth   = 256
)

// AMQPBus mirrors every envelope onto a topic exchange. Routing keys are
// room.<code>.broadcast, room.<code>.uid.<uid> and room.<code>.host, so an
// external consumer can bind as narrowly as it likes. A per-room worker
// drains an ordered outbox, which keeps participant FIFO intact while a
// slow broker never blocks the room actor.
type AMQPBus struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu    sync.Mutex
	rooms map[string]*roomOutbox
}

type roomOutbox struct {
	ch       chan outboundMsg
	done     chan struct{}
	failures int
	degraded bool
}

type outboundMsg struct {
	routingKey string
	env        types.Envelope
}

type Config struct {
	URL      string
	Exchange string
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// DialAMQP connects and declares the topic exchange.
func DialAMQP(cfg Config) (*AMQPBus, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPBus{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   logger,
		metrics:  cfg.Metrics,
		rooms:    make(map[string]*roomOutbox),
	}, nil
}

func (b *AMQPBus) EnsureRoom(ctx context.Context, roomCode string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.rooms[roomCode]; ok {
		return nil
	}
	queueName := "room." + roomCode
	if _, err := b.channel.QueueDeclare(queueName, true, true, false, false, nil); err != nil {
		return fmt.Errorf("declare room queue: %w", err)
	}
	if err := b.channel.QueueBind(queueName, "room."+roomCode+".#", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind room queue: %w", err)
	}
	ob := &roomOutbox{ch: make(chan outboundMsg, outboxDepth), done: make(chan struct{})}
	b.rooms[roomCode] = ob
	go b.drain(roomCode, ob)
	return nil
}

func (b *AMQPBus) ReleaseRoom(ctx context.Context, roomCode string) error {
	b.mu.Lock()
	ob, ok := b.rooms[roomCode]
	if ok {
		delete(b.rooms, roomCode)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}
	close(ob.ch)
	<-ob.done
	if _, err := b.channel.QueueDelete("room."+roomCode, false, false, false); err != nil {
		return fmt.Errorf("delete room queue: %w", err)
	}
	return nil
}

func (b *AMQPBus) Broadcast(ctx context.Context, roomCode string, env types.Envelope) error {
	return b.enqueue(roomCode, "room."+roomCode+".broadcast", env)
}

func (b *AMQPBus) SendToUser(ctx context.Context, roomCode, uid string, env types.Envelope) error {
	return b.enqueue(roomCode, "room."+roomCode+".uid."+uid, env)
}

func (b *AMQPBus) SendToHost(ctx context.Context, roomCode string, env types.Envelope) error {
	return b.enqueue(roomCode, "room."+roomCode+".host", env)
}

func (b *AMQPBus) enqueue(roomCode, routingKey string, env types.Envelope) error {
	b.mu.Lock()
	ob, ok := b.rooms[roomCode]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("room %s has no channel", roomCode)
	}
	select {
	case ob.ch <- outboundMsg{routingKey: routingKey, env: env}:
		return nil
	default:
		// A full outbox means the broker has been unreachable for a
		// while; dropping here is recoverable through rejoin.
		if b.metrics != nil {
			b.metrics.BusPublishFailed.Inc()
		}
		b.logger.Warn("room outbox full, dropping message",
			"room_code", roomCode, "type", string(env.Type))
		return nil
	}
}

func (b *AMQPBus) drain(roomCode string, ob *roomOutbox) {
	defer close(ob.done)
	for msg := range ob.ch {
		if err := b.publish(msg); err != nil {
			ob.failures++
			if b.metrics != nil {
				b.metrics.BusPublishFailed.Inc()
			}
			if ob.failures >= degradedAfter && !ob.degraded {
				ob.degraded = true
				b.logger.Warn("room transport degraded",
					"room_code", roomCode, "consecutive_failures", ob.failures)
			}
			continue
		}
		if ob.degraded {
			b.logger.Info("room transport recovered", "room_code", roomCode)
		}
		ob.failures = 0
		ob.degraded = false
	}
}

func (b *AMQPBus) publish(msg outboundMsg) error {
	body, err := json.Marshal(msg.env)
	if err != nil {
		return err
	}
	var lastErr error
	for attempt := 0; attempt < publishAttempts; attempt++ {
		if attempt > 0 {
			if b.metrics != nil {
				b.metrics.BusPublishRetry.Inc()
			}
			time.Sleep(publishBackoff << (attempt - 1))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = b.channel.PublishWithContext(ctx, b.exchange, msg.routingKey, false, false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Body:         body,
				Timestamp:    time.Now(),
			})
		cancel()
		if lastErr == nil {
			return nil
		}
	}
	b.logger.Error("publish failed after retries",
		"routing_key", msg.routingKey, "error", lastErr)
	return lastErr
}

func (b *AMQPBus) Close() error {
	b.mu.Lock()
	for code, ob := range b.rooms {
		close(ob.ch)
		<-ob.done
		delete(b.rooms, code)
	}
	b.mu.Unlock()
	if err := b.channel.Close(); err != nil {
		return err
	}
	return b.conn.Close()
}
