package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"rideshare/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitNotifier publishes notifications as persistent JSON messages on a durable
// queue through the default exchange.
type RabbitNotifier struct {
	queue string
	conn  *amqp.Connection
	ch    publisher
	mu    sync.Mutex
}

// NewRabbitNotifier dials url and declares queue.
func NewRabbitNotifier(url, queue string) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &RabbitNotifier{queue: queue, conn: conn, ch: ch}, nil
}

func (r *RabbitNotifier) Notify(ctx context.Context, n Notification) error {
	if r.conn != nil && r.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ch.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	utils.LogEvent(n.RequestID, "notify", string(n.Channel), "published", "queue", r.queue, "template", n.Template)
	return nil
}

func (r *RabbitNotifier) Close() error {
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}
