package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// publisher is the subset of *amqp091.Channel the notifier needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier publishes each message as JSON to a topic exchange with
// routing key "notify.<kind>".
type AMQPNotifier struct {
	mu       sync.Mutex
	pub      publisher
	exchange string
	closers  []func() error
}

// DialAMQP connects to url, declares the exchange and returns a notifier.
func DialAMQP(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	slog.Info("Connected to RabbitMQ", "exchange", exchange)
	n := newAMQPNotifier(ch, exchange)
	n.closers = []func() error{ch.Close, conn.Close}
	return n, nil
}

func newAMQPNotifier(pub publisher, exchange string) *AMQPNotifier {
	return &AMQPNotifier{pub: pub, exchange: exchange}
}

// Notify publishes msg as a persistent JSON message.
func (n *AMQPNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Kind, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.pub.PublishWithContext(ctx,
		n.exchange,
		RoutingKey(msg.Kind),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", msg.Kind, msg.Phone, err)
	}
	return nil
}

// Close closes the channel and connection opened by DialAMQP.
func (n *AMQPNotifier) Close() error {
	var first error
	for _, closeFn := range n.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RoutingKey returns the topic routing key for kind.
func RoutingKey(kind Kind) string {
	return "notify." + string(kind)
}
