package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// rewardRoutingKey is the topic key for currency grants.
const rewardRoutingKey = "reward.granted"

// AMQPTransport publishes events to a durable topic exchange.
type AMQPTransport struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPTransport dials url and declares exchange.
func NewAMQPTransport(url, exchange string) (*AMQPTransport, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPTransport{conn: conn, channel: ch, exchange: exchange}, nil
}

func (t *AMQPTransport) Deliver(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pub, err := publishing(ev)
	if err != nil {
		return err
	}
	if err := t.channel.Publish(t.exchange, rewardRoutingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", ev.EventID, err)
	}
	return nil
}

func (t *AMQPTransport) Close() error {
	if t.channel != nil {
		_ = t.channel.Close()
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

func publishing(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.CreatedAt,
		Body:         body,
	}, nil
}
