// Package broker publishes domain events to a RabbitMQ topic exchange so
// other services (kitchen displays, notification senders) can follow order
// progress without polling the API.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/metrics"
)

// Message is the JSON body of every published event.
type Message struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends events under a routing key such as "order.created".
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close() error
}

// Nop discards every message. It is used when AMQP_URL is empty.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func() (*amqp.Connection, channel, error)

// AMQP publishes persistent JSON messages to one durable topic exchange. A
// closed channel is re-dialled on the next Publish.
type AMQP struct {
	exchange string
	dial     dialFunc

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	closed bool
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string) (*AMQP, error) {
	p := &AMQP{exchange: exchange}
	p.dial = func() (*amqp.Connection, channel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("broker: dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("broker: channel: %w", err)
		}
		if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("broker: declare %s: %w", exchange, err)
		}
		return conn, ch, nil
	}

	if err := p.connect(); err != nil {
		return nil, err
	}
	logger.Info("broker: connected", "exchange", exchange)
	return p, nil
}

func (p *AMQP) connect() error {
	conn, ch, err := p.dial()
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQP) Publish(ctx context.Context, routingKey string, data any) error {
	body, err := json.Marshal(Message{Event: routingKey, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("broker: marshal %s: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("broker: publisher closed")
	}
	if p.ch == nil || p.ch.IsClosed() {
		logger.WithCtx(ctx).Warn("broker: channel closed, reconnecting")
		if p.conn != nil {
			p.conn.Close()
		}
		if err := p.connect(); err != nil {
			metrics.BrokerPublished.WithLabelValues("error").Inc()
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		metrics.BrokerPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("broker: publish %s: %w", routingKey, err)
	}

	metrics.BrokerPublished.WithLabelValues("ok").Inc()
	logger.WithCtx(ctx).Debug("broker: published", "routing_key", routingKey)
	return nil
}

func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
