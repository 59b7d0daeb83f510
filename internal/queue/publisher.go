package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

const (
	dialTimeout  = 2 * time.Second
	dialCooldown = 5 * time.Second
)

// ErrBrokerUnavailable is returned without touching the network while
// another publish is dialing or a recent dial failed.
var ErrBrokerUnavailable = errors.New("event broker unavailable")

// dialFunc opens a connection, declares the exchange and returns a
// channel plus a closer for the connection.
type dialFunc func(url, exchange string) (channel, func() error, error)

// Publisher sends seating events to a durable topic exchange.  The
// connection is opened lazily and reopened after a failed publish.  Only
// one caller dials at a time, outside the lock; concurrent callers and
// callers within dialCooldown of a failed dial get ErrBrokerUnavailable
// immediately.
type Publisher struct {
	url      string
	exchange string
	log      *logrus.Entry
	dial     dialFunc
	now      func() time.Time

	mu        sync.Mutex
	ch        channel
	closeConn func() error
	dialing   bool
	retryAt   time.Time
}

// NewPublisher returns a publisher for exchange on the broker at url.
// No connection is made until the first Publish.
func NewPublisher(url, exchange string, logger *logrus.Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		log:      logger.WithField("component", "event-publisher"),
		dial:     dialTopic,
		now:      time.Now,
	}
}

func dialTopic(url, exchange string) (channel, func() error, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return ch, conn.Close, nil
}

// Publish sends ev with routing key "<tier>.<type>".  Messages are
// persistent and carry the event id as message id.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, ev.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.WithError(err).WithField("routing_key", ev.RoutingKey()).Warn("publish failed, dropping connection")
		p.mu.Lock()
		if p.ch == ch {
			p.reset()
		}
		p.mu.Unlock()
		return fmt.Errorf("publish %s: %w", ev.RoutingKey(), err)
	}
	return nil
}

// channel returns the open channel, dialing if none is open.
func (p *Publisher) channel() (channel, error) {
	p.mu.Lock()
	if p.ch != nil {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	if p.dialing || p.now().Before(p.retryAt) {
		p.mu.Unlock()
		return nil, ErrBrokerUnavailable
	}
	p.dialing = true
	p.mu.Unlock()

	ch, closeConn, err := p.dial(p.url, p.exchange)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialing = false
	if err != nil {
		p.retryAt = p.now().Add(dialCooldown)
		p.log.WithError(err).Warnf("broker unreachable; not retrying for %s", dialCooldown)
		return nil, err
	}
	p.ch, p.closeConn = ch, closeConn
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch, p.closeConn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
