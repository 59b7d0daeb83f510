package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AuditConsumer binds a durable queue to every seating event and appends
// one line per event to an audit log file.  Run keeps reconnecting with
// exponential backoff until its context is cancelled, so a broker outage
// never stops the server.
type AuditConsumer struct {
	URL      string
	Exchange string
	Queue    string
	Path     string // e.g. logs/seating-audit.log

	log *logrus.Entry
	mu  sync.Mutex // serializes writes to Path
}

// NewAuditConsumer configures a consumer; nothing is dialed until Run.
func NewAuditConsumer(url, exchange, queue, path string, logger *logrus.Logger) *AuditConsumer {
	return &AuditConsumer{
		URL:      url,
		Exchange: exchange,
		Queue:    queue,
		Path:     path,
		log:      logger.WithField("component", "audit-consumer"),
	}
}

// Run consumes until ctx is done and then returns ctx.Err().
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.log.WithError(err).Warnf("dial broker failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if err := ch.ExchangeDeclare(c.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "#", c.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.WithField("queue", q.Name).Info("audit consumer started")

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.log.WithError(err).Error("handle message failed")
			_ = d.Nack(false, false) // malformed messages are dropped, not requeued
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one event and appends its audit line.
func (c *AuditConsumer) Handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.Tier == "" {
		return errors.New("event without type or tier")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if dir := filepath.Dir(c.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(AuditLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// AuditLine renders ev as a single newline-terminated line:
//
//	[2026-03-14T06:00:00Z] standard seats.reserved | id=... | operator="..." | {payload}
func AuditLine(ev Event) string {
	operator := ev.Operator
	if operator == "" {
		operator = "-"
	}
	payload := "{}"
	if len(ev.Payload) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, ev.Payload); err == nil {
			payload = buf.String()
		}
	}
	return fmt.Sprintf("[%s] %s %s | id=%s | operator=%q | %s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Tier, ev.Type, ev.ID, operator, payload)
}
