package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 5 * time.Second
	dialTimeout    = 10 * time.Second
	redialBackoff  = 5 * time.Second
	dialAttempts   = 5
	queueSize      = 1024
)

var errBrokerUnavailable = errors.New("rabbitmq unavailable")

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func(ctx context.Context, url, exchange string) (amqpChannel, io.Closer, error)

// AMQPPublisher sends events to a durable topic exchange, routed by event
// type (order.created, bill.updated, ...). Publish only enqueues; Run
// delivers. A dropped connection is redialled on the next delivery, at most
// once per backoff interval.
type AMQPPublisher struct {
	url      string
	exchange string
	dial     dialFunc
	queue    chan Event

	dialTimeout time.Duration
	backoff     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	ch       amqpChannel
	conn     io.Closer
	nextDial time.Time
}

// NewAMQPPublisher connects to url, retrying with a linear backoff, and
// declares exchange. Events are not delivered until Run is started.
func NewAMQPPublisher(ctx context.Context, url, exchange string) (*AMQPPublisher, error) {
	p := newAMQPPublisher(url, exchange, dialExchange)

	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		if err = p.connect(ctx); err == nil {
			return p, nil
		}
		if attempt == dialAttempts {
			break
		}
		wait := time.Duration(attempt) * 2 * time.Second
		log.Printf("WARN: rabbitmq connect failed, retrying in %v: %v", wait, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect rabbitmq after %d attempts: %w", dialAttempts, err)
}

func newAMQPPublisher(url, exchange string, dial dialFunc) *AMQPPublisher {
	return &AMQPPublisher{
		url:         url,
		exchange:    exchange,
		dial:        dial,
		queue:       make(chan Event, queueSize),
		dialTimeout: dialTimeout,
		backoff:     redialBackoff,
		now:         time.Now,
	}
}

func dialExchange(ctx context.Context, url, exchange string) (amqpChannel, io.Closer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			c, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// bounds the AMQP handshake; the library clears it afterwards
			if deadline, ok := ctx.Deadline(); ok {
				if err := c.SetDeadline(deadline); err != nil {
					c.Close()
					return nil, err
				}
			}
			return c, nil
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return ch, conn, nil
}

// connect replaces the current channel. The dial is bounded by ctx and
// p.dialTimeout.
func (p *AMQPPublisher) connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()

	ch, conn, err := p.dial(ctx, p.url, p.exchange)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.ch, p.conn = ch, conn
	p.mu.Unlock()
	return nil
}

// Publish queues ev for delivery and returns without waiting for the
// broker. A full queue drops the event.
func (p *AMQPPublisher) Publish(_ context.Context, ev Event) error {
	select {
	case p.queue <- ev:
		return nil
	default:
		return fmt.Errorf("rabbitmq queue full, dropping %s", ev.Type)
	}
}

// Run delivers queued events until ctx is cancelled. Whatever is still
// queued at that point gets one publish attempt on the open channel.
func (p *AMQPPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return nil
		case ev := <-p.queue:
			if err := p.deliver(ctx, ev); err != nil {
				log.Printf("ERROR: publish %s: %v", ev.Type, err)
			}
		}
	}
}

func (p *AMQPPublisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	for {
		select {
		case ev := <-p.queue:
			if err := p.send(ctx, ev); err != nil {
				log.Printf("ERROR: publish %s on shutdown: %v", ev.Type, err)
				return
			}
		default:
			return
		}
	}
}

// deliver publishes ev, redialling first when the channel is gone. Failed
// dials are not retried before the backoff has passed.
func (p *AMQPPublisher) deliver(ctx context.Context, ev Event) error {
	p.mu.Lock()
	connected := p.ch != nil && !p.ch.IsClosed()
	if !connected {
		p.closeLocked()
	}
	wait := p.nextDial
	p.mu.Unlock()

	if !connected {
		if p.now().Before(wait) {
			return errBrokerUnavailable
		}
		if err := p.connect(ctx); err != nil {
			p.mu.Lock()
			p.nextDial = p.now().Add(p.backoff)
			p.mu.Unlock()
			return fmt.Errorf("reconnect: %w", err)
		}
	}
	return p.send(ctx, ev)
}

func (p *AMQPPublisher) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	ch := p.ch
	p.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		return errBrokerUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		p.exchange,
		ev.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         ev.Type,
			Timestamp:    ev.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.exchange, err)
	}
	return nil
}

// Close shuts the channel and connection. Call it after Run has returned.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
