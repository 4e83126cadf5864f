// Package jetstream provides the NATS JetStream implementation of the
// messaging publisher.
package jetstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/logger"
	"github.com/sproutfund/protocol-core/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	ConnectTimeout time.Duration
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON

	closeOnce sync.Once
	closed    chan struct{}
}

// NewPublisher creates a new NATS JetStream publisher. The initial
// connection is retried with exponential backoff up to ConnectTimeout.
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 30 * time.Second
	}

	var nc adapter.NatsConn
	var js adapter.JetStream
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectTimeout
	err := backoff.Retry(func() error {
		var err error
		nc, js, err = natsJS.Connect(cfg.URL, opts...)
		return err
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
		closed:     make(chan struct{}),
	}, nil
}

// PublishEvent publishes a protocol event to NATS JetStream
func (p *publisher) PublishEvent(ctx context.Context, event *domain.Event) error {
	logger.Debug("Publishing Nats event", zap.Any("event", event))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.buildSubject(event)

	_, err = p.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// buildSubject constructs the NATS subject based on the event
func (p *publisher) buildSubject(event *domain.Event) string {
	// Format: protocol.events.{event_type}
	// e.g., protocol.events.contribution, protocol.events.refund_issued
	return fmt.Sprintf("protocol.events.%s", event.Type)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		if p.nc != nil {
			p.nc.Close()
		}
	})
}

// CloseChan returns a channel that is closed once Close has been called
func (p *publisher) CloseChan() <-chan struct{} {
	return p.closed
}
