// Package hermes publishes ranking run events to NATS JetStream.
package hermes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var ErrNotConnected = errors.New("hermes: not connected")

// streamSetupTimeout bounds stream creation at startup.
const streamSetupTimeout = 3 * time.Second

type Client interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close()
}

type NATSClient struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	// A broker that is down at startup is an error so callers can run
	// without events. Drops after connecting are retried.
	nc, err := nats.Connect(url,
		nats.Name("playground"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("hermes disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("hermes reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}
	setupCtx, cancel := context.WithTimeout(ctx, streamSetupTimeout)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(setupCtx, StreamConfig()); err != nil {
		logger.Warn("failed to ensure stream", "stream", StreamName, "error", err)
	}
	return c, nil
}

// StreamConfig describes the stream that retains run events.
func StreamConfig() jetstream.StreamConfig {
	maxAge, _ := time.ParseDuration(StreamMaxAge)
	return jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectRunAll},
		MaxAge:   maxAge,
	}
}

// Publish waits for the stream to acknowledge the event. While the
// connection is down it fails fast instead of waiting out ctx.
func (c *NATSClient) Publish(ctx context.Context, subject string, data interface{}) error {
	if !c.conn.IsConnected() {
		return fmt.Errorf("publish %s: %w", subject, ErrNotConnected)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if _, err := c.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *NATSClient) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
