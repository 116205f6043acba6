package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/narwhalmedia/catalog/pkg/config"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// SubjectPrefix is the root of every catalog subject.
const SubjectPrefix = "catalog"

// Client wraps NATS and JetStream connections
type Client struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger interfaces.Logger
	config config.NATSConfig
}

// NewClient connects to NATS and makes sure the catalog stream exists.
func NewClient(ctx context.Context, cfg config.NATSConfig, logger interfaces.Logger) (*Client, func(), error) {
	log := logger.WithFields(interfaces.String("component", "nats"))

	opts := []nats.Option{
		nats.Name(cfg.ClientID),
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Error("NATS disconnected", interfaces.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", interfaces.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{
		nc:     nc,
		js:     js,
		logger: log,
		config: cfg,
	}

	if err := client.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := nc.Drain(); err != nil {
			log.Error("Failed to drain NATS connection", interfaces.Error(err))
		}
	}

	log.Info("NATS client initialized",
		interfaces.String("url", cfg.URL),
		interfaces.String("client_id", cfg.ClientID),
		interfaces.String("stream", cfg.Stream))

	return client, cleanup, nil
}

// StreamConfig describes the stream holding catalog events.
func StreamConfig(name string) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        name,
		Description: "Catalog import and change events",
		Subjects: []string{
			SubjectPrefix + ".>",
		},
		Retention:    jetstream.LimitsPolicy,
		MaxAge:       30 * 24 * time.Hour,
		MaxConsumers: -1,
		Replicas:     1,
		Storage:      jetstream.FileStorage,
		Discard:      jetstream.DiscardOld,
		MaxMsgs:      -1,
		MaxBytes:     -1,
		Duplicates:   10 * time.Minute,
	}
}

func (c *Client) ensureStream(ctx context.Context) error {
	if _, err := c.js.CreateOrUpdateStream(ctx, StreamConfig(c.config.Stream)); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", c.config.Stream, err)
	}
	return nil
}

// JetStream returns the JetStream context
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Health checks the connection and JetStream availability.
func (c *Client) Health(ctx context.Context) error {
	if !c.nc.IsConnected() {
		return fmt.Errorf("NATS client is not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	info, err := c.js.AccountInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get JetStream account info: %w", err)
	}

	c.logger.Debug("NATS health check passed",
		interfaces.Int("streams", info.Streams),
		interfaces.Int("consumers", info.Consumers))
	return nil
}
