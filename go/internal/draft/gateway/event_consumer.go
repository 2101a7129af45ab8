package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/outbox/worker"
)

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	URL           string
	StreamName    string
	SubjectFilter string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultJetStreamConsumerConfig returns default JetStream consumer configuration
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:           nats.DefaultURL,
		StreamName:    "DRAFT_EVENTS",
		SubjectFilter: events.SubjectPrefix + ".>",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Sink receives events read from the bus. The broadcast hub and the snapshot
// cache writer are sinks.
type Sink interface {
	Publish(env events.Envelope)
}

// EventConsumer reads draft events from JetStream and hands them to local
// sinks. Every gateway instance needs every event, so it uses an ordered
// consumer of its own rather than a shared durable one.
type EventConsumer struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	config  JetStreamConsumerConfig
	sinks   []Sink
	metrics *Metrics
}

// NewEventConsumer connects to NATS. Events flow once Start is called.
func NewEventConsumer(config JetStreamConsumerConfig, metrics *Metrics, sinks ...Sink) (*EventConsumer, error) {
	nc, js, err := worker.Connect(config.URL, config.MaxReconnects, config.ReconnectWait)
	if err != nil {
		return nil, err
	}

	return &EventConsumer{
		nc:      nc,
		js:      js,
		config:  config,
		sinks:   sinks,
		metrics: metrics,
	}, nil
}

// Start consumes new events until ctx is done. Gateways sync clients from
// snapshots, so history before startup is not replayed.
func (ec *EventConsumer) Start(ctx context.Context) error {
	consumer, err := ec.js.OrderedConsumer(ctx, ec.config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{ec.config.SubjectFilter},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create ordered consumer: %w", err)
	}

	log.Info().
		Str("stream", ec.config.StreamName).
		Str("filter", ec.config.SubjectFilter).
		Msg("starting JetStream event consumer")

	consumeCtx, err := consumer.Consume(ec.handle)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	<-ctx.Done()
	log.Info().Msg("event consumer shutting down")
	return nil
}

func (ec *EventConsumer) handle(msg jetstream.Msg) {
	if err := ec.processMessage(msg.Data()); err != nil {
		log.Error().
			Err(err).
			Str("subject", msg.Subject()).
			Msg("failed to process message")
	}
}

// processMessage decodes one bus message and fans it out.
func (ec *EventConsumer) processMessage(data []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	log.Debug().
		Str("event_id", env.EventID.String()).
		Str("draft_id", env.DraftID.String()).
		Str("event_type", string(env.EventType)).
		Int64("sequence", env.Sequence).
		Msg("processing JetStream event")

	ec.metrics.busEvent(string(env.EventType))
	for _, sink := range ec.sinks {
		sink.Publish(env)
	}
	return nil
}

// Stop closes the NATS connection.
func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
