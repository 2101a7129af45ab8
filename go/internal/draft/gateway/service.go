// Package gateway serves draft state to websocket and REST clients. Each
// connection receives a snapshot and then the draft's events in sequence
// order, and may submit picks for the team it is bound to.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the draft gateway: websocket connections, state routes and,
// when running apart from the engine, the JetStream consumer that feeds them.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	eventConsumer     *EventConsumer
}

// Config holds configuration for the draft gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
}

// DefaultConfig returns default configuration for the draft gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	cache    SnapshotCache
	consumer *EventConsumer
	metrics  *Metrics
}

// WithSnapshotCache reads snapshots from the cache before the engine.
func WithSnapshotCache(cache SnapshotCache) ServiceOption {
	return func(o *serviceOptions) {
		o.cache = cache
	}
}

// WithEventConsumer runs a bus consumer alongside the gateway. Its sinks
// should include the Source the gateway subscribes to.
func WithEventConsumer(ec *EventConsumer) ServiceOption {
	return func(o *serviceOptions) {
		o.consumer = ec
	}
}

func WithServiceMetrics(m *Metrics) ServiceOption {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

// NewService creates a new draft gateway service
func NewService(config Config, engine Engine, source Source, opts ...ServiceOption) *Service {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	snapshots := NewSnapshots(engine, o.cache)
	connectionManager := NewConnectionManager(engine, source, snapshots, config.ConnectionConfig, WithMetrics(o.metrics))

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		stateHandler:      NewStateHandler(snapshots),
		eventConsumer:     o.consumer,
	}
}

// Start runs the gateway until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting draft gateway service")

	errCh := make(chan error, 1)
	if s.eventConsumer != nil {
		go func() {
			errCh <- s.eventConsumer.Start(ctx)
		}()
	}

	go s.connectionManager.Start(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			s.Stop()
			return fmt.Errorf("event consumer failed: %w", err)
		}
		<-ctx.Done()
	}

	log.Info().Msg("draft gateway service shutting down")
	return s.Stop()
}

// Stop shuts down the event consumer. Connections close with the context
// passed to Start.
func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}
	log.Info().Msg("draft gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and state routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("draft gateway routes registered")
}

// Stats returns statistics about open connections.
func (s *Service) Stats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
