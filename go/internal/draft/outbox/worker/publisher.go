// Package worker publishes relayed draft events to NATS JetStream.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
)

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int           // Number of replicas for the stream
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "DRAFT_EVENTS",
		SubjectPrefix:   events.SubjectPrefix,
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          7 * 24 * time.Hour,
		MaxMsgs:         -1, // No limit
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// Headers set on every published message.
const (
	HeaderEventType = "Event-Type"
	HeaderDraftID   = "Draft-ID"
	HeaderEventID   = "Event-ID"
	HeaderSequence  = "Sequence"
)

type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamPublisher(ctx context.Context, cfg JetStreamConfig) (*JetStreamPublisher, error) {
	nc, js, err := Connect(cfg.URL, cfg.MaxReconnects, cfg.ReconnectWait)
	if err != nil {
		return nil, err
	}

	p := &JetStreamPublisher{nc: nc, js: js, config: cfg}
	if err := EnsureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return p, nil
}

// EnsureStream creates the draft event stream or updates it when its limits
// changed.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg JetStreamConfig) error {
	sc := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Draft event stream for outbox pattern",
		Subjects:    []string{fmt.Sprintf("%s.>", cfg.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		MaxMsgs:     cfg.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    cfg.Replicas,
		Duplicates:  cfg.DuplicateWindow,
	}

	stream, err := js.Stream(ctx, cfg.StreamName)
	if err != nil {
		if _, err = js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", cfg.StreamName).Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().Str("stream", cfg.StreamName).Msg("updated JetStream stream")
	}
	return nil
}

// Publish sends env as JSON. The event ID doubles as the JetStream message ID
// so a republish after a crash is dropped by the stream.
func (p *JetStreamPublisher) Publish(ctx context.Context, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, env.EventType)
	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			HeaderEventType: []string{string(env.EventType)},
			HeaderDraftID:   []string{env.DraftID.String()},
			HeaderEventID:   []string{env.EventID.String()},
			HeaderSequence:  []string{strconv.FormatInt(env.Sequence, 10)},
		},
	},
		jetstream.WithMsgID(env.EventID.String()),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", env.EventID.String()).
		Uint64("stream_sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")
	return nil
}

// Conn exposes the NATS connection for health checks.
func (p *JetStreamPublisher) Conn() *nats.Conn {
	return p.nc
}

func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
