package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// pendingAlertThreshold marks the relay degraded when the backlog grows past it.
const pendingAlertThreshold = 1000

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	LastEventTime     time.Time `json:"last_event_time"`
	EventsProcessed   uint64    `json:"events_processed"`
	PendingEvents     int64     `json:"pending_events"`
	DatabaseConnected bool      `json:"database_connected"`
	NATSConnected     bool      `json:"nats_connected"`
	ListenerActive    bool      `json:"listener_active"`
	Errors            []string  `json:"errors"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnStatus is satisfied by *nats.Conn.
type ConnStatus interface {
	IsConnected() bool
}

type RelayHealthChecker struct {
	relay     *Relay
	db        Pinger
	source    Source
	bus       ConnStatus
	threshold time.Duration // How long without events before unhealthy
}

func NewRelayHealthChecker(relay *Relay, db Pinger, source Source, bus ConnStatus, threshold time.Duration) *RelayHealthChecker {
	return &RelayHealthChecker{
		relay:     relay,
		db:        db,
		source:    source,
		bus:       bus,
		threshold: threshold,
	}
}

func (h *RelayHealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.EventsProcessed, status.LastEventTime = h.relay.Stats()

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.bus != nil {
		status.NATSConnected = h.bus.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	status.ListenerActive = h.relay.Running()
	if !status.ListenerActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "listener not active")
	}

	if status.DatabaseConnected {
		pending, err := h.source.CountUnsent(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		} else {
			status.PendingEvents = pending
			if pending > pendingAlertThreshold {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
			}
		}
	}

	// a stalled relay only matters when there is something to relay
	if status.PendingEvents > 0 && !status.LastEventTime.IsZero() {
		since := time.Since(status.LastEventTime)
		if since > h.threshold {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("no events processed for %s", since))
		}
	}

	return status
}

func (h *RelayHealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
