package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Engine is what the gateway needs from the draft engine. Both the in-process
// orchestrator and the RPC client satisfy it.
type Engine interface {
	GetSnapshot(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error)
	ListActiveDrafts(ctx context.Context) ([]uuid.UUID, error)
	SubmitPick(ctx context.Context, draftID, teamID, playerID uuid.UUID) (models.DraftPick, error)
	SetAutopick(ctx context.Context, draftID, teamID uuid.UUID, enabled bool) (*ledger.Snapshot, error)
	SetPresence(ctx context.Context, draftID, teamID uuid.UUID, online bool) error
}

// Source delivers a draft's committed events in sequence order. The channel
// closes when ctx ends, when cancel is called, or when the subscriber falls
// behind.
type Source interface {
	Subscribe(ctx context.Context, draftID uuid.UUID) (<-chan events.Envelope, func())
}

// ConnectionManager manages WebSocket connections for draft events
type ConnectionManager struct {
	engine    Engine
	source    Source
	snapshots *Snapshots
	metrics   *Metrics

	draftConnections map[uuid.UUID]map[*Connection]bool
	mu               sync.RWMutex

	// presence counts open connections per seat. presenceMu serializes the
	// engine calls so online/offline reach it in order.
	presence   map[seat]int
	presenceMu sync.Mutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
}

type seat struct {
	draftID uuid.UUID
	teamID  uuid.UUID
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	UserID  string
	DraftID uuid.UUID
	// TeamID is uuid.Nil for spectators.
	TeamID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	resync    chan struct{}

	// lastSeq is owned by the forward goroutine.
	lastSeq int64
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	CommandTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		CommandTimeout:  10 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// ManagerOption configures a ConnectionManager.
type ManagerOption func(*ConnectionManager)

// WithMetrics records connection and forwarding metrics.
func WithMetrics(m *Metrics) ManagerOption {
	return func(cm *ConnectionManager) {
		cm.metrics = m
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(engine Engine, source Source, snapshots *Snapshots, config ConnectionConfig, opts ...ManagerOption) *ConnectionManager {
	cm := &ConnectionManager{
		engine:           engine,
		source:           source,
		snapshots:        snapshots,
		draftConnections: make(map[uuid.UUID]map[*Connection]bool),
		presence:         make(map[seat]int),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
	for _, opt := range opts {
		opt(cm)
	}
	return cm
}

// Start blocks until ctx is done, then closes every connection.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	<-ctx.Done()
	log.Info().Msg("connection manager shutting down")

	cm.mu.RLock()
	var open []*Connection
	for _, conns := range cm.draftConnections {
		for conn := range conns {
			open = append(open, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range open {
		conn.close()
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket. The client
// receives a snapshot first and then every later event of the draft.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, userID string, draftID, teamID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		DraftID:     draftID,
		TeamID:      teamID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		resync:      make(chan struct{}, 1),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()
	go connection.forward()

	log.Info().
		Str("connection_id", connection.ID).
		Str("user_id", userID).
		Str("draft_id", draftID.String()).
		Str("team_id", teamID.String()).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	if cm.draftConnections[conn.DraftID] == nil {
		cm.draftConnections[conn.DraftID] = make(map[*Connection]bool)
	}
	cm.draftConnections[conn.DraftID][conn] = true
	total := len(cm.draftConnections[conn.DraftID])
	cm.mu.Unlock()

	cm.metrics.connectionOpened(conn.TeamID != uuid.Nil)
	log.Debug().
		Str("connection_id", conn.ID).
		Str("draft_id", conn.DraftID.String()).
		Int("total_connections", total).
		Msg("connection registered")

	if conn.TeamID != uuid.Nil {
		cm.updatePresence(seat{conn.DraftID, conn.TeamID}, 1)
	}
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	connections, exists := cm.draftConnections[conn.DraftID]
	if !exists || !connections[conn] {
		cm.mu.Unlock()
		return
	}
	delete(connections, conn)
	if len(connections) == 0 {
		delete(cm.draftConnections, conn.DraftID)
	}
	cm.mu.Unlock()

	cm.metrics.connectionClosed(conn.TeamID != uuid.Nil)
	log.Info().
		Str("connection_id", conn.ID).
		Str("user_id", conn.UserID).
		Str("draft_id", conn.DraftID.String()).
		Msg("connection unregistered")

	if conn.TeamID != uuid.Nil {
		cm.updatePresence(seat{conn.DraftID, conn.TeamID}, -1)
	}
}

// updatePresence tells the engine when a seat gains its first connection or
// loses its last one.
func (cm *ConnectionManager) updatePresence(s seat, delta int) {
	cm.presenceMu.Lock()
	defer cm.presenceMu.Unlock()

	before := cm.presence[s]
	after := before + delta
	if after <= 0 {
		delete(cm.presence, s)
	} else {
		cm.presence[s] = after
	}

	if (before == 0) == (after <= 0) {
		return
	}
	online := after > 0

	ctx, cancel := context.WithTimeout(context.Background(), cm.config.CommandTimeout)
	defer cancel()
	if err := cm.engine.SetPresence(ctx, s.draftID, s.teamID, online); err != nil {
		log.Warn().
			Err(err).
			Str("draft_id", s.draftID.String()).
			Str("team_id", s.teamID.String()).
			Bool("online", online).
			Msg("failed to update presence")
	}
}

// ConnectionStats summarizes open connections.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveDrafts     int            `json:"active_drafts"`
	DraftConnections map[string]int `json:"draft_connections"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveDrafts:     len(cm.draftConnections),
		DraftConnections: make(map[string]int, len(cm.draftConnections)),
	}
	for draftID, connections := range cm.draftConnections {
		stats.TotalConnections += len(connections)
		stats.DraftConnections[draftID.String()] = len(connections)
	}
	return stats
}

// close tears the connection down once. Safe from any goroutine.
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	})
}

// send queues a message for the write pump. A client that cannot keep up is
// disconnected; it reconnects and resyncs from a snapshot.
func (c *Connection) send(msg ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to marshal message")
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.Send <- data:
		return true
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("user_id", c.UserID).
			Msg("connection send buffer full, closing connection")
		c.close()
		return false
	}
}

// forward subscribes to the draft, sends a snapshot and then relays every
// event newer than the last sequence the client has seen.
func (c *Connection) forward() {
	defer c.close()

	fresh := false
	for {
		stream, unsubscribe := c.Manager.source.Subscribe(c.ctx, c.DraftID)
		if !c.sync(fresh) {
			unsubscribe()
			return
		}
		resubscribe := c.relay(stream)
		unsubscribe()
		if !resubscribe {
			return
		}
		// The source dropped us; whatever we missed is in the engine now.
		c.Manager.metrics.resync(resyncDropped)
		fresh = true
	}
}

// relay forwards events until the stream closes or the connection ends. It
// reports whether the caller should subscribe again.
func (c *Connection) relay(stream <-chan events.Envelope) bool {
	for {
		select {
		case <-c.ctx.Done():
			return false

		case <-c.resync:
			c.Manager.metrics.resync(resyncRequested)
			if !c.sync(true) {
				return false
			}

		case env, ok := <-stream:
			if !ok {
				return c.ctx.Err() == nil
			}
			if env.Sequence <= c.lastSeq {
				continue
			}
			if env.Sequence > c.lastSeq+1 {
				log.Debug().
					Str("connection_id", c.ID).
					Int64("last_sequence", c.lastSeq).
					Int64("sequence", env.Sequence).
					Msg("sequence gap, resyncing")
				c.Manager.metrics.resync(resyncGap)
				if !c.sync(true) {
					return false
				}
				if env.Sequence <= c.lastSeq {
					continue
				}
			}

			msg := ServerMessage{
				Type:      MessageTypeEvent,
				DraftID:   c.DraftID.String(),
				Sequence:  env.Sequence,
				Timestamp: env.Timestamp,
				Event:     newDraftEvent(env),
			}
			if !c.send(msg) {
				return false
			}
			c.lastSeq = env.Sequence
			c.Manager.metrics.eventForwarded()
		}
	}
}

// sync sends a snapshot and moves lastSeq to its sequence. fresh bypasses the
// cache.
func (c *Connection) sync(fresh bool) bool {
	ctx, cancel := context.WithTimeout(c.ctx, c.Manager.config.CommandTimeout)
	defer cancel()

	var (
		snap *ledger.Snapshot
		err  error
	)
	if fresh {
		snap, err = c.Manager.snapshots.FreshSnapshot(ctx, c.DraftID)
	} else {
		snap, err = c.Manager.snapshots.Snapshot(ctx, c.DraftID)
	}
	if err != nil {
		if c.ctx.Err() != nil {
			return false
		}
		log.Error().Err(err).Str("connection_id", c.ID).Str("draft_id", c.DraftID.String()).Msg("failed to load snapshot")
		c.send(ServerMessage{
			Type:      MessageTypeError,
			DraftID:   c.DraftID.String(),
			Timestamp: time.Now(),
			Error:     err.Error(),
		})
		return false
	}

	if !c.send(ServerMessage{
		Type:      MessageTypeSnapshot,
		DraftID:   c.DraftID.String(),
		Sequence:  snap.Sequence,
		Timestamp: snap.TakenAt,
		Snapshot:  snap,
	}) {
		return false
	}
	c.lastSeq = snap.Sequence
	return true
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer c.close()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

var errNoSeat = fmt.Errorf("connection is not bound to a team: %w", drafterr.ErrTeamNotInDraft)

// handleClientMessage runs a client command and replies with its result.
func (c *Connection) handleClientMessage(message []byte) {
	var cmd ClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		c.reply(ClientCommand{}, errors.New("malformed command"))
		return
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("user_id", c.UserID).
		Str("command", string(cmd.Type)).
		Msg("received client command")

	ctx, cancel := context.WithTimeout(c.ctx, c.Manager.config.CommandTimeout)
	defer cancel()

	var err error
	switch cmd.Type {
	case CommandMakePick:
		if c.TeamID == uuid.Nil {
			err = errNoSeat
			break
		}
		_, err = c.Manager.engine.SubmitPick(ctx, c.DraftID, c.TeamID, cmd.PlayerID)
	case CommandSetAutopick:
		if c.TeamID == uuid.Nil {
			err = errNoSeat
			break
		}
		_, err = c.Manager.engine.SetAutopick(ctx, c.DraftID, c.TeamID, cmd.Enabled)
	case CommandSync:
		select {
		case c.resync <- struct{}{}:
		default:
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd.Type)
	}

	c.reply(cmd, err)
}

func (c *Connection) reply(cmd ClientCommand, err error) {
	result := &CommandResult{
		RequestID: cmd.RequestID,
		Command:   cmd.Type,
		OK:        err == nil,
	}
	if err != nil {
		result.Error = err.Error()
		result.Code = drafterr.Code(err)
	}
	c.Manager.metrics.command(cmd.Type, result.OK)

	c.send(ServerMessage{
		Type:      MessageTypeCommandResult,
		DraftID:   c.DraftID.String(),
		Timestamp: time.Now(),
		Result:    result,
	})
}
