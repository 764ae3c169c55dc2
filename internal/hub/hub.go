// Package hub owns the WebSocket connections and their room subscriptions.
//
// A single actor goroutine owns all maps; public methods communicate with it
// through a command channel, so no mutation can interleave with another.
package hub

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pscheid92/streampulse/internal/metrics"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	connectionID uuid.UUID
	conn         *websocket.Conn
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	connectionID uuid.UUID
}

func (cmdUnregister) hubCmd() {}

type cmdSubscribe struct {
	connectionID uuid.UUID
	streamID     string
	errCh        chan error
}

func (cmdSubscribe) hubCmd() {}

type cmdUnsubscribe struct {
	connectionID uuid.UUID
	streamID     string
}

func (cmdUnsubscribe) hubCmd() {}

type cmdSend struct {
	connectionID uuid.UUID
	data         []byte
}

func (cmdSend) hubCmd() {}

type cmdBroadcast struct {
	streamID string
	data     []byte
	except   uuid.UUID // uuid.Nil means no exclusion
}

func (cmdBroadcast) hubCmd() {}

type cmdRoomSize struct {
	streamID string
	replyCh  chan int
}

func (cmdRoomSize) hubCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) hubCmd() {}

// --- Hub ---

// Hub relays outbound events to connections and room subscriber sets. It
// implements domain.Emitter.
type Hub struct {
	cmdCh        chan hubCmd
	conns        map[uuid.UUID]*clientWriter
	rooms        map[string]map[uuid.UUID]struct{}
	connRooms    map[uuid.UUID]map[string]struct{}
	maxPerStream int
}

func New(maxClientsPerStream int) *Hub {
	h := &Hub{
		cmdCh:        make(chan hubCmd, 256),
		conns:        make(map[uuid.UUID]*clientWriter),
		rooms:        make(map[string]map[uuid.UUID]struct{}),
		connRooms:    make(map[uuid.UUID]map[string]struct{}),
		maxPerStream: maxClientsPerStream,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.connectionID)
		case cmdSubscribe:
			c.errCh <- h.handleSubscribe(c.connectionID, c.streamID)
		case cmdUnsubscribe:
			h.handleUnsubscribe(c.connectionID, c.streamID)
		case cmdSend:
			h.handleSend(c.connectionID, c.data)
		case cmdBroadcast:
			h.handleBroadcast(c)
		case cmdRoomSize:
			c.replyCh <- len(h.rooms[c.streamID])
		case cmdStop:
			h.handleStop()
			close(c.doneCh)
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if _, exists := h.conns[c.connectionID]; exists {
		return
	}
	h.conns[c.connectionID] = newClientWriter(c.conn)
	metrics.ConnectionsCurrent.Inc()
}

func (h *Hub) handleUnregister(connectionID uuid.UUID) {
	cw, exists := h.conns[connectionID]
	if !exists {
		return
	}
	cw.stop()
	delete(h.conns, connectionID)
	metrics.ConnectionsCurrent.Dec()

	for streamID := range h.connRooms[connectionID] {
		h.removeFromRoom(connectionID, streamID)
	}
	delete(h.connRooms, connectionID)
}

func (h *Hub) handleSubscribe(connectionID uuid.UUID, streamID string) error {
	if _, exists := h.conns[connectionID]; !exists {
		return fmt.Errorf("connection %s is not registered", connectionID)
	}

	subscribers, exists := h.rooms[streamID]
	if !exists {
		subscribers = make(map[uuid.UUID]struct{})
		h.rooms[streamID] = subscribers
		metrics.RoomsCurrent.Inc()
	}

	if _, already := subscribers[connectionID]; !already && len(subscribers) >= h.maxPerStream {
		return fmt.Errorf("max clients per stream (%d) reached", h.maxPerStream)
	}
	subscribers[connectionID] = struct{}{}

	streams, exists := h.connRooms[connectionID]
	if !exists {
		streams = make(map[string]struct{})
		h.connRooms[connectionID] = streams
	}
	streams[streamID] = struct{}{}
	return nil
}

func (h *Hub) handleUnsubscribe(connectionID uuid.UUID, streamID string) {
	h.removeFromRoom(connectionID, streamID)
	if streams, exists := h.connRooms[connectionID]; exists {
		delete(streams, streamID)
	}
}

func (h *Hub) removeFromRoom(connectionID uuid.UUID, streamID string) {
	subscribers, exists := h.rooms[streamID]
	if !exists {
		return
	}
	delete(subscribers, connectionID)
	if len(subscribers) == 0 {
		delete(h.rooms, streamID)
		metrics.RoomsCurrent.Dec()
	}
}

func (h *Hub) handleSend(connectionID uuid.UUID, data []byte) {
	cw, exists := h.conns[connectionID]
	if !exists {
		return
	}
	select {
	case cw.sendCh <- data:
	default:
		// Closing the conn makes the owning read pump run its cleanup path.
		log.Printf("Disconnecting slow client %s", connectionID)
		metrics.SlowClientsDisconnected.Inc()
		h.handleUnregister(connectionID)
	}
}

func (h *Hub) handleBroadcast(c cmdBroadcast) {
	subscribers, exists := h.rooms[c.streamID]
	if !exists {
		return
	}

	var slow []uuid.UUID
	for connectionID := range subscribers {
		if c.except != uuid.Nil && connectionID == c.except {
			continue
		}
		cw, ok := h.conns[connectionID]
		if !ok {
			continue
		}
		select {
		case cw.sendCh <- c.data:
		default:
			slow = append(slow, connectionID)
		}
	}

	for _, connectionID := range slow {
		log.Printf("Disconnecting slow client %s in stream %s", connectionID, c.streamID)
		metrics.SlowClientsDisconnected.Inc()
		h.handleUnregister(connectionID)
	}
}

func (h *Hub) handleStop() {
	for connectionID, cw := range h.conns {
		cw.stop()
		delete(h.conns, connectionID)
	}
	h.rooms = make(map[string]map[uuid.UUID]struct{})
	h.connRooms = make(map[uuid.UUID]map[string]struct{})
}

// --- Public API ---

// Register attaches a connection to the hub and starts its writer.
func (h *Hub) Register(connectionID uuid.UUID, conn *websocket.Conn) {
	h.cmdCh <- cmdRegister{connectionID: connectionID, conn: conn}
}

// Unregister stops the connection's writer and drops all its subscriptions.
func (h *Hub) Unregister(connectionID uuid.UUID) {
	h.cmdCh <- cmdUnregister{connectionID: connectionID}
}

// Subscribe adds a connection to a room's subscriber set.
func (h *Hub) Subscribe(connectionID uuid.UUID, streamID string) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdSubscribe{connectionID: connectionID, streamID: streamID, errCh: errCh}
	return <-errCh
}

// Unsubscribe removes a connection from a room's subscriber set.
func (h *Hub) Unsubscribe(connectionID uuid.UUID, streamID string) {
	h.cmdCh <- cmdUnsubscribe{connectionID: connectionID, streamID: streamID}
}

// RoomSize returns the number of subscribers for a stream's channel.
func (h *Hub) RoomSize(streamID string) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdRoomSize{streamID: streamID, replyCh: replyCh}
	return <-replyCh
}

// ToConnection implements domain.Emitter.
func (h *Hub) ToConnection(connectionID uuid.UUID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}
	h.cmdCh <- cmdSend{connectionID: connectionID, data: data}
}

// ToRoom implements domain.Emitter.
func (h *Hub) ToRoom(streamID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}
	h.cmdCh <- cmdBroadcast{streamID: streamID, data: data}
}

// ToRoomExcept implements domain.Emitter.
func (h *Hub) ToRoomExcept(streamID string, except uuid.UUID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}
	h.cmdCh <- cmdBroadcast{streamID: streamID, data: data, except: except}
}

// Stop shuts down the hub, closing all client connections.
func (h *Hub) Stop() {
	doneCh := make(chan struct{})
	h.cmdCh <- cmdStop{doneCh: doneCh}
	<-doneCh
}
