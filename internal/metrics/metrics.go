// Package metrics defines the Prometheus collectors for the coordinator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionsCurrent tracks currently open WebSocket connections.
	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_current",
			Help: "Currently open WebSocket connections",
		},
	)

	// RoomsCurrent tracks rooms with at least one member.
	RoomsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_current",
			Help: "Rooms with at least one member",
		},
	)

	// RoomJoinsTotal counts joins by role.
	RoomJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_joins_total",
			Help: "Room joins by role (viewer/host)",
		},
		[]string{"role"},
	)

	// BroadcastsTotal counts room broadcasts by event type.
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_broadcasts_total",
			Help: "Room broadcasts by event type",
		},
		[]string{"event"},
	)

	// PublishRequestsTotal counts publish request outcomes.
	PublishRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_requests_total",
			Help: "Publish request outcomes (requested/approved/denied/expired/revoked/cleared)",
		},
		[]string{"outcome"},
	)

	// RelayMessagesTotal counts relayed signaling messages by kind.
	RelayMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Relayed signaling messages by kind",
		},
		[]string{"kind"},
	)

	// LikesDroppedTotal counts like events dropped by the rate limiter.
	LikesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "likes_dropped_total",
			Help: "Like events dropped by the per-connection rate limiter",
		},
	)

	// AuthorizationChecksTotal counts arbiter decisions.
	AuthorizationChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_checks_total",
			Help: "Permission arbiter decisions (allowed/denied)",
		},
		[]string{"result"},
	)

	// SlowClientsDisconnected counts clients dropped for full send buffers.
	SlowClientsDisconnected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_slow_clients_disconnected_total",
			Help: "Clients disconnected because their send buffer stayed full",
		},
	)
)
