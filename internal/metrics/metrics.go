// Package metrics holds the Prometheus collectors shared by the ledger and the
// realtime layer. Collectors register on the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts ledger transitions.
	// Labels: action (created, updated, removed)
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvehub",
		Subsystem: "ledger",
		Name:      "votes_total",
		Help:      "Vote transitions applied to the ledger",
	}, []string{"action"})

	// VoteRejections counts requests refused before any write.
	// Labels: reason (invalid, not_found, forbidden, error)
	VoteRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvehub",
		Subsystem: "ledger",
		Name:      "vote_rejections_total",
		Help:      "Vote requests rejected",
	}, []string{"reason"})

	// BadgesAwarded counts badge grants by badge name.
	BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvehub",
		Subsystem: "achievements",
		Name:      "badges_awarded_total",
		Help:      "Badges granted to users",
	}, []string{"badge"})

	// EventsDelivered counts live deliveries per transport.
	// Labels: transport (socket, stream), event (wire name)
	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvehub",
		Subsystem: "notify",
		Name:      "events_delivered_total",
		Help:      "Events handed to live connections",
	}, []string{"transport", "event"})

	// EventsDropped counts events a slow connection could not accept.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvehub",
		Subsystem: "notify",
		Name:      "events_dropped_total",
		Help:      "Events dropped because a connection buffer was full",
	}, []string{"transport"})

	// NotificationsRecorded counts durable notification writes.
	// Labels: status (ok, error)
	NotificationsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solvehub",
		Subsystem: "notify",
		Name:      "records_total",
		Help:      "Durable notification records written",
	}, []string{"status"})

	// Connections tracks open live connections per transport.
	Connections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "solvehub",
		Subsystem: "realtime",
		Name:      "connections",
		Help:      "Open live connections",
	}, []string{"transport"})

	// OnlineUsers mirrors the presence registry size.
	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "solvehub",
		Subsystem: "presence",
		Name:      "online_users",
		Help:      "Users with a registered socket",
	})

	// HTTPDuration measures handler latency.
	// Labels: method, route, code
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solvehub",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)
