// Package metrics defines the prometheus instruments for the discovery and
// transfer engine. All collectors are registered through promauto on the
// default registry and served via promhttp from main.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PeersActive tracks the current size of the peer table.
	PeersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lanclip_peers_active",
			Help: "Current number of known peers",
		},
	)

	// MessagesTotal counts protocol messages by kind and direction.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanclip_messages_total",
			Help: "Total protocol messages processed",
		},
		[]string{"kind", "direction"}, // direction: "sent", "received"
	)

	// DecodeErrorsTotal counts malformed inbound messages that were dropped.
	DecodeErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lanclip_decode_errors_total",
			Help: "Total inbound messages dropped as malformed",
		},
	)

	// TransferBytesTotal counts clipboard payload bytes moved over TCP.
	TransferBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanclip_transfer_bytes_total",
			Help: "Total clipboard payload bytes transferred",
		},
		[]string{"direction"}, // "sent", "received"
	)

	// RebindsTotal counts network-epoch rebuilds by trigger.
	RebindsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanclip_rebinds_total",
			Help: "Total socket rebinds",
		},
		[]string{"trigger"}, // "network_change", "bind_failure"
	)

	// CommandsDroppedTotal counts commands lost to a saturated queue.
	CommandsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lanclip_commands_dropped_total",
			Help: "Total commands dropped after enqueue retries were exhausted",
		},
	)
)
