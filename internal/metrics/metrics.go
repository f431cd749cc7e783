// Package metrics holds the Prometheus collectors of the ledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// OperationsTotal counts ledger mutations by operation and status
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erc20_ledger_operations_total",
			Help: "Total number of ledger mutations",
		},
		[]string{"operation", "status"},
	)

	// OperationDuration tracks how long a mutation takes, journal write included
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erc20_ledger_operation_duration_seconds",
			Help:    "Ledger mutation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RejectionsTotal counts mutations refused by the ledger by reason
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erc20_ledger_rejections_total",
			Help: "Total number of mutations rejected by the ledger",
		},
		[]string{"operation", "reason"},
	)

	// TransferAmount tracks moved amounts in whole tokens
	TransferAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erc20_ledger_transfer_amount",
			Help:    "Amount of tokens moved per transfer, in whole tokens",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"operation"},
	)

	// EventsEmitted counts Transfer and Approval events
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erc20_ledger_events_total",
			Help: "Total number of events emitted by the ledger",
		},
		[]string{"event"},
	)

	// JournalErrorsTotal counts failed journal writes and reads
	JournalErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erc20_ledger_journal_errors_total",
			Help: "Total number of journal errors",
		},
		[]string{"op"},
	)

	// LatestBlock tracks the last synthetic block written to the journal
	LatestBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "erc20_ledger_latest_block",
			Help: "Last synthetic block number allocated by the journal",
		},
	)

	// Holders tracks the number of accounts with a recorded balance
	Holders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "erc20_ledger_holders",
			Help: "Number of accounts with a recorded balance",
		},
	)

	// RPCRequestsTotal counts JSON-RPC submissions by contract method and status
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erc20_ethrpc_transactions_total",
			Help: "Total number of raw transactions received over JSON-RPC",
		},
		[]string{"method", "status"},
	)
)
