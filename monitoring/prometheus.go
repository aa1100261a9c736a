package monitoring

import (
	"net/http"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type TransferRejectedReason string

var (
	TransferInsufficientBalance TransferRejectedReason = "insufficient_balance"
	TransferInvalidSignature    TransferRejectedReason = "invalid_signature"
	TransferInvalidNonce        TransferRejectedReason = "invalid_nonce"
	TransferStorageFailure      TransferRejectedReason = "storage_failure"
	TransferRejectedUnknown     TransferRejectedReason = "other"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	appliedTransfers  prometheus.Counter
	rejectedTransfers *prometheus.CounterVec
	totalSupply       prometheus.Gauge
	holderCount       prometheus.Gauge
	eventSubscribers  prometheus.Gauge
	panicCount        prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		appliedTransfers: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "token_ledger_applied_transfer_count",
				Help: "The total number of transfers applied to the ledger",
			},
		),
		rejectedTransfers: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_ledger_rejected_transfer_count",
				Help: "The total number of rejected transfers",
			},
			[]string{"reason"},
		),
		totalSupply: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_ledger_total_supply",
				Help: "Total supply held by the ledger (approximate above 2^53)",
			},
		),
		holderCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_ledger_holder_count",
				Help: "Number of holders with a non-zero balance",
			},
		),
		eventSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_event_subscriber_count",
				Help: "Number of registered transfer event subscribers",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "token_node_panic_count",
				Help: "Number of recovered panics",
			},
		),
	}
}

var (
	nodeMetrics *nodePromMetrics
	initOnce    sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to call more
// than once; recorders call it implicitly.
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newNodePromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

func metrics() *nodePromMetrics {
	InitMetrics()
	return nodeMetrics
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	InitMetrics()
	mux.Handle("/metrics", promhttp.Handler())
}

func IncreaseAppliedTransferCount() {
	metrics().appliedTransfers.Inc()
}

func RecordRejectedTransfer(reason TransferRejectedReason) {
	metrics().rejectedTransfers.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func SetTotalSupply(supply *uint256.Int) {
	metrics().totalSupply.Set(supply.Float64())
}

func SetHolderCount(holders int) {
	metrics().holderCount.Set(float64(holders))
}

func SetSubscriberCount(subscribers int) {
	metrics().eventSubscribers.Set(float64(subscribers))
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}
