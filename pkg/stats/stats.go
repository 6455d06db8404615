package stats

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
	TERABYTE

	namespace = "zmigrate"
)

// Run summarizes a completed migration.
type Run struct {
	Accounts       int
	Transactions   int
	Warnings       int
	Positions      int
	PositionSource string
	// Passes counts the transactions attributed by each pass, keyed by
	// pass name.
	Passes  map[string]int
	Elapsed time.Duration
}

// MigrationMetrics holds the prometheus collectors of a migration run in
// their own registry.
type MigrationMetrics struct {
	registry *prometheus.Registry

	accounts     prometheus.Gauge
	transactions prometheus.Gauge
	warnings     prometheus.Counter
	positions    *prometheus.GaugeVec
	attributed   *prometheus.CounterVec
	duration     prometheus.Gauge
}

// NewMigrationMetrics ...
func NewMigrationMetrics() *MigrationMetrics {
	m := &MigrationMetrics{
		registry: prometheus.NewRegistry(),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts",
			Help:      "Number of accounts in the export.",
		}),
		transactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transactions",
			Help:      "Number of transactions in the export.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Warnings reported while migrating.",
		}),
		positions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "note_positions",
			Help:      "Note commitments that got a position, by source.",
		}, []string{"source"}),
		attributed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attributed_transactions_total",
			Help:      "Transactions attributed to accounts, by deciding pass.",
		}, []string{"pass"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Duration of the migration.",
		}),
	}

	m.registry.MustRegister(
		m.accounts, m.transactions, m.warnings,
		m.positions, m.attributed, m.duration,
	)
	return m
}

// Observe records the given run.
func (m *MigrationMetrics) Observe(run Run) {
	m.accounts.Set(float64(run.Accounts))
	m.transactions.Set(float64(run.Transactions))
	m.warnings.Add(float64(run.Warnings))
	m.positions.WithLabelValues(run.PositionSource).Set(float64(run.Positions))
	for pass, count := range run.Passes {
		m.attributed.WithLabelValues(pass).Add(float64(count))
	}
	m.duration.Set(run.Elapsed.Seconds())
}

// Registry returns the registry the collectors are registered with.
func (m *MigrationMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile dumps the metrics in the prometheus text format, to be
// picked up by the node exporter textfile collector.
func (m *MigrationMetrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Debugf(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}
