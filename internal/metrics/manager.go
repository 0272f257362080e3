package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hydration sources recorded in HydrationsTotal.
const (
	SourceSeed      = "seed"
	SourceSnapshot  = "snapshot"
	SourceLegacy    = "legacy"
	SourceCorrupted = "corrupted"
)

type Manager struct {
	// counters
	CounterMutations       *prometheus.CounterVec
	CounterPersistFailures prometheus.Counter
	CounterPersistWrites   prometheus.Counter
	CounterHydrations      *prometheus.CounterVec
	CounterRequests        *prometheus.CounterVec

	// gauges
	GaugeClients prometheus.Gauge
}

func NewTestManager() *Manager {
	return NewManager("palestra", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("palestra", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_store_mutations_total",
			Help:      "Plan store mutations that changed state, by operation",
		}, []string{"op"}),
		CounterPersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_store_persist_failures_total",
			Help:      "Failed snapshot writes or removals",
		}),
		CounterPersistWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_store_persist_writes_total",
			Help:      "Snapshot writes that reached storage",
		}),
		CounterHydrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_store_hydrations_total",
			Help:      "Store hydrations by data source",
		}, []string{"source"}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		GaugeClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_store_clients",
			Help:      "Clients currently held by the plan store",
		}),
	}
}
