package prom

import (
	"github.com/IvanBrykalov/stablecache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	lookups  *prometheus.CounterVec
	inserts  prometheus.Counter
	discards prometheus.Counter
	errors   prometheus.Counter
	clears   prometheus.Counter
	released prometheus.Counter
	entries  prometheus.Gauge

	hits   prometheus.Counter
	misses prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "lookups_total",
				Help:        "Cache lookups by result",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		inserts:  counter("inserts_total", "Values stored after a miss"),
		discards: counter("discards_total", "Produced values that lost an insert race"),
		errors:   counter("provider_errors_total", "Provider calls that returned an error"),
		clears:   counter("clears_total", "Whole-table clears (including close)"),
		released: counter("released_total", "Stored values released by clears"),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	a.hits = a.lookups.WithLabelValues("hit")
	a.misses = a.lookups.WithLabelValues("miss")
	reg.MustRegister(a.lookups, a.inserts, a.discards, a.errors, a.clears, a.released, a.entries)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

func (a *Adapter) Insert()        { a.inserts.Inc() }
func (a *Adapter) Discard()       { a.discards.Inc() }
func (a *Adapter) ProviderError() { a.errors.Inc() }

// Clear counts one clear and the values it released.
func (a *Adapter) Clear(entries int) {
	a.clears.Inc()
	a.released.Add(float64(entries))
}

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) { a.entries.Set(float64(entries)) }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
