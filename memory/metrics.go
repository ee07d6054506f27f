package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// FacadeMetrics backs the System's request/escalation/token counters with
// prometheus.Counter instead of a bare struct of int64 fields: a
// prometheus.Counter's Add/Inc are safe for concurrent use out of the box,
// where manual "s.metrics.Requests++" is not, and a System may legitimately
// field concurrent calls per spec.md §5.
//
// Counters are deliberately NOT auto-registered to the default registry
// (unlike the teacher's promauto.NewCounterVec pattern in
// internal/metrics/collector.go) because a process may construct many
// Systems — every test in this package does — and promauto would panic on
// the second registration of the same metric name. Collectors exposes the
// raw collectors so a host application can register them into its own
// prometheus.Registry when it wants these scraped.
type FacadeMetrics struct {
	requests            prometheus.Counter
	hotHit              prometheus.Counter
	archiveEscalation   prometheus.Counter
	coldFetch           prometheus.Counter
	thrashDetected      prometheus.Counter
	tokensReturned      prometheus.Counter
	tokensSavedEstimate prometheus.Counter
}

func newFacadeMetrics(namespace string) *FacadeMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      name,
			Help:      help,
		})
	}
	return &FacadeMetrics{
		requests:            counter("requests_total", "Total Retrieve calls served."),
		hotHit:              counter("hot_hit_total", "Retrieve calls whose first used tier was hot."),
		archiveEscalation:   counter("archive_escalation_total", "Retrieve calls that escalated into the archive index."),
		coldFetch:           counter("cold_fetch_total", "Retrieve calls that hydrated cold objects."),
		thrashDetected:      counter("thrash_detected_total", "Rehydrate calls that promoted at least one item."),
		tokensReturned:      counter("tokens_returned_total", "Tokens assembled into returned blocks."),
		tokensSavedEstimate: counter("tokens_saved_estimate_total", "Estimated tokens saved versus a flat top-k baseline."),
	}
}

// Collectors exposes the underlying prometheus collectors for a host
// application's own registry, e.g. reg.MustRegister(m.Collectors()...).
func (m *FacadeMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requests,
		m.hotHit,
		m.archiveEscalation,
		m.coldFetch,
		m.thrashDetected,
		m.tokensReturned,
		m.tokensSavedEstimate,
	}
}

// Snapshot reads the counters' current values into a plain struct, for
// callers (tests, the CLI demo) that want one cheap read instead of a
// scrape.
func (m *FacadeMetrics) Snapshot() Metrics {
	return Metrics{
		Requests:            int64(testutil.ToFloat64(m.requests)),
		HotHit:              int64(testutil.ToFloat64(m.hotHit)),
		ArchiveEscalation:   int64(testutil.ToFloat64(m.archiveEscalation)),
		ColdFetch:           int64(testutil.ToFloat64(m.coldFetch)),
		ThrashDetected:      int64(testutil.ToFloat64(m.thrashDetected)),
		TokensReturned:      int64(testutil.ToFloat64(m.tokensReturned)),
		TokensSavedEstimate: int64(testutil.ToFloat64(m.tokensSavedEstimate)),
	}
}
