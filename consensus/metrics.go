package consensus

import "github.com/prometheus/client_golang/prometheus"

const reasonLabel = "reason"

// Rejection reasons reported by the manager.
const (
	reasonSignature = "signature"
	reasonTimestamp = "timestamp"
	reasonRegistry  = "registry"
	reasonQuorum    = "quorum"
)

type metrics struct {
	accepted      prometheus.Counter
	rejected      *prometheus.CounterVec
	validators    prometheus.Gauge
	roundDuration prometheus.Histogram
}

// newMetrics builds the manager's collectors and registers them
// with registerer. A nil registerer skips registration, which keeps
// the call sites unconditional.
func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dadbs",
			Subsystem: "consensus",
			Name:      "accepted_total",
			Help:      "number of transactions that reached quorum",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dadbs",
			Subsystem: "consensus",
			Name:      "rejected_total",
			Help:      "number of rejected transactions by reason",
		}, []string{reasonLabel}),
		validators: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dadbs",
			Subsystem: "consensus",
			Name:      "validators",
			Help:      "validator set size seen by the last round",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dadbs",
			Subsystem: "consensus",
			Name:      "round_duration_seconds",
			Help:      "wall time spent gathering confirmations",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if registerer == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.accepted,
		m.rejected,
		m.validators,
		m.roundDuration,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) reject(reason string) {
	m.rejected.With(prometheus.Labels{reasonLabel: reason}).Inc()
}
