package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Validations *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Validations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "paymentref_validations_total",
			Help: "Total number of payment references validated, by scheme and outcome",
		}, []string{"scheme", "kind"}),
	}
}

func (m *Metrics) ObserveValidation(scheme, kind string) {
	m.Validations.WithLabelValues(scheme, kind).Inc()
}
