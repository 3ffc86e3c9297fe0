package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// WarrantyMetrics counts lifecycle transitions and public lookups.
type WarrantyMetrics struct {
	transitions *prometheus.CounterVec
	lookups     *prometheus.CounterVec
}

func NewWarrantyMetrics(reg prometheus.Registerer) *WarrantyMetrics {
	if reg == nil {
		return &WarrantyMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "warranty_transitions_total",
		Help:      "Warranty status changes by source, target and override flag.",
	}, []string{"from", "to", "override"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "warranty_lookups_total",
		Help:      "Public warranty code lookups by outcome.",
	}, []string{"result"})
	reg.MustRegister(transitions, lookups)
	return &WarrantyMetrics{transitions: transitions, lookups: lookups}
}

func (w *WarrantyMetrics) IncTransition(from, to string, override bool) {
	w.AddTransitions(from, to, override, 1)
}

// AddTransitions records n identical transitions, as done by bulk expiry.
func (w *WarrantyMetrics) AddTransitions(from, to string, override bool, n int64) {
	if w == nil || w.transitions == nil || n <= 0 {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), strconv.FormatBool(override)).Add(float64(n))
}

// IncLookup records a lookup outcome ("found" or "not_found").
func (w *WarrantyMetrics) IncLookup(found bool) {
	if w == nil || w.lookups == nil {
		return
	}
	result := "not_found"
	if found {
		result = "found"
	}
	w.lookups.WithLabelValues(result).Inc()
}
