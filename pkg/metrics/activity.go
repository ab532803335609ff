package metrics

import "github.com/prometheus/client_golang/prometheus"

// ActivityMetrics counts the agent actions that drive daily task progress.
type ActivityMetrics struct {
	callsLogged      *prometheus.CounterVec
	leadsCreated     prometheus.Counter
	leadsTransferred prometheus.Counter
	reportsSubmitted prometheus.Counter
	quotasCompleted  *prometheus.CounterVec
}

// NewActivityMetrics registers the activity counters on the provided registerer.
func NewActivityMetrics(reg prometheus.Registerer) *ActivityMetrics {
	if reg == nil {
		return &ActivityMetrics{}
	}
	m := &ActivityMetrics{
		callsLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_logged_total",
			Help:      "Calls logged by agents, by outcome category.",
		}, []string{"category"}),
		leadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_created_total",
			Help:      "Leads created by CC agents.",
		}),
		leadsTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_transferred_total",
			Help:      "Leads handed from CC agents to CRO agents.",
		}),
		reportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Daily reports submitted.",
		}),
		quotasCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_quotas_completed_total",
			Help:      "Daily quotas that flipped to completed.",
		}, []string{"quota"}),
	}
	reg.MustRegister(m.callsLogged, m.leadsCreated, m.leadsTransferred, m.reportsSubmitted, m.quotasCompleted)
	return m
}

func (m *ActivityMetrics) CallLogged(category string) {
	if m == nil || m.callsLogged == nil {
		return
	}
	if category == "" {
		category = "uncategorized"
	}
	m.callsLogged.WithLabelValues(category).Inc()
}

func (m *ActivityMetrics) LeadCreated() {
	if m == nil || m.leadsCreated == nil {
		return
	}
	m.leadsCreated.Inc()
}

func (m *ActivityMetrics) LeadTransferred() {
	if m == nil || m.leadsTransferred == nil {
		return
	}
	m.leadsTransferred.Inc()
}

func (m *ActivityMetrics) ReportSubmitted() {
	if m == nil || m.reportsSubmitted == nil {
		return
	}
	m.reportsSubmitted.Inc()
}

// QuotaCompleted records the transition of a quota flag to true.
func (m *ActivityMetrics) QuotaCompleted(quota string) {
	if m == nil || m.quotasCompleted == nil {
		return
	}
	m.quotasCompleted.WithLabelValues(labelOrUnknown(quota)).Inc()
}
