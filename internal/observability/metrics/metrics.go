package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead dispatch.
type LeadMetrics struct {
	dispatchTotal    *prometheus.CounterVec
	stageFailures    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	smsTotal         *prometheus.CounterVec
	archiveTotal     *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autolead",
			Subsystem: "leads",
			Name:      "dispatch_total",
			Help:      "Lead submissions by workflow and outcome",
		}, []string{"workflow", "outcome"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autolead",
			Subsystem: "leads",
			Name:      "stage_failures_total",
			Help:      "Dispatch failures by the stage they happened in",
		}, []string{"workflow", "stage"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "autolead",
			Subsystem: "leads",
			Name:      "dispatch_duration_seconds",
			Help:      "End to end dispatch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow"}),
		smsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autolead",
			Subsystem: "leads",
			Name:      "sms_total",
			Help:      "Send-to-mobile SMS attempts",
		}, []string{"status"}),
		archiveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autolead",
			Subsystem: "leads",
			Name:      "archive_total",
			Help:      "Lead document archive attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.dispatchTotal, m.stageFailures, m.dispatchDuration, m.smsTotal, m.archiveTotal)
	return m
}

func (m *LeadMetrics) ObserveDispatch(workflow, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(workflow, outcome).Inc()
	m.dispatchDuration.WithLabelValues(workflow).Observe(seconds)
}

func (m *LeadMetrics) ObserveStageFailure(workflow, stage string) {
	if m == nil {
		return
	}
	m.stageFailures.WithLabelValues(workflow, stage).Inc()
}

func (m *LeadMetrics) ObserveSMS(status string) {
	if m == nil {
		return
	}
	m.smsTotal.WithLabelValues(status).Inc()
}

func (m *LeadMetrics) ObserveArchive(status string) {
	if m == nil {
		return
	}
	m.archiveTotal.WithLabelValues(status).Inc()
}
