package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"luxeleads/internal/analytics"
)

var (
	leadsByStatusDesc = prometheus.NewDesc(
		"luxeleads_leads",
		"Current number of leads by pipeline status",
		[]string{"status"},
		nil,
	)
	leadsByInterestDesc = prometheus.NewDesc(
		"luxeleads_leads_by_interest",
		"Current number of leads by interest",
		[]string{"interest"},
		nil,
	)
)

var (
	syncCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luxeleads_sync_cycles_total",
		Help: "Analytics sync cycles by outcome",
	}, []string{"outcome"})

	syncCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "luxeleads_sync_cycle_duration_seconds",
		Help:    "Time spent fetching and aggregating lead analytics",
		Buckets: prometheus.DefBuckets,
	})

	syncCoalesced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luxeleads_sync_notifications_coalesced_total",
		Help: "Change notifications folded into an already scheduled follow-up cycle",
	})

	activeStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "luxeleads_analytics_streams",
		Help: "Open analytics event streams",
	})

	captures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luxeleads_lead_captures_total",
		Help: "Lead capture submissions by outcome",
	}, []string{"outcome"})
)

// Capture outcomes.
const (
	CaptureAccepted = "accepted"
	CaptureInvalid  = "invalid"
	CaptureFailed   = "failed"
)

// StatsSource reports current lead counts. *db.DB answers with SQL and
// *leads.Service with generic store reads.
type StatsSource interface {
	LeadCountsByStatus(ctx context.Context) (map[string]int64, error)
	LeadCountsByInterest(ctx context.Context) (map[string]int64, error)
}

// LeadCollector is a custom Prometheus collector that reads lead counts from the
// store on each scrape.
type LeadCollector struct {
	source  StatsSource
	timeout time.Duration
}

// NewLeadCollector creates a collector over source.
func NewLeadCollector(source StatsSource) *LeadCollector {
	return &LeadCollector{source: source, timeout: 5 * time.Second}
}

// Describe sends the metric descriptors to the channel.
func (c *LeadCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- leadsByStatusDesc
	ch <- leadsByInterestDesc
}

// Collect queries the store and emits the counts as gauges.
func (c *LeadCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	byStatus, err := c.source.LeadCountsByStatus(ctx)
	if err != nil {
		slog.Error("failed to collect lead status metrics", "error", err)
	} else {
		for status, n := range byStatus {
			ch <- prometheus.MustNewConstMetric(leadsByStatusDesc, prometheus.GaugeValue, float64(n), status)
		}
	}

	byInterest, err := c.source.LeadCountsByInterest(ctx)
	if err != nil {
		slog.Error("failed to collect lead interest metrics", "error", err)
		return
	}
	for interest, n := range byInterest {
		ch <- prometheus.MustNewConstMetric(leadsByInterestDesc, prometheus.GaugeValue, float64(n), interest)
	}
}

var initOnce sync.Once

// Init registers the lead collector and the process metrics with the default
// registry. Must be called once at startup.
func Init(source StatsSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			NewLeadCollector(source),
			syncCycles,
			syncCycleDuration,
			syncCoalesced,
			activeStreams,
			captures,
		)
	})
}

// SyncObserver records analytics controller events. It implements
// analytics.Observer.
type SyncObserver struct{}

var _ analytics.Observer = SyncObserver{}

// CycleCompleted counts a finished cycle and its duration.
func (SyncObserver) CycleCompleted(outcome string, elapsed time.Duration) {
	syncCycles.WithLabelValues(outcome).Inc()
	syncCycleDuration.Observe(elapsed.Seconds())
}

// NotificationCoalesced counts a notification that did not add a cycle.
func (SyncObserver) NotificationCoalesced() {
	syncCoalesced.Inc()
}

// StreamOpened increments the open stream gauge.
func StreamOpened() { activeStreams.Inc() }

// StreamClosed decrements the open stream gauge.
func StreamClosed() { activeStreams.Dec() }

// RecordCapture counts a lead capture submission.
func RecordCapture(outcome string) {
	captures.WithLabelValues(outcome).Inc()
}
