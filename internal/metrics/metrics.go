package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"serptrack/internal/db"
)

// Check outcome label values.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serptrack_checks_total",
			Help: "Total ranking checks by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	schedulerRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serptrack_scheduler_runs_total",
			Help: "Total scheduler runs by trigger",
		},
		[]string{"trigger"},
	)

	notificationsDesc = prometheus.NewDesc(
		"serptrack_notifications_total",
		"Total notifications stored, by type",
		[]string{"type"},
		nil,
	)
)

// NotificationCollector is a custom Prometheus collector that reads
// notification totals from the database on each scrape.
type NotificationCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *NotificationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- notificationsDesc
}

// Collect queries per-type notification counts and emits them as counters.
func (c *NotificationCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.db.CountNotificationsByType(context.Background())
	if err != nil {
		slog.Error("failed to collect notification metrics", "error", err)
		return
	}
	for typ, count := range counts {
		ch <- prometheus.MustNewConstMetric(
			notificationsDesc,
			prometheus.CounterValue,
			float64(count),
			typ,
		)
	}
}

var initOnce sync.Once

// Init registers all collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(checksTotal, schedulerRunsTotal)
		prometheus.MustRegister(&NotificationCollector{db: database})
	})
}

// RecordCheck counts one ranking check.
func RecordCheck(provider, outcome string) {
	checksTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordSchedulerRun counts one scheduler pass; trigger is "scheduled" or
// "manual".
func RecordSchedulerRun(trigger string) {
	schedulerRunsTotal.WithLabelValues(trigger).Inc()
}
