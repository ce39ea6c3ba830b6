// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the settings collectors on their own registry, so a command
// run can dump exactly what it recorded.
type Metrics struct {
	Registry *prometheus.Registry

	SettingsLoads        *prometheus.CounterVec
	SettingsLoadDuration *prometheus.HistogramVec
	MediaPlugins         *prometheus.GaugeVec

	CheckStatus   *prometheus.GaugeVec
	CheckDuration *prometheus.HistogramVec
	CheckAttempts *prometheus.CounterVec
}

// Check statuses exported as the status label of argus_settings_check_status.
var CheckStatuses = []string{"ok", "warn", "fail", "skipped"}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		SettingsLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argus_settings_loads_total",
				Help: "Total number of settings module loads by result",
			},
			[]string{"module", "result"},
		),

		SettingsLoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "argus_settings_load_duration_seconds",
				Help:    "Duration of settings module evaluation in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"module"},
		),

		MediaPlugins: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argus_settings_media_plugins",
				Help: "Number of media plugins enabled by the loaded module",
			},
			[]string{"module"},
		),

		CheckStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argus_settings_check_status",
				Help: "1 for the current status of each readiness check, 0 otherwise",
			},
			[]string{"check", "status"},
		),

		CheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "argus_settings_check_duration_seconds",
				Help: "Duration of readiness checks in seconds",
			},
			[]string{"check"},
		),

		CheckAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argus_settings_check_attempts_total",
				Help: "Total number of readiness check attempts",
			},
			[]string{"check"},
		),
	}
}

func (m *Metrics) RecordLoad(module, result string, duration time.Duration) {
	m.SettingsLoads.WithLabelValues(module, result).Inc()
	m.SettingsLoadDuration.WithLabelValues(module).Observe(duration.Seconds())
}

func (m *Metrics) RecordMediaPlugins(module string, count int) {
	m.MediaPlugins.WithLabelValues(module).Set(float64(count))
}

// RecordCheck sets the status gauge for check so that exactly one status
// label reads 1.
func (m *Metrics) RecordCheck(check, status string, duration time.Duration, attempts int) {
	for _, s := range CheckStatuses {
		value := 0.0
		if s == status {
			value = 1
		}
		m.CheckStatus.WithLabelValues(check, s).Set(value)
	}
	m.CheckDuration.WithLabelValues(check).Observe(duration.Seconds())
	m.CheckAttempts.WithLabelValues(check).Add(float64(attempts))
}

// WriteTextfile writes every collected metric to path in the text exposition
// format, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
