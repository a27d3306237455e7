package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ModerationMetrics tracks uploads and admin decisions.
type ModerationMetrics struct {
	uploads       *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	removals      prometheus.Counter
	backlog       *prometheus.GaugeVec
	recentUploads prometheus.Gauge
}

func NewModerationMetrics(reg prometheus.Registerer) *ModerationMetrics {
	if reg == nil {
		return &ModerationMetrics{}
	}
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moments_media_uploads_total",
		Help: "Accepted media uploads by media type.",
	}, []string{"type"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moments_media_status_changes_total",
		Help: "Admin status decisions by target status.",
	}, []string{"status"})
	removals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moments_media_removals_total",
		Help: "Media records deleted by an admin.",
	})
	backlog := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "moments_media_backlog",
		Help: "Media records per moderation status at the last backlog sweep.",
	}, []string{"status"})
	recent := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "moments_media_recent_uploads",
		Help: "Uploads received in the 24 hours before the last backlog sweep.",
	})
	reg.MustRegister(uploads, statusChanges, removals, backlog, recent)
	return &ModerationMetrics{
		uploads:       uploads,
		statusChanges: statusChanges,
		removals:      removals,
		backlog:       backlog,
		recentUploads: recent,
	}
}

func (m *ModerationMetrics) IncUpload(mediaType string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(mediaType)).Inc()
}

func (m *ModerationMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *ModerationMetrics) IncRemoval() {
	if m == nil || m.removals == nil {
		return
	}
	m.removals.Inc()
}

// SetBacklog records the number of records currently in status.
func (m *ModerationMetrics) SetBacklog(status string, count int64) {
	if m == nil || m.backlog == nil {
		return
	}
	m.backlog.WithLabelValues(normalizeLabel(status)).Set(float64(count))
}

func (m *ModerationMetrics) SetRecentUploads(count int64) {
	if m == nil || m.recentUploads == nil {
		return
	}
	m.recentUploads.Set(float64(count))
}
