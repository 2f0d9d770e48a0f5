// Package metrics instruments editor operations with Prometheus collectors.
//
// A nil *Recorder is valid and records nothing, so components take one
// optionally.
package metrics

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

// Result labels.
const (
	ResultOK      = "ok"
	ResultNoop    = "noop"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Recorder holds the editor collectors.
type Recorder struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	validation   *prometheus.CounterVec
	historyDepth *prometheus.GaugeVec
	version      *prometheus.GaugeVec
	probes       *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "twick_editor_operations_total",
			Help: "Editor operations by name and result",
		}, []string{"operation", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twick_editor_operation_duration_seconds",
			Help:    "Duration of editor operations",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25},
		}, []string{"operation"}),
		validation: f.NewCounterVec(prometheus.CounterOpts{
			Name: "twick_validation_failures_total",
			Help: "Rejected mutations by error code",
		}, []string{"code"}),
		historyDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twick_history_depth",
			Help: "Entries on the undo and redo stacks",
		}, []string{"context", "stack"}),
		version: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twick_document_version",
			Help: "Current document version per context",
		}, []string{"context"}),
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "twick_probe_requests_total",
			Help: "Media probe requests by result",
		}, []string{"result"}),
	}
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns a recorder registered with the default registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// Observe records one operation that started at start.
func (r *Recorder) Observe(op, result string, start time.Time) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, result).Inc()
	r.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Result classifies an operation outcome for Observe.
func Result(changed bool, err error) string {
	var ve *timeline.ValidationError
	switch {
	case err == nil && changed:
		return ResultOK
	case err == nil:
		return ResultNoop
	case errors.As(err, &ve), timeline.CodeOf(err) != timeline.CodeUnknown:
		return ResultInvalid
	default:
		return ResultError
	}
}

// ValidationFailed counts a rejected mutation.
func (r *Recorder) ValidationFailed(err error) {
	if r == nil || err == nil {
		return
	}
	r.validation.WithLabelValues(timeline.CodeOf(err).String()).Inc()
}

// SetHistory records the stack depths of a context.
func (r *Recorder) SetHistory(contextID string, undo, redo int) {
	if r == nil {
		return
	}
	r.historyDepth.WithLabelValues(contextID, "undo").Set(float64(undo))
	r.historyDepth.WithLabelValues(contextID, "redo").Set(float64(redo))
}

// SetVersion records the document version of a context.
func (r *Recorder) SetVersion(contextID string, version uint64) {
	if r == nil {
		return
	}
	r.version.WithLabelValues(contextID).Set(float64(version))
}

// Probe counts a media probe.
func (r *Recorder) Probe(ok bool) {
	if r == nil {
		return
	}
	r.probes.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

// Forget drops the per-context series of a closed context.
func (r *Recorder) Forget(contextID string) {
	if r == nil {
		return
	}
	r.historyDepth.DeleteLabelValues(contextID, "undo")
	r.historyDepth.DeleteLabelValues(contextID, "redo")
	r.version.DeleteLabelValues(contextID)
}
