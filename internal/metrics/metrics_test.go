package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.Observe("add_element", ResultOK, time.Now())
	r.Observe("add_element", ResultOK, time.Now())
	r.Observe("add_element", ResultInvalid, time.Now())
	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("add_element", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("add_element", ResultInvalid)))

	r.ValidationFailed(&timeline.ValidationError{Code: timeline.CodeInvalidTiming, Errors: []string{"x"}})
	assert.Equal(t, 1.0, testutil.ToFloat64(r.validation.WithLabelValues(timeline.CodeInvalidTiming.String())))

	r.SetHistory("main", 3, 1)
	r.SetVersion("main", 7)
	assert.Equal(t, 3.0, testutil.ToFloat64(r.historyDepth.WithLabelValues("main", "undo")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.version.WithLabelValues("main")))

	r.Probe(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.probes.WithLabelValues("true")))

	r.Forget("main")
	assert.Equal(t, 0, testutil.CollectAndCount(r.version))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Observe("x", ResultOK, time.Now())
	r.ValidationFailed(errors.New("x"))
	r.SetHistory("c", 1, 1)
	r.SetVersion("c", 1)
	r.Probe(false)
	r.Forget("c")
}

func TestResult(t *testing.T) {
	assert.Equal(t, ResultOK, Result(true, nil))
	assert.Equal(t, ResultNoop, Result(false, nil))
	assert.Equal(t, ResultInvalid, Result(false, timeline.NotFound("x", "e-1")))
	assert.Equal(t, ResultInvalid, Result(false, &timeline.ValidationError{Code: timeline.CodeInvalidProps}))
	assert.Equal(t, ResultError, Result(false, errors.New("io")))
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
