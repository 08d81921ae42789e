// Package metrics records process-lifecycle metrics for one program run and
// writes them in the node_exporter textfile format, which suits short-lived
// processes that never serve a /metrics endpoint.
package metrics

import (
	"fmt"
	"time"

	"github.com/jongio/proclife/procutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of a single program run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	spawned      prometheus.Counter
	spawnErrors  prometheus.Counter
	abnormal     *prometheus.CounterVec
	exitCode     prometheus.Gauge
	waitDuration prometheus.Histogram
}

// New creates a Recorder whose series carry program as a constant label.
func New(program string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"program": program}

	return &Recorder{
		registry: reg,
		spawned: factory.NewCounter(prometheus.CounterOpts{
			Name:        "proclife_children_spawned_total",
			Help:        "Child processes created",
			ConstLabels: labels,
		}),
		spawnErrors: factory.NewCounter(prometheus.CounterOpts{
			Name:        "proclife_spawn_errors_total",
			Help:        "Failed attempts to create a child process",
			ConstLabels: labels,
		}),
		abnormal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "proclife_children_abnormal_total",
			Help:        "Children terminated by a signal",
			ConstLabels: labels,
		}, []string{"signal"}),
		exitCode: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "proclife_child_exit_code",
			Help:        "Exit code of the last normally exited child",
			ConstLabels: labels,
		}),
		waitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "proclife_wait_duration_seconds",
			Help:        "Time the parent spent blocked in wait",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ChildSpawned counts a created child.
func (r *Recorder) ChildSpawned() {
	r.spawned.Inc()
}

// SpawnFailed counts a failed creation attempt.
func (r *Recorder) SpawnFailed() {
	r.spawnErrors.Inc()
}

// ChildCollected records a resolved status and how long the wait blocked.
func (r *Recorder) ChildCollected(status procutil.TerminationStatus, waited time.Duration) {
	r.waitDuration.Observe(waited.Seconds())
	switch status.State {
	case procutil.StateExited:
		r.exitCode.Set(float64(status.Code))
	case procutil.StateSignaled:
		r.abnormal.WithLabelValues(fmt.Sprintf("%d", int(status.Signal))).Inc()
	}
}

// WriteTextfile writes all series to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
