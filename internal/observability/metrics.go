package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run phases observed by RunCollector.
const (
	PhaseValidate = "validate"
	PhaseLoad     = "load"
	PhaseClassify = "classify"
	PhaseRender   = "render"
)

// RunCollector bundles Prometheus metrics describing one coverage run. A CLI
// run is short-lived, so the values are exported by writing a textfile for the
// node exporter rather than by serving /metrics.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Runs          *prometheus.CounterVec
	PhaseDuration *prometheus.HistogramVec

	RecordsLoaded   prometheus.Gauge
	SliceRecords    prometheus.Gauge
	AcceptedRecords prometheus.Gauge
	RejectedRecords prometheus.Gauge
	Regions         prometheus.Gauge
	Markers         prometheus.Gauge
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satcov_runs_total",
		Help: "Total number of coverage runs, labeled by command variant and outcome.",
	}, []string{"variant", "outcome"})
	runs, err := registerCounterVec(reg, runs, "satcov_runs_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "satcov_phase_duration_seconds",
		Help:    "Duration of each run phase in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"phase"})
	durations, err = registerHistogramVec(reg, durations, "satcov_phase_duration_seconds")
	if err != nil {
		return nil, err
	}

	c := &RunCollector{gatherer: gatherer, Runs: runs, PhaseDuration: durations}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.RecordsLoaded, "satcov_records_loaded", "Tracked-object records read from the track table."},
		{&c.SliceRecords, "satcov_slice_records", "Records matching the requested time instant."},
		{&c.AcceptedRecords, "satcov_accepted_records", "Records of the slice inside the coverage footprint."},
		{&c.RejectedRecords, "satcov_rejected_records", "Records of the slice outside the coverage footprint."},
		{&c.Regions, "satcov_regions", "Region placemarks written to the overlay."},
		{&c.Markers, "satcov_markers", "Marker placemarks written to the overlay."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: g.name,
			Help: g.help,
		}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return c, nil
}

// ObservePhase records how long a run phase took.
func (c *RunCollector) ObservePhase(phase string, d time.Duration) {
	if c == nil || c.PhaseDuration == nil {
		return
	}
	c.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetLoaded records the size of the loaded track table.
func (c *RunCollector) SetLoaded(records int) {
	if c == nil || c.RecordsLoaded == nil {
		return
	}
	c.RecordsLoaded.Set(float64(records))
}

// SetClassification records the outcome of classifying one time slice.
func (c *RunCollector) SetClassification(slice, accepted int) {
	if c == nil {
		return
	}
	if c.SliceRecords != nil {
		c.SliceRecords.Set(float64(slice))
	}
	if c.AcceptedRecords != nil {
		c.AcceptedRecords.Set(float64(accepted))
	}
	if c.RejectedRecords != nil {
		c.RejectedRecords.Set(float64(slice - accepted))
	}
}

// SetOverlay records the number of placemarks in the written overlay.
func (c *RunCollector) SetOverlay(regions, markers int) {
	if c == nil {
		return
	}
	if c.Regions != nil {
		c.Regions.Set(float64(regions))
	}
	if c.Markers != nil {
		c.Markers.Set(float64(markers))
	}
}

// CountRun increments the run counter for variant with the given outcome
// ("ok" or an error class).
func (c *RunCollector) CountRun(variant, outcome string) {
	if c == nil || c.Runs == nil {
		return
	}
	c.Runs.WithLabelValues(variant, outcome).Inc()
}

// WriteTextfile writes all gathered metrics to path in the text exposition
// format understood by the node exporter textfile collector.
func (c *RunCollector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
